// Package provider defines the uniform capability interface over external AI
// code-generation backends and the read-only registry that holds the set of
// adapters configured at startup. Concrete adapters live in subpackages
// (openai, anthropic, gemini); new backends are added by implementing
// Provider, never by editing the router.
package provider
