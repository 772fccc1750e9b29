// Package core provides the foundational domain types shared by the Codesmith
// pipeline. It defines the core abstractions for:
//
//   - CodeRequest (immutable caller input)
//   - ProviderResult (the uniform outcome of one adapter invocation)
//   - SelectedResponse (the single artifact handed back to the caller)
//   - ExecutionResult (sandboxed run outcome with termination classification)
//
// The package intentionally keeps implementation concerns (providers, routing,
// selection, sandboxing) out of scope, exposing only the data contracts that
// the concrete packages exchange. All exported identifiers include concise
// documentation to aid discoverability and external consumption.
package core
