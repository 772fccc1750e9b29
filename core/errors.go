package core

import "errors"

var (
	// ErrNoViableCandidate is returned by selection when every provider failed
	// and no fallback template matched. Callers surface it as a generation
	// failure; it is never converted into an empty or placeholder artifact.
	ErrNoViableCandidate = errors.New("no viable candidate: all providers failed and no fallback template matched")

	// ErrUnsupportedLanguage is returned when the sandbox has no runner for
	// the requested language.
	ErrUnsupportedLanguage = errors.New("unsupported execution language")
)
