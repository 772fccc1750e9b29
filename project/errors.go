package project

import "errors"

var (
	// ErrProjectNotFound is returned when the given project id does not exist
	// in the underlying store.
	ErrProjectNotFound = errors.New("project not found")

	// ErrFileNotFound is returned when a file path does not exist within an
	// existing project.
	ErrFileNotFound = errors.New("project file not found")

	// ErrInvalidPath is returned for empty, absolute or traversing file
	// paths. It is never retried.
	ErrInvalidPath = errors.New("invalid project file path")
)

// IsNotFound returns true if the error is ErrProjectNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}
