// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the GitHub adapter when an entity is confirmed absent upstream
// (404 Not Found, 410 Gone, or transferred to another repository).
var ErrNotFound = errors.New("not found upstream")

// ErrRepositoryBusy is returned when another sync already holds the repository's lock.
var ErrRepositoryBusy = errors.New("repository is being synchronized")

// ErrInvalidRepoFormat is returned when a repository string in the config is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// ContractViolationError reports an upstream payload missing a field the sync engine cannot work without.
// It is never retried.
type ContractViolationError struct {
	Entity string
	Field  string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("upstream %s is missing required field %q", e.Entity, e.Field)
}
