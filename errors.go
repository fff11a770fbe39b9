package di

import (
	"fmt"
	"strings"

	"github.com/sectrean/di-graph/internal/errors"
)

var (
	// ErrEntryNotFound is returned when no entry is registered for a key.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrDependencyResolution is returned when a factory fails or one of its dependencies is missing.
	ErrDependencyResolution = errors.New("dependency resolution failed")
	// ErrCyclicDependency is returned when a service depends on itself.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrInvalidRegistration is returned when a ComponentBuilder is used incorrectly.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrGraphDisposed is returned when a disposed Graph is used.
	ErrGraphDisposed = errors.New("graph disposed")
)

// EntryNotFoundError is returned when no entry exists for Key.
//
// It matches [ErrEntryNotFound] with errors.Is.
type EntryNotFoundError struct {
	Key TypeKey
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry not found: service with key %s does not exist", e.Key)
}

func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}

// DependencyResolutionError is returned when the factory of Key returned an error or when one of
// its dependencies could not be found.
//
// It matches [ErrDependencyResolution] with errors.Is and unwraps to the cause.
type DependencyResolutionError struct {
	// Key of the service that failed.
	Key TypeKey
	// Chain is the stack of services being resolved when the failure happened, outermost first.
	Chain []TypeKey
	// Missing is the key that could not be found, if that was the cause.
	Missing *TypeKey
	Err     error
}

func (e *DependencyResolutionError) Error() string {
	if e.Missing != nil {
		return fmt.Sprintf("error resolving dependency with key %s: could not find dependency with key %s (dependency chain: %s)",
			e.Key, *e.Missing, formatChain(e.Chain))
	}

	return fmt.Sprintf("factory of dependency with key %s returned an error (dependency chain: %s): %v",
		e.Key, formatChain(e.Chain), e.Err)
}

func (e *DependencyResolutionError) Is(target error) bool {
	return target == ErrDependencyResolution
}

func (e *DependencyResolutionError) Unwrap() error {
	return e.Err
}

// CyclicDependencyError is returned when resolving Key requires Key itself.
//
// It matches [ErrCyclicDependency] with errors.Is.
type CyclicDependencyError struct {
	Key TypeKey
	// Chain starts and ends with Key.
	Chain []TypeKey
	// Direct is true if the factory of Key asked for Key without any service in between.
	Direct bool
}

func (e *CyclicDependencyError) Error() string {
	if e.Direct {
		return fmt.Sprintf("cyclic dependency found: %s is directly dependent on itself (dependency chain: %s)",
			e.Key, formatChain(e.Chain))
	}

	return fmt.Sprintf("cyclic dependency found: %s is dependent on itself (dependency chain: %s)",
		e.Key, formatChain(e.Chain))
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

func formatChain(chain []TypeKey) string {
	parts := make([]string, len(chain))
	for i, k := range chain {
		parts[i] = k.String()
	}
	return strings.Join(parts, " -> ")
}

func invalidRegistration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, fmt.Sprintf(format, args...))
}
