package domain

import (
	"context"
	"errors"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Store errors
	ErrMsgTransientStore = "transient store failure"
	ErrMsgValueNotFound  = "value not found"

	// Configuration errors
	ErrMsgConfiguration = "configuration error"
	ErrMsgInvalidCycle  = "invalid cycle"
	ErrMsgInvalidScope  = "invalid scope"
	ErrMsgInvalidAction = "invalid action"

	// Definition errors
	ErrMsgDefinitionNotFound = "variable definition not found"
	ErrMsgDuplicateKey       = "duplicate variable key"

	// Action errors
	ErrMsgActionExecution = "action execution failed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrTransientStore marks timeouts and connection errors from the backing store.
	// The engine retries the whole remaining boundary sequence on the next tick.
	ErrTransientStore = errors.New(ErrMsgTransientStore)
	ErrValueNotFound  = errors.New(ErrMsgValueNotFound)

	// ErrConfiguration marks a definition that cannot be processed until it is fixed.
	ErrConfiguration = errors.New(ErrMsgConfiguration)
	ErrInvalidCycle  = errors.New(ErrMsgInvalidCycle)
	ErrInvalidScope  = errors.New(ErrMsgInvalidScope)
	ErrInvalidAction = errors.New(ErrMsgInvalidAction)

	ErrDefinitionNotFound = errors.New(ErrMsgDefinitionNotFound)
	ErrDuplicateKey       = errors.New(ErrMsgDuplicateKey)

	// ErrActionExecution is isolated per action and never propagates into the reset.
	ErrActionExecution = errors.New(ErrMsgActionExecution)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// IsTransient reports whether err should be retried on the next tick
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// IsConfiguration reports whether err is caused by a bad definition
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrInvalidCycle) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrInvalidAction)
}
