package service

import "errors"

// Common service errors
var (
	// ErrWorkflowNotFound is returned when a workflow is not in the store
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTermNotFound is returned when a counter-proposal names an unknown term
	ErrTermNotFound = errors.New("negotiable term not found")

	// ErrTermNotNegotiable is returned when a counter-proposal touches a fixed term
	ErrTermNotNegotiable = errors.New("term is not negotiable")

	// ErrNoPendingApproval is returned when no pending chain entry matches the role
	ErrNoPendingApproval = errors.New("no pending approval entry for role")

	// ErrInvalidInput is returned when request validation fails
	ErrInvalidInput = errors.New("invalid input")
)
