package repository

import "errors"

// Common repository errors
var (
	// ErrWorkflowNotFound is returned when a workflow id is unknown
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTerritoryNotFound is returned when a territory id is unknown
	ErrTerritoryNotFound = errors.New("territory not found")
)
