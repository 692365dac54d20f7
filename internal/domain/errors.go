package domain

import "fmt"

// ConfigurationError reports an unknown catalog or enum key. It is fatal to
// the operation: the caller must fix its input, nothing is retried.
type ConfigurationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %q: %s", e.Field, e.Value, e.Message)
}

// NewConfigurationError builds a ConfigurationError for an unknown key.
func NewConfigurationError(field, value, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Message: message}
}

// BoundsViolationError reports a proposed term value outside its min/max
// bounds. Recoverable: the caller should re-propose within bounds.
type BoundsViolationError struct {
	Term  string   `json:"term"`
	Value float64  `json:"value"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func (e *BoundsViolationError) Error() string {
	switch {
	case e.Min != nil && e.Max != nil:
		return fmt.Sprintf("term %q: value %.4f outside bounds [%.4f, %.4f]", e.Term, e.Value, *e.Min, *e.Max)
	case e.Min != nil:
		return fmt.Sprintf("term %q: value %.4f below minimum %.4f", e.Term, e.Value, *e.Min)
	case e.Max != nil:
		return fmt.Sprintf("term %q: value %.4f above maximum %.4f", e.Term, e.Value, *e.Max)
	}
	return fmt.Sprintf("term %q: value %.4f violates bounds", e.Term, e.Value)
}

// RoundLimitError reports an exhausted negotiation. Recoverable only by
// starting a new workflow.
type RoundLimitError struct {
	WorkflowID string `json:"workflowId"`
	Round      int    `json:"round"`
	MaxRounds  int    `json:"maxRounds"`
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("workflow %s: round limit exceeded (%d of %d rounds used)", e.WorkflowID, e.Round, e.MaxRounds)
}

// InvalidTransitionError reports state-machine misuse. This is a programming
// error in the caller: it is impossible when the caller respects the status
// reported by Summary.
type InvalidTransitionError struct {
	WorkflowID string         `json:"workflowId"`
	From       WorkflowStatus `json:"from"`
	Operation  string         `json:"operation"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("workflow %s: operation %q not valid in state %q", e.WorkflowID, e.Operation, e.From)
}

// DiscountCeilingError reports a combined discount above the hard ceiling.
// The calculator raises rather than silently clamping.
type DiscountCeilingError struct {
	Product  string  `json:"product"`
	Combined float64 `json:"combined"`
	Ceiling  float64 `json:"ceiling"`
}

func (e *DiscountCeilingError) Error() string {
	return fmt.Sprintf("product %q: combined discount %.2f exceeds ceiling %.2f", e.Product, e.Combined, e.Ceiling)
}
