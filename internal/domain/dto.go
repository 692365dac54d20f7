package domain

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// CreateTerritoryRequest is the input for TerritoryService.CreateTerritory.
// Countries defaults to the full region catalogue when empty.
type CreateTerritoryRequest struct {
	Name              string     `json:"name" validate:"required,max=200"`
	Region            RegionCode `json:"region" validate:"required"`
	Countries         []string   `json:"countries,omitempty" validate:"omitempty,dive,len=2,alpha"`
	ExcludedCountries []string   `json:"excludedCountries,omitempty" validate:"omitempty,dive,len=2,alpha"`
	Exclusive         bool       `json:"exclusive"`
	DistributorID     uuid.UUID  `json:"distributorId" validate:"required"`
}

// Validate checks structural validity and returns findings per field.
func (r *CreateTerritoryRequest) Validate() []ValidationFinding {
	return collectFindings(validate.Struct(r))
}

// CreateWorkflowRequest is the input for NegotiationService.Create
type CreateWorkflowRequest struct {
	Contract     *Contract `json:"contract" validate:"required"`
	MaxRounds    int       `json:"maxRounds" validate:"gte=1,lte=10"`
	DeadlineDays int       `json:"deadlineDays" validate:"gte=1,lte=365"`
	Stakeholders []string  `json:"stakeholders,omitempty" validate:"omitempty,dive,required"`
	// InitialTerms overrides the terms seeded from the contract when set.
	InitialTerms []NegotiableTerm `json:"initialTerms,omitempty"`
}

// Validate checks structural validity and returns findings per field.
func (r *CreateWorkflowRequest) Validate() []ValidationFinding {
	return collectFindings(validate.Struct(r))
}

// TermChange is one proposed value inside a counter-proposal round
type TermChange struct {
	TermName      string  `json:"termName" validate:"required"`
	Value         float64 `json:"value"`
	Justification string  `json:"justification,omitempty" validate:"max=2000"`
}

// CounterProposalRequest is the input for SubmitCounterProposal
type CounterProposalRequest struct {
	SubmittedBy string       `json:"submittedBy" validate:"required,max=200"`
	Changes     []TermChange `json:"changes" validate:"required,min=1,dive"`
}

// Validate checks structural validity and returns findings per field.
func (r *CounterProposalRequest) Validate() []ValidationFinding {
	return collectFindings(validate.Struct(r))
}

// WorkflowSummary is the read-only reporting view of a workflow
type WorkflowSummary struct {
	WorkflowID   uuid.UUID         `json:"workflowId"`
	ContractID   uuid.UUID         `json:"contractId"`
	Status       WorkflowStatus    `json:"status"`
	CurrentRound int               `json:"currentRound"`
	MaxRounds    int               `json:"maxRounds"`
	Terms        []TermSummary     `json:"terms"`
	Approvals    []ApprovalSummary `json:"approvals"`
	Deadlines    map[string]string `json:"deadlines"`
	ConflictGate bool              `json:"conflictGate"`
}

// TermSummary is the per-term slice of a WorkflowSummary
type TermSummary struct {
	Name          string       `json:"name"`
	Category      TermCategory `json:"category"`
	OriginalValue float64      `json:"originalValue"`
	ProposedValue float64      `json:"proposedValue"`
	FinalValue    *float64     `json:"finalValue,omitempty"`
	Status        TermStatus   `json:"status"`
}

// ApprovalSummary is the per-entry slice of a WorkflowSummary
type ApprovalSummary struct {
	Role     ApprovalRole   `json:"role"`
	Required bool           `json:"required"`
	Status   ApprovalStatus `json:"status"`
	Approver string         `json:"approver,omitempty"`
}

func collectFindings(err error) []ValidationFinding {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationFinding{{Field: "", Message: err.Error()}}
	}
	findings := make([]ValidationFinding, 0, len(verrs))
	for _, fe := range verrs {
		findings = append(findings, ValidationFinding{
			Field:   fe.Field(),
			Message: GetValidationMessage(fe.Tag()),
		})
	}
	return findings
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"len":      "Must be exactly the specified length",
	"alpha":    "Must contain only alphabetic characters",
	"dive":     "Invalid element",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
