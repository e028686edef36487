package dto

import (
	"time"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// RunBatchRequest payload for the batch trigger endpoint.
type RunBatchRequest struct {
	Limit    int                   `json:"limit,omitempty"`
	Statuses []domain.TicketStatus `json:"statuses,omitempty"`
	Force    bool                  `json:"force,omitempty"`
}

// ExecutionResponse represents one audit entry.
type ExecutionResponse struct {
	ID             string                  `json:"id"`
	TicketID       string                  `json:"ticket_id"`
	RuleID         string                  `json:"rule_id"`
	ExecutedAt     time.Time               `json:"executed_at"`
	SequenceNumber int                     `json:"sequence_number"`
	ActionsApplied []domain.ActionKind     `json:"actions_applied"`
	Outcome        domain.ExecutionOutcome `json:"outcome"`
	ErrorDetail    *string                 `json:"error_detail,omitempty"`
}
