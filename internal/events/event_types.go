package events

import (
	"time"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEscalationExecuted EventType = "escalation_executed"
	EventTicketReassigned   EventType = "ticket_reassigned"
	EventPriorityChanged    EventType = "ticket_priority_changed"
	EventBatchRunCompleted  EventType = "batch_run_completed"
)

// Event represents a domain event emitted by the engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EscalationExecutedPayload payload.
type EscalationExecutedPayload struct {
	RuleID         string                  `json:"rule_id"`
	RuleName       string                  `json:"rule_name"`
	SequenceNumber int                     `json:"sequence_number"`
	Outcome        domain.ExecutionOutcome `json:"outcome"`
	ActionsApplied []domain.ActionKind     `json:"actions_applied"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	RuleID          string `json:"rule_id"`
	AssigneeStaffID string `json:"assignee_staff_id"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	RuleID      string                `json:"rule_id"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// BatchRunCompletedPayload payload.
type BatchRunCompletedPayload struct {
	TicketsProcessed int   `json:"tickets_processed"`
	RulesExecuted    int   `json:"rules_executed"`
	Errors           int   `json:"errors"`
	ExecutionTimeMs  int64 `json:"execution_time_ms"`
}
