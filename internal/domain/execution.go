package domain

import "time"

// ExecutionOutcome summarizes how a rule's action batch went.
type ExecutionOutcome string

const (
	OutcomeSuccess ExecutionOutcome = "SUCCESS"
	OutcomePartial ExecutionOutcome = "PARTIAL"
	OutcomeFailed  ExecutionOutcome = "FAILED"
)

// EscalationExecution is an immutable audit entry recording that a rule
// fired for a ticket at a given repeat sequence. The uniqueness of
// (ticket_id, rule_id, sequence_number) is what enforces at-most-once and
// repeat-cap semantics, including across concurrent batch runs.
type EscalationExecution struct {
	ID             string
	TicketID       string
	RuleID         string
	ExecutedAt     time.Time
	SequenceNumber int
	ActionsApplied []ActionKind
	Outcome        ExecutionOutcome
	ErrorDetail    *string
}
