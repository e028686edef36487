package engine

import (
	"context"
	"errors"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// ErrDuplicateExecution is returned by an ExecutionStore when an execution
// with the same (ticket_id, rule_id, sequence_number) already exists. The
// engine treats it as "already executed, skip", never as a failure.
var ErrDuplicateExecution = errors.New("escalation execution already recorded")

// RuleStore loads escalation rule definitions.
type RuleStore interface {
	ListActiveRules(ctx context.Context) ([]domain.EscalationRule, error)
}

// TicketUpdate carries the mutable ticket fields an action may change.
// Nil fields are left untouched.
type TicketUpdate struct {
	AssignedTo *string
	Priority   *domain.TicketPriority
}

// TicketStore reads ticket snapshots and applies action side effects.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*domain.TicketSnapshot, error)
	ListTickets(ctx context.Context, statuses []domain.TicketStatus, limit int) ([]domain.TicketSnapshot, error)
	UpdateTicket(ctx context.Context, id string, update TicketUpdate) error
	AddComment(ctx context.Context, ticketID, body string) error
	AddTag(ctx context.Context, ticketID, tag string) error
}

// ExecutionStore persists and lists escalation audit records.
type ExecutionStore interface {
	ListExecutions(ctx context.Context, ticketID, ruleID string) ([]domain.EscalationExecution, error)
	RecordExecution(ctx context.Context, execution *domain.EscalationExecution) error
}

// NotificationSender dispatches a notification. Fire-and-forget from the
// engine's perspective; the outcome comes back as an error value, never a
// panic.
type NotificationSender interface {
	Notify(ctx context.Context, recipient, template string, payload map[string]any) error
}
