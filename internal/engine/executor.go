package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/events"
	"github.com/spec-kit/escalation-engine/internal/observability"
)

// ExecutionResult reports the outcome of applying one rule's actions.
type ExecutionResult struct {
	Execution      *domain.EscalationExecution
	Outcome        domain.ExecutionOutcome
	ActionsApplied []domain.ActionKind
	ErrorDetail    *string
	Duplicate      bool
}

// ActionExecutor applies a rule's configured actions against the external
// collaborators and records the execution entry. Actions are not
// transactional across each other: each one is its own external call, and a
// failing action does not stop the remaining ones.
type ActionExecutor struct {
	tickets       TicketStore
	executions    ExecutionStore
	notifier      NotificationSender
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	actionTimeout time.Duration
	clock         func() time.Time
}

// ExecutorDependencies bundles collaborators for the executor.
type ExecutorDependencies struct {
	TicketStore    TicketStore
	ExecutionStore ExecutionStore
	Notifier       NotificationSender
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	ActionTimeout  time.Duration
}

// NewActionExecutor creates the executor.
func NewActionExecutor(deps ExecutorDependencies) *ActionExecutor {
	timeout := deps.ActionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionExecutor{
		tickets:       deps.TicketStore,
		executions:    deps.ExecutionStore,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		metrics:       deps.Metrics,
		actionTimeout: timeout,
		clock:         time.Now,
	}
}

// WithClock overrides the clock for deterministic testing.
func (e *ActionExecutor) WithClock(clock func() time.Time) *ActionExecutor {
	e.clock = clock
	return e
}

// Apply runs the rule's actions in declared order and writes exactly one
// execution record with the given sequence number, even under partial
// failure. A uniqueness violation on the record means another run already
// executed this sequence; the result is flagged Duplicate and no error is
// returned.
func (e *ActionExecutor) Apply(ctx context.Context, ticket *domain.TicketSnapshot, rule *domain.EscalationRule, sequenceNumber int) (ExecutionResult, error) {
	applied := make([]domain.ActionKind, 0, len(rule.Actions))
	var failures []string

	for _, action := range rule.Actions {
		if err := e.applyAction(ctx, ticket, rule, action); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", action.Kind, err))
			e.metrics.RecordActionFailure(string(action.Kind))
			e.logger.Warn("escalation action failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("rule_id", rule.ID),
				zap.String("action", string(action.Kind)),
				zap.Error(err))
			continue
		}
		applied = append(applied, action.Kind)
	}

	outcome := domain.OutcomeSuccess
	var errDetail *string
	if len(failures) > 0 {
		detail := strings.Join(failures, "; ")
		errDetail = &detail
		if len(applied) == 0 {
			outcome = domain.OutcomeFailed
		} else {
			outcome = domain.OutcomePartial
		}
	}

	execution := &domain.EscalationExecution{
		ID:             uuid.NewString(),
		TicketID:       ticket.ID,
		RuleID:         rule.ID,
		ExecutedAt:     e.clock(),
		SequenceNumber: sequenceNumber,
		ActionsApplied: applied,
		Outcome:        outcome,
		ErrorDetail:    errDetail,
	}

	result := ExecutionResult{
		Execution:      execution,
		Outcome:        outcome,
		ActionsApplied: applied,
		ErrorDetail:    errDetail,
	}

	if err := e.executions.RecordExecution(ctx, execution); err != nil {
		if errors.Is(err, ErrDuplicateExecution) {
			e.logger.Debug("execution already recorded by concurrent run",
				zap.String("ticket_id", ticket.ID),
				zap.String("rule_id", rule.ID),
				zap.Int("sequence_number", sequenceNumber))
			return ExecutionResult{Duplicate: true}, nil
		}
		return result, fmt.Errorf("record execution: %w", err)
	}
	return result, nil
}

func (e *ActionExecutor) applyAction(ctx context.Context, ticket *domain.TicketSnapshot, rule *domain.EscalationRule, action domain.RuleAction) error {
	ctx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	switch action.Kind {
	case domain.ActionReassign:
		assignee := action.AssigneeStaffID
		if err := e.tickets.UpdateTicket(ctx, ticket.ID, TicketUpdate{AssignedTo: &assignee}); err != nil {
			return err
		}
		e.publish(ctx, events.EventTicketReassigned, ticket.ID, events.TicketReassignedPayload{
			RuleID:          rule.ID,
			AssigneeStaffID: assignee,
		})
		return nil
	case domain.ActionSetPriority:
		priority := action.Priority
		if err := e.tickets.UpdateTicket(ctx, ticket.ID, TicketUpdate{Priority: &priority}); err != nil {
			return err
		}
		e.publish(ctx, events.EventPriorityChanged, ticket.ID, events.PriorityChangedPayload{
			RuleID:      rule.ID,
			NewPriority: priority,
		})
		return nil
	case domain.ActionNotify:
		return e.notifier.Notify(ctx, action.Recipient, "escalation_triggered", map[string]any{
			"ticket_id":     ticket.ID,
			"rule_id":       rule.ID,
			"rule_name":     rule.Name,
			"ticket_status": string(ticket.Status),
			"priority":      string(ticket.Priority),
		})
	case domain.ActionAddComment:
		return e.tickets.AddComment(ctx, ticket.ID, renderTemplate(action.CommentTemplate, ticket, rule))
	case domain.ActionAddTag:
		return e.tickets.AddTag(ctx, ticket.ID, action.Tag)
	default:
		return fmt.Errorf("unrecognized action kind %q", action.Kind)
	}
}

func (e *ActionExecutor) publish(ctx context.Context, eventType events.EventType, ticketID string, payload interface{}) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: e.clock(),
		Payload:   payload,
	})
}

// renderTemplate substitutes the small closed set of placeholders supported
// in comment templates.
func renderTemplate(template string, ticket *domain.TicketSnapshot, rule *domain.EscalationRule) string {
	replacer := strings.NewReplacer(
		"{{ticket_id}}", ticket.ID,
		"{{status}}", string(ticket.Status),
		"{{priority}}", string(ticket.Priority),
		"{{rule_name}}", rule.Name,
	)
	return replacer.Replace(template)
}
