package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/events"
	"github.com/spec-kit/escalation-engine/internal/observability"
)

// TicketRunResult summarizes one ticket's rule-evaluation pass.
type TicketRunResult struct {
	TicketID          string   `json:"ticket_id"`
	ExecutedRules     []string `json:"executed_rules"`
	Errors            []string `json:"errors"`
	TotalRulesChecked int      `json:"total_rules_checked"`
	TotalExecuted     int      `json:"total_executed"`
	Success           bool     `json:"success"`
}

// BatchRunResult summarizes a batch pass over many tickets.
type BatchRunResult struct {
	TotalTicketsProcessed int               `json:"total_tickets_processed"`
	TotalRulesExecuted    int               `json:"total_rules_executed"`
	TotalErrors           int               `json:"total_errors"`
	ExecutionTimeMs       int64             `json:"execution_time_ms"`
	Success               bool              `json:"success"`
	Details               []TicketRunResult `json:"details"`
}

// Orchestrator is the top-level escalation driver: it loads tickets and
// active rules, gates each (ticket, rule) pair through the condition
// evaluator and threshold checker, and hands breaches to the action
// executor. Rules and tickets are read-only inputs to a pass; the engine
// holds no mutable state between invocations.
type Orchestrator struct {
	rules      RuleStore
	tickets    TicketStore
	executions ExecutionStore
	executor   *ActionExecutor
	checker    ThresholdChecker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	batchLimit int
	clock      func() time.Time
}

// Dependencies bundles orchestrator collaborators.
type Dependencies struct {
	RuleStore      RuleStore
	TicketStore    TicketStore
	ExecutionStore ExecutionStore
	Executor       *ActionExecutor
	Checker        ThresholdChecker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	BatchLimit     int
}

// NewOrchestrator creates the orchestrator.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	limit := deps.BatchLimit
	if limit <= 0 {
		limit = 100
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		rules:      deps.RuleStore,
		tickets:    deps.TicketStore,
		executions: deps.ExecutionStore,
		executor:   deps.Executor,
		checker:    deps.Checker,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		batchLimit: limit,
		clock:      time.Now,
	}
}

// WithClock overrides the clock for deterministic testing.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// RunForTicket evaluates every active rule against one ticket. With force
// set, the threshold gate is skipped and each matching rule executes at its
// next sequence number (admin override for manual testing).
func (o *Orchestrator) RunForTicket(ctx context.Context, ticketID string, force bool) (*TicketRunResult, error) {
	ticket, err := o.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	rules, err := o.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	result := o.evaluateTicket(ctx, ticket, rules, force)
	o.metrics.RecordRun("ticket", result.TotalExecuted, len(result.Errors))
	return result, nil
}

// RunAll pulls up to limit tickets matching the status filter and runs the
// per-ticket pass over each. One ticket's failure never aborts the batch.
func (o *Orchestrator) RunAll(ctx context.Context, limit int, statusFilter []domain.TicketStatus, force bool) (*BatchRunResult, error) {
	started := time.Now()

	if limit <= 0 || limit > o.batchLimit {
		limit = o.batchLimit
	}
	if len(statusFilter) == 0 {
		statusFilter = []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}
	}

	tickets, err := o.tickets.ListTickets(ctx, statusFilter, limit)
	if err != nil {
		return nil, err
	}
	rules, err := o.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	batch := &BatchRunResult{Details: make([]TicketRunResult, 0, len(tickets))}
	for i := range tickets {
		result := o.evaluateTicket(ctx, &tickets[i], rules, force)
		batch.TotalTicketsProcessed++
		batch.TotalRulesExecuted += result.TotalExecuted
		batch.TotalErrors += len(result.Errors)
		batch.Details = append(batch.Details, *result)
	}
	batch.ExecutionTimeMs = time.Since(started).Milliseconds()
	batch.Success = batch.TotalErrors == 0

	o.metrics.RecordRun("batch", batch.TotalRulesExecuted, batch.TotalErrors)
	o.publish(ctx, events.EventBatchRunCompleted, "", events.BatchRunCompletedPayload{
		TicketsProcessed: batch.TotalTicketsProcessed,
		RulesExecuted:    batch.TotalRulesExecuted,
		Errors:           batch.TotalErrors,
		ExecutionTimeMs:  batch.ExecutionTimeMs,
	})
	o.logger.Info("batch escalation run completed",
		zap.Int("tickets", batch.TotalTicketsProcessed),
		zap.Int("rules_executed", batch.TotalRulesExecuted),
		zap.Int("errors", batch.TotalErrors),
		zap.Int64("execution_time_ms", batch.ExecutionTimeMs))
	return batch, nil
}

// evaluateTicket runs all rules against one ticket in ascending priority
// order. Rules are isolated from each other: a failing rule only adds an
// error entry and evaluation continues.
func (o *Orchestrator) evaluateTicket(ctx context.Context, ticket *domain.TicketSnapshot, rules []domain.EscalationRule, force bool) *TicketRunResult {
	ordered := make([]domain.EscalationRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	result := &TicketRunResult{
		TicketID:      ticket.ID,
		ExecutedRules: []string{},
		Errors:        []string{},
	}
	now := o.clock()

	for i := range ordered {
		rule := &ordered[i]
		result.TotalRulesChecked++

		if !Matches(ticket, rule.Conditions) {
			continue
		}

		prior, err := o.executions.ListExecutions(ctx, ticket.ID, rule.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("rule %s: list executions: %v", rule.ID, err))
			continue
		}

		var sequenceNumber int
		if force {
			sequenceNumber = len(prior) + 1
		} else {
			decision := o.checker.ShouldEscalate(ticket, rule, prior, now)
			if !decision.Escalate {
				continue
			}
			sequenceNumber = decision.SequenceNumber
		}

		execResult, err := o.executor.Apply(ctx, ticket, rule, sequenceNumber)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("rule %s: %v", rule.ID, err))
			continue
		}
		if execResult.Duplicate {
			continue
		}

		result.TotalExecuted++
		result.ExecutedRules = append(result.ExecutedRules, rule.ID)
		if execResult.Outcome == domain.OutcomeFailed && execResult.ErrorDetail != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("rule %s: all actions failed: %s", rule.ID, *execResult.ErrorDetail))
		}

		o.publish(ctx, events.EventEscalationExecuted, ticket.ID, events.EscalationExecutedPayload{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			SequenceNumber: sequenceNumber,
			Outcome:        execResult.Outcome,
			ActionsApplied: execResult.ActionsApplied,
		})
		o.logger.Info("escalation rule executed",
			zap.String("ticket_id", ticket.ID),
			zap.String("rule_id", rule.ID),
			zap.Int("sequence_number", sequenceNumber),
			zap.String("outcome", string(execResult.Outcome)))
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (o *Orchestrator) publish(ctx context.Context, eventType events.EventType, ticketID string, payload interface{}) {
	if o.dispatcher == nil {
		return
	}
	_ = o.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: o.clock(),
		Payload:   payload,
	})
}
