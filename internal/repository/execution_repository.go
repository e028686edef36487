package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/engine"
)

// ExecutionRepository persists escalation execution audit records. Records
// are insert-only; the UNIQUE (ticket_id, rule_id, sequence_number)
// constraint is what makes concurrent runs safe.
type ExecutionRepository interface {
	engine.ExecutionStore
	ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationExecution, error)
}

type executionRepository struct {
	pool *pgxpool.Pool
}

// NewExecutionRepository instantiates repository.
func NewExecutionRepository(pool *pgxpool.Pool) ExecutionRepository {
	return &executionRepository{pool: pool}
}

const uniqueViolationCode = "23505"

func (r *executionRepository) RecordExecution(ctx context.Context, execution *domain.EscalationExecution) error {
	const query = `
        INSERT INTO escalation_executions
            (id, ticket_id, rule_id, executed_at, sequence_number, actions_applied, outcome, error_detail)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		execution.ID,
		execution.TicketID,
		execution.RuleID,
		execution.ExecutedAt,
		execution.SequenceNumber,
		actionKindStrings(execution.ActionsApplied),
		execution.Outcome,
		execution.ErrorDetail,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return engine.ErrDuplicateExecution
		}
		return err
	}
	return nil
}

func (r *executionRepository) ListExecutions(ctx context.Context, ticketID, ruleID string) ([]domain.EscalationExecution, error) {
	const query = `
        SELECT id, ticket_id, rule_id, executed_at, sequence_number, actions_applied, outcome, error_detail
        FROM escalation_executions
        WHERE ticket_id=$1 AND rule_id=$2
        ORDER BY sequence_number ASC`
	rows, err := r.pool.Query(ctx, query, ticketID, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExecutions(rows)
}

func (r *executionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationExecution, error) {
	const query = `
        SELECT id, ticket_id, rule_id, executed_at, sequence_number, actions_applied, outcome, error_detail
        FROM escalation_executions
        WHERE ticket_id=$1
        ORDER BY executed_at ASC, sequence_number ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExecutions(rows)
}

func scanExecutions(rows pgx.Rows) ([]domain.EscalationExecution, error) {
	var result []domain.EscalationExecution
	for rows.Next() {
		var (
			execution domain.EscalationExecution
			applied   []string
		)
		if err := rows.Scan(
			&execution.ID,
			&execution.TicketID,
			&execution.RuleID,
			&execution.ExecutedAt,
			&execution.SequenceNumber,
			&applied,
			&execution.Outcome,
			&execution.ErrorDetail,
		); err != nil {
			return nil, err
		}
		execution.ActionsApplied = toActionKinds(applied)
		result = append(result, execution)
	}
	return result, rows.Err()
}

func actionKindStrings(in []domain.ActionKind) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func toActionKinds(in []string) []domain.ActionKind {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.ActionKind, len(in))
	for i, v := range in {
		out[i] = domain.ActionKind(v)
	}
	return out
}
