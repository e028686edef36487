package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/engine"
)

// TicketRepository reads ticket snapshots and applies escalation side
// effects against the platform's ticket tables. It implements
// engine.TicketStore.
type TicketRepository interface {
	engine.TicketStore
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const snapshotColumns = `id, status, priority, category, tenant_id, assignee_staff_id,
       created_at, updated_at, first_response_at, resolved_at`

func (r *ticketRepository) GetTicket(ctx context.Context, id string) (*domain.TicketSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, snapshotColumns)
	var ticket domain.TicketSnapshot
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.TenantID,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets returns tickets in the given statuses, unassigned first and
// oldest first within each group, capped at limit.
func (r *ticketRepository) ListTickets(ctx context.Context, statuses []domain.TicketStatus, limit int) ([]domain.TicketSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	args := []any{}
	clause := "1=1"
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clause = fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ","))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s
        ORDER BY (assignee_staff_id IS NULL) DESC, created_at ASC LIMIT %d`,
		snapshotColumns, clause, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketSnapshot
	for rows.Next() {
		var ticket domain.TicketSnapshot
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.TenantID,
			&ticket.AssignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.FirstResponseAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateTicket(ctx context.Context, id string, update engine.TicketUpdate) error {
	clauses := []string{}
	args := []any{}
	if update.AssignedTo != nil {
		args = append(args, *update.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assignee_staff_id=$%d", len(args)))
	}
	if update.Priority != nil {
		args = append(args, *update.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if len(clauses) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s, updated_at=NOW() WHERE id=$%d`,
		strings.Join(clauses, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AddComment(ctx context.Context, ticketID, body string) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, author_type, message_type, body)
        VALUES ($1, 'SYSTEM', 'INTERNAL_NOTE', $2)`
	_, err := r.pool.Exec(ctx, query, ticketID, body)
	return err
}

func (r *ticketRepository) AddTag(ctx context.Context, ticketID, tag string) error {
	const query = `
        UPDATE tickets SET tags = array_append(tags, $2), updated_at=NOW()
        WHERE id=$1 AND NOT ($2 = ANY(tags))`
	_, err := r.pool.Exec(ctx, query, ticketID, tag)
	return err
}
