package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// RuleRepository encapsulates escalation rule persistence.
type RuleRepository interface {
	ListActiveRules(ctx context.Context) ([]domain.EscalationRule, error)
	List(ctx context.Context) ([]domain.EscalationRule, error)
	GetByID(ctx context.Context, id string) (*domain.EscalationRule, error)
	Create(ctx context.Context, rule *domain.EscalationRule) error
	Update(ctx context.Context, rule *domain.EscalationRule) error
	SetActive(ctx context.Context, id string, active bool) error
}

type ruleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository instantiates repository.
func NewRuleRepository(pool *pgxpool.Pool) RuleRepository {
	return &ruleRepository{pool: pool}
}

const ruleColumns = `id, name, statuses, priorities, categories, tenant_ids, assigned,
       actions, time_condition, time_threshold, time_unit,
       business_hours_only, business_hours_start, business_hours_end, working_days,
       repeat_escalation, repeat_interval, max_repeats,
       priority, is_active, created_at, updated_at`

func (r *ruleRepository) ListActiveRules(ctx context.Context) ([]domain.EscalationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM escalation_rules WHERE is_active ORDER BY priority ASC, created_at ASC`, ruleColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *ruleRepository) List(ctx context.Context) ([]domain.EscalationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM escalation_rules ORDER BY priority ASC, created_at ASC`, ruleColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *ruleRepository) GetByID(ctx context.Context, id string) (*domain.EscalationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM escalation_rules WHERE id=$1`, ruleColumns)
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules, err := scanRules(rows)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &rules[0], nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *domain.EscalationRule) error {
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	const query = `
        INSERT INTO escalation_rules
            (name, statuses, priorities, categories, tenant_ids, assigned, actions,
             time_condition, time_threshold, time_unit,
             business_hours_only, business_hours_start, business_hours_end, working_days,
             repeat_escalation, repeat_interval, max_repeats, priority, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		statusStrings(rule.Conditions.Statuses),
		priorityStrings(rule.Conditions.Priorities),
		rule.Conditions.Categories,
		rule.Conditions.TenantIDs,
		rule.Conditions.Assigned,
		actions,
		rule.TimeCondition,
		rule.TimeThreshold,
		rule.TimeUnit,
		rule.BusinessHoursOnly,
		int(rule.BusinessHoursStart),
		int(rule.BusinessHoursEnd),
		weekdayInts(rule.WorkingDays),
		rule.RepeatEscalation,
		rule.RepeatInterval,
		rule.MaxRepeats,
		rule.Priority,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.EscalationRule) error {
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	const query = `
        UPDATE escalation_rules SET
            name=$1, statuses=$2, priorities=$3, categories=$4, tenant_ids=$5, assigned=$6,
            actions=$7, time_condition=$8, time_threshold=$9, time_unit=$10,
            business_hours_only=$11, business_hours_start=$12, business_hours_end=$13, working_days=$14,
            repeat_escalation=$15, repeat_interval=$16, max_repeats=$17, priority=$18, is_active=$19,
            updated_at=NOW()
        WHERE id=$20`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		statusStrings(rule.Conditions.Statuses),
		priorityStrings(rule.Conditions.Priorities),
		rule.Conditions.Categories,
		rule.Conditions.TenantIDs,
		rule.Conditions.Assigned,
		actions,
		rule.TimeCondition,
		rule.TimeThreshold,
		rule.TimeUnit,
		rule.BusinessHoursOnly,
		int(rule.BusinessHoursStart),
		int(rule.BusinessHoursEnd),
		weekdayInts(rule.WorkingDays),
		rule.RepeatEscalation,
		rule.RepeatInterval,
		rule.MaxRepeats,
		rule.Priority,
		rule.IsActive,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ruleRepository) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE escalation_rules SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRules(rows pgx.Rows) ([]domain.EscalationRule, error) {
	var result []domain.EscalationRule
	for rows.Next() {
		var (
			rule       domain.EscalationRule
			statuses   []string
			priorities []string
			actions    []byte
			startMin   int
			endMin     int
			days       []int32
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&statuses,
			&priorities,
			&rule.Conditions.Categories,
			&rule.Conditions.TenantIDs,
			&rule.Conditions.Assigned,
			&actions,
			&rule.TimeCondition,
			&rule.TimeThreshold,
			&rule.TimeUnit,
			&rule.BusinessHoursOnly,
			&startMin,
			&endMin,
			&days,
			&rule.RepeatEscalation,
			&rule.RepeatInterval,
			&rule.MaxRepeats,
			&rule.Priority,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &rule.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions for rule %s: %w", rule.ID, err)
		}
		rule.Conditions.Statuses = toStatuses(statuses)
		rule.Conditions.Priorities = toPriorities(priorities)
		rule.BusinessHoursStart = domain.TimeOfDay(startMin)
		rule.BusinessHoursEnd = domain.TimeOfDay(endMin)
		rule.WorkingDays = toWeekdays(days)
		result = append(result, rule)
	}
	return result, rows.Err()
}

func statusStrings(in []domain.TicketStatus) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func priorityStrings(in []domain.TicketPriority) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func weekdayInts(in []domain.Weekday) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toStatuses(in []string) []domain.TicketStatus {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.TicketStatus, len(in))
	for i, v := range in {
		out[i] = domain.TicketStatus(v)
	}
	return out
}

func toPriorities(in []string) []domain.TicketPriority {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.TicketPriority, len(in))
	for i, v := range in {
		out[i] = domain.TicketPriority(v)
	}
	return out
}

func toWeekdays(in []int32) []domain.Weekday {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Weekday, len(in))
	for i, v := range in {
		out[i] = domain.Weekday(v)
	}
	return out
}
