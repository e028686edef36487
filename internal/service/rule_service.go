package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-engine/internal/cache"
	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/repository"
	apperrors "github.com/spec-kit/escalation-engine/pkg/util"
)

// RuleService handles escalation rule administration. All configuration
// validation happens here, at the creation/update boundary; the runtime
// engine assumes the rules it loads are valid.
type RuleService struct {
	rules      repository.RuleRepository
	executions repository.ExecutionRepository
	cache      *cache.RuleCache
}

// RuleDependencies bundles repositories.
type RuleDependencies struct {
	RuleRepo      repository.RuleRepository
	ExecutionRepo repository.ExecutionRepository
	Cache         *cache.RuleCache
}

// NewRuleService creates the service.
func NewRuleService(deps RuleDependencies) *RuleService {
	return &RuleService{
		rules:      deps.RuleRepo,
		executions: deps.ExecutionRepo,
		cache:      deps.Cache,
	}
}

// ListRules returns all rules ordered by evaluation priority.
func (s *RuleService) ListRules(ctx context.Context) ([]domain.EscalationRule, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rules, nil
}

// GetRule returns one rule by id.
func (s *RuleService) GetRule(ctx context.Context, id string) (*domain.EscalationRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("escalation rule", map[string]any{"rule_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return rule, nil
}

// CreateRule validates and persists a new rule.
func (s *RuleService) CreateRule(ctx context.Context, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	applyDefaults(rule)
	if err := rule.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx)
	return rule, nil
}

// UpdateRule validates and replaces an existing rule definition.
func (s *RuleService) UpdateRule(ctx context.Context, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	applyDefaults(rule)
	if err := rule.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("escalation rule", map[string]any{"rule_id": rule.ID})
		}
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx)
	return rule, nil
}

// SetRuleActive toggles a rule without touching its definition.
func (s *RuleService) SetRuleActive(ctx context.Context, id string, active bool) error {
	if err := s.rules.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("escalation rule", map[string]any{"rule_id": id})
		}
		return apperrors.MapError(err)
	}
	s.invalidate(ctx)
	return nil
}

// ListTicketHistory returns the execution audit trail for a ticket.
func (s *RuleService) ListTicketHistory(ctx context.Context, ticketID string) ([]domain.EscalationExecution, error) {
	history, err := s.executions.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func (s *RuleService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func applyDefaults(rule *domain.EscalationRule) {
	if rule.TimeUnit == "" {
		rule.TimeUnit = domain.TimeUnitMinutes
	}
	if rule.BusinessHoursOnly {
		if rule.BusinessHoursStart == 0 && rule.BusinessHoursEnd == 0 {
			rule.BusinessHoursStart = 9 * 60
			rule.BusinessHoursEnd = 17 * 60
		}
		if len(rule.WorkingDays) == 0 {
			rule.WorkingDays = []domain.Weekday{
				domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday,
			}
		}
	}
	if rule.Priority == 0 {
		rule.Priority = 100
	}
}
