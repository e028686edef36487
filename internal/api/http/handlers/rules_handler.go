package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-engine/internal/api/dto"
	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/service"
	apperrors "github.com/spec-kit/escalation-engine/pkg/util"
)

// RulesHandler manages escalation rule administration endpoints.
type RulesHandler struct {
	service *service.RuleService
}

// NewRulesHandler constructs handler.
func NewRulesHandler(ruleService *service.RuleService) *RulesHandler {
	return &RulesHandler{service: ruleService}
}

// ListRules GET /escalations/rules.
func (h *RulesHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.service.ListRules(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.RuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, ruleResponse(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRule GET /escalations/rules/:id.
func (h *RulesHandler) GetRule(c *fiber.Ctx) error {
	rule, err := h.service.GetRule(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ruleResponse(rule)})
}

// CreateRule POST /escalations/rules.
func (h *RulesHandler) CreateRule(c *fiber.Ctx) error {
	var req dto.SaveRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule, err := ruleFromRequest(&req)
	if err != nil {
		return err
	}
	created, err := h.service.CreateRule(c.Context(), rule)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ruleResponse(created)})
}

// UpdateRule PUT /escalations/rules/:id.
func (h *RulesHandler) UpdateRule(c *fiber.Ctx) error {
	var req dto.SaveRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule, err := ruleFromRequest(&req)
	if err != nil {
		return err
	}
	rule.ID = c.Params("id")
	updated, err := h.service.UpdateRule(c.Context(), rule)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ruleResponse(updated)})
}

// SetRuleActive PATCH /escalations/rules/:id/active.
func (h *RulesHandler) SetRuleActive(c *fiber.Ctx) error {
	var req dto.SetRuleActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SetRuleActive(c.Context(), c.Params("id"), req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "active": req.Active}})
}

func ruleFromRequest(req *dto.SaveRuleRequest) (*domain.EscalationRule, error) {
	rule := &domain.EscalationRule{
		Name: req.Name,
		Conditions: domain.RuleConditions{
			Statuses:   req.Conditions.Statuses,
			Priorities: req.Conditions.Priorities,
			Categories: req.Conditions.Categories,
			TenantIDs:  req.Conditions.TenantIDs,
			Assigned:   req.Conditions.Assigned,
		},
		TimeCondition:     req.TimeCondition,
		TimeThreshold:     req.TimeThreshold,
		TimeUnit:          req.TimeUnit,
		BusinessHoursOnly: req.BusinessHoursOnly,
		WorkingDays:       req.WorkingDays,
		RepeatEscalation:  req.RepeatEscalation,
		RepeatInterval:    req.RepeatInterval,
		MaxRepeats:        req.MaxRepeats,
		Priority:          req.Priority,
		IsActive:          true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if strings.TrimSpace(req.BusinessHoursStart) != "" {
		start, err := domain.ParseTimeOfDay(req.BusinessHoursStart)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		rule.BusinessHoursStart = start
	}
	if strings.TrimSpace(req.BusinessHoursEnd) != "" {
		end, err := domain.ParseTimeOfDay(req.BusinessHoursEnd)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		rule.BusinessHoursEnd = end
	}
	rule.Actions = make([]domain.RuleAction, 0, len(req.Actions))
	for _, action := range req.Actions {
		rule.Actions = append(rule.Actions, domain.RuleAction{
			Kind:            action.Kind,
			AssigneeStaffID: action.AssigneeStaffID,
			Priority:        action.Priority,
			Recipient:       action.Recipient,
			CommentTemplate: action.CommentTemplate,
			Tag:             action.Tag,
		})
	}
	return rule, nil
}

func ruleResponse(rule *domain.EscalationRule) dto.RuleResponse {
	actions := make([]dto.RuleActionPayload, 0, len(rule.Actions))
	for _, action := range rule.Actions {
		actions = append(actions, dto.RuleActionPayload{
			Kind:            action.Kind,
			AssigneeStaffID: action.AssigneeStaffID,
			Priority:        action.Priority,
			Recipient:       action.Recipient,
			CommentTemplate: action.CommentTemplate,
			Tag:             action.Tag,
		})
	}
	return dto.RuleResponse{
		ID:   rule.ID,
		Name: rule.Name,
		Conditions: dto.RuleConditionsPayload{
			Statuses:   rule.Conditions.Statuses,
			Priorities: rule.Conditions.Priorities,
			Categories: rule.Conditions.Categories,
			TenantIDs:  rule.Conditions.TenantIDs,
			Assigned:   rule.Conditions.Assigned,
		},
		Actions:            actions,
		TimeCondition:      rule.TimeCondition,
		TimeThreshold:      rule.TimeThreshold,
		TimeUnit:           rule.TimeUnit,
		BusinessHoursOnly:  rule.BusinessHoursOnly,
		BusinessHoursStart: rule.BusinessHoursStart.String(),
		BusinessHoursEnd:   rule.BusinessHoursEnd.String(),
		WorkingDays:        rule.WorkingDays,
		RepeatEscalation:   rule.RepeatEscalation,
		RepeatInterval:     rule.RepeatInterval,
		MaxRepeats:         rule.MaxRepeats,
		Priority:           rule.Priority,
		IsActive:           rule.IsActive,
		CreatedAt:          rule.CreatedAt,
		UpdatedAt:          rule.UpdatedAt,
	}
}

func executionResponse(execution *domain.EscalationExecution) dto.ExecutionResponse {
	return dto.ExecutionResponse{
		ID:             execution.ID,
		TicketID:       execution.TicketID,
		RuleID:         execution.RuleID,
		ExecutedAt:     execution.ExecutedAt,
		SequenceNumber: execution.SequenceNumber,
		ActionsApplied: execution.ActionsApplied,
		Outcome:        execution.Outcome,
		ErrorDetail:    execution.ErrorDetail,
	}
}
