package dto

import (
	"time"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// RuleActionPayload is one action directive in a rule request/response.
type RuleActionPayload struct {
	Kind            domain.ActionKind     `json:"kind"`
	AssigneeStaffID string                `json:"assignee_staff_id,omitempty"`
	Priority        domain.TicketPriority `json:"priority,omitempty"`
	Recipient       string                `json:"recipient,omitempty"`
	CommentTemplate string                `json:"comment_template,omitempty"`
	Tag             string                `json:"tag,omitempty"`
}

// RuleConditionsPayload mirrors the declarative rule filter.
type RuleConditionsPayload struct {
	Statuses   []domain.TicketStatus   `json:"statuses,omitempty"`
	Priorities []domain.TicketPriority `json:"priorities,omitempty"`
	Categories []string                `json:"categories,omitempty"`
	TenantIDs  []string                `json:"tenant_ids,omitempty"`
	Assigned   *bool                   `json:"assigned,omitempty"`
}

// SaveRuleRequest payload for create and update.
type SaveRuleRequest struct {
	Name               string                `json:"name"`
	Conditions         RuleConditionsPayload `json:"conditions"`
	Actions            []RuleActionPayload   `json:"actions"`
	TimeCondition      domain.TimeCondition  `json:"time_condition"`
	TimeThreshold      int                   `json:"time_threshold"`
	TimeUnit           domain.TimeUnit       `json:"time_unit"`
	BusinessHoursOnly  bool                  `json:"business_hours_only"`
	BusinessHoursStart string                `json:"business_hours_start,omitempty"`
	BusinessHoursEnd   string                `json:"business_hours_end,omitempty"`
	WorkingDays        []domain.Weekday      `json:"working_days,omitempty"`
	RepeatEscalation   bool                  `json:"repeat_escalation"`
	RepeatInterval     int                   `json:"repeat_interval,omitempty"`
	MaxRepeats         int                   `json:"max_repeats,omitempty"`
	Priority           int                   `json:"priority,omitempty"`
	IsActive           *bool                 `json:"is_active,omitempty"`
}

// SetRuleActiveRequest payload.
type SetRuleActiveRequest struct {
	Active bool `json:"active"`
}

// RuleResponse payload.
type RuleResponse struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Conditions         RuleConditionsPayload `json:"conditions"`
	Actions            []RuleActionPayload   `json:"actions"`
	TimeCondition      domain.TimeCondition  `json:"time_condition"`
	TimeThreshold      int                   `json:"time_threshold"`
	TimeUnit           domain.TimeUnit       `json:"time_unit"`
	BusinessHoursOnly  bool                  `json:"business_hours_only"`
	BusinessHoursStart string                `json:"business_hours_start"`
	BusinessHoursEnd   string                `json:"business_hours_end"`
	WorkingDays        []domain.Weekday      `json:"working_days,omitempty"`
	RepeatEscalation   bool                  `json:"repeat_escalation"`
	RepeatInterval     int                   `json:"repeat_interval,omitempty"`
	MaxRepeats         int                   `json:"max_repeats,omitempty"`
	Priority           int                   `json:"priority"`
	IsActive           bool                  `json:"is_active"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}
