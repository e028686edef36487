package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeCondition enumerates the time-based trigger kinds a rule can use.
type TimeCondition string

const (
	TimeConditionUnassigned TimeCondition = "UNASSIGNED_TIME"
	TimeConditionNoResponse TimeCondition = "NO_RESPONSE_TIME"
	TimeConditionResolution TimeCondition = "RESOLUTION_TIME"
	TimeConditionCustom     TimeCondition = "CUSTOM_TIME"
)

// Valid reports whether the condition is one of the enumerated kinds.
func (tc TimeCondition) Valid() bool {
	switch tc {
	case TimeConditionUnassigned, TimeConditionNoResponse, TimeConditionResolution, TimeConditionCustom:
		return true
	}
	return false
}

// TimeUnit is the unit the rule threshold is expressed in.
type TimeUnit string

const (
	TimeUnitMinutes TimeUnit = "MINUTES"
	TimeUnitHours   TimeUnit = "HOURS"
	TimeUnitDays    TimeUnit = "DAYS"
)

// Minutes normalizes a threshold value to minutes.
func (u TimeUnit) Minutes(value int) int {
	switch u {
	case TimeUnitHours:
		return value * 60
	case TimeUnitDays:
		return value * 24 * 60
	default:
		return value
	}
}

// Weekday follows ISO-8601 numbering: 1=Monday .. 7=Sunday.
type Weekday int

const (
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
	Sunday    Weekday = 7
)

// FromTime converts the standard library weekday (Sunday=0) to ISO numbering.
func FromTime(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

// TimeOfDay is minutes since midnight in the organizational timezone.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ActionKind enumerates the closed set of escalation action types.
type ActionKind string

const (
	ActionReassign    ActionKind = "REASSIGN"
	ActionSetPriority ActionKind = "SET_PRIORITY"
	ActionNotify      ActionKind = "NOTIFY"
	ActionAddComment  ActionKind = "ADD_COMMENT"
	ActionAddTag      ActionKind = "ADD_TAG"
)

// Valid reports whether the kind is recognized.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionReassign, ActionSetPriority, ActionNotify, ActionAddComment, ActionAddTag:
		return true
	}
	return false
}

// RuleAction is one directive in a rule's ordered action list. Exactly the
// field matching the kind is meaningful; the rest stay empty.
type RuleAction struct {
	Kind            ActionKind     `json:"kind"`
	AssigneeStaffID string         `json:"assignee_staff_id,omitempty"`
	Priority        TicketPriority `json:"priority,omitempty"`
	Recipient       string         `json:"recipient,omitempty"`
	CommentTemplate string         `json:"comment_template,omitempty"`
	Tag             string         `json:"tag,omitempty"`
}

// RuleConditions is the declarative ticket filter for a rule. Every field is
// optional; an absent field imposes no constraint.
type RuleConditions struct {
	Statuses   []TicketStatus
	Priorities []TicketPriority
	Categories []string
	TenantIDs  []string
	Assigned   *bool
}

// EscalationRule is a configured escalation policy. Rules are created and
// edited through the admin API and are read-only to the engine.
type EscalationRule struct {
	ID                 string
	Name               string
	Conditions         RuleConditions
	Actions            []RuleAction
	TimeCondition      TimeCondition
	TimeThreshold      int
	TimeUnit           TimeUnit
	BusinessHoursOnly  bool
	BusinessHoursStart TimeOfDay
	BusinessHoursEnd   TimeOfDay
	WorkingDays        []Weekday
	RepeatEscalation   bool
	RepeatInterval     int
	MaxRepeats         int
	Priority           int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ThresholdMinutes returns the configured threshold normalized to minutes.
func (r *EscalationRule) ThresholdMinutes() int {
	return r.TimeUnit.Minutes(r.TimeThreshold)
}

// Validate enforces rule invariants. It runs at the rule creation/update
// boundary; the runtime evaluator assumes rules it receives are valid.
func (r *EscalationRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name required")
	}
	if !r.TimeCondition.Valid() {
		return fmt.Errorf("unrecognized time_condition %q", r.TimeCondition)
	}
	if r.TimeThreshold <= 0 {
		return fmt.Errorf("time_threshold must be positive, got %d", r.TimeThreshold)
	}
	switch r.TimeUnit {
	case TimeUnitMinutes, TimeUnitHours, TimeUnitDays:
	default:
		return fmt.Errorf("unrecognized time_unit %q", r.TimeUnit)
	}
	if r.BusinessHoursOnly {
		if r.BusinessHoursEnd <= r.BusinessHoursStart {
			return fmt.Errorf("business_hours_end must be after business_hours_start")
		}
		if len(r.WorkingDays) == 0 {
			return fmt.Errorf("working_days required when business_hours_only is set")
		}
		for _, d := range r.WorkingDays {
			if d < Monday || d > Sunday {
				return fmt.Errorf("invalid working day %d", d)
			}
		}
	}
	if r.RepeatEscalation {
		if r.RepeatInterval <= 0 {
			return fmt.Errorf("repeat_interval must be positive when repeat_escalation is set")
		}
		if r.MaxRepeats < 1 {
			return fmt.Errorf("max_repeats must be at least 1 when repeat_escalation is set")
		}
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("at least one action required")
	}
	for i, action := range r.Actions {
		if !action.Kind.Valid() {
			return fmt.Errorf("action %d: unrecognized kind %q", i, action.Kind)
		}
		switch action.Kind {
		case ActionReassign:
			if action.AssigneeStaffID == "" {
				return fmt.Errorf("action %d: assignee_staff_id required for reassign", i)
			}
		case ActionSetPriority:
			switch action.Priority {
			case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
			default:
				return fmt.Errorf("action %d: invalid priority %q", i, action.Priority)
			}
		case ActionNotify:
			if action.Recipient == "" {
				return fmt.Errorf("action %d: recipient required for notify", i)
			}
		case ActionAddComment:
			if strings.TrimSpace(action.CommentTemplate) == "" {
				return fmt.Errorf("action %d: comment_template required", i)
			}
		case ActionAddTag:
			if strings.TrimSpace(action.Tag) == "" {
				return fmt.Errorf("action %d: tag required", i)
			}
		}
	}
	return nil
}
