package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

var thresholdNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func unassignedRule(thresholdMinutes int) *domain.EscalationRule {
	return &domain.EscalationRule{
		ID:            "rule-1",
		Name:          "stale unassigned",
		TimeCondition: domain.TimeConditionUnassigned,
		TimeThreshold: thresholdMinutes,
		TimeUnit:      domain.TimeUnitMinutes,
	}
}

func ticketCreatedAgo(minutes int) *domain.TicketSnapshot {
	return &domain.TicketSnapshot{
		ID:        "ticket-1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: thresholdNow.Add(-time.Duration(minutes) * time.Minute),
	}
}

func priorExecutions(n int) []domain.EscalationExecution {
	out := make([]domain.EscalationExecution, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.EscalationExecution{
			TicketID:       "ticket-1",
			RuleID:         "rule-1",
			SequenceNumber: i,
		})
	}
	return out
}

func TestShouldEscalate_ApplicabilityGuards(t *testing.T) {
	checker := NewThresholdChecker(NewBusinessCalendar(time.UTC))
	staffID := "staff-1"
	responded := thresholdNow.Add(-30 * time.Minute)

	tests := []struct {
		name   string
		ticket *domain.TicketSnapshot
		kind   domain.TimeCondition
		want   bool
	}{
		{
			"unassigned rule skips assigned ticket",
			&domain.TicketSnapshot{ID: "t", AssignedTo: &staffID, CreatedAt: thresholdNow.Add(-10 * time.Hour)},
			domain.TimeConditionUnassigned,
			false,
		},
		{
			"no-response rule skips responded ticket",
			&domain.TicketSnapshot{ID: "t", FirstResponseAt: &responded, CreatedAt: thresholdNow.Add(-10 * time.Hour)},
			domain.TimeConditionNoResponse,
			false,
		},
		{
			"resolution rule skips resolved ticket",
			&domain.TicketSnapshot{ID: "t", ResolvedAt: &responded, CreatedAt: thresholdNow.Add(-10 * time.Hour)},
			domain.TimeConditionResolution,
			false,
		},
		{
			"custom rule has no guard",
			&domain.TicketSnapshot{ID: "t", AssignedTo: &staffID, FirstResponseAt: &responded, CreatedAt: thresholdNow.Add(-10 * time.Hour)},
			domain.TimeConditionCustom,
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := unassignedRule(60)
			rule.TimeCondition = tt.kind
			decision := checker.ShouldEscalate(tt.ticket, rule, nil, thresholdNow)
			assert.Equal(t, tt.want, decision.Escalate)
		})
	}
}

func TestShouldEscalate_NonRepeating(t *testing.T) {
	checker := NewThresholdChecker(NewBusinessCalendar(time.UTC))
	rule := unassignedRule(60)

	t.Run("breach escalates once", func(t *testing.T) {
		decision := checker.ShouldEscalate(ticketCreatedAgo(90), rule, nil, thresholdNow)
		assert.True(t, decision.Escalate)
		assert.Equal(t, 1, decision.SequenceNumber)
		assert.Equal(t, 90, decision.ElapsedMinutes)
	})

	t.Run("below threshold does not escalate", func(t *testing.T) {
		decision := checker.ShouldEscalate(ticketCreatedAgo(59), rule, nil, thresholdNow)
		assert.False(t, decision.Escalate)
	})

	t.Run("equality counts as breached", func(t *testing.T) {
		decision := checker.ShouldEscalate(ticketCreatedAgo(60), rule, nil, thresholdNow)
		assert.True(t, decision.Escalate)
	})

	t.Run("prior execution blocks re-fire", func(t *testing.T) {
		decision := checker.ShouldEscalate(ticketCreatedAgo(500), rule, priorExecutions(1), thresholdNow)
		assert.False(t, decision.Escalate)
	})
}

func TestShouldEscalate_Repeating(t *testing.T) {
	checker := NewThresholdChecker(NewBusinessCalendar(time.UTC))
	rule := unassignedRule(30)
	rule.RepeatEscalation = true
	rule.RepeatInterval = 30
	rule.MaxRepeats = 3

	ticket := ticketCreatedAgo(125)

	tests := []struct {
		name     string
		prior    int
		escalate bool
		sequence int
	}{
		{"first repeat at >=30", 0, true, 1},
		{"second repeat at >=60", 1, true, 2},
		{"third repeat at >=90", 2, true, 3},
		{"capped at max repeats", 3, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := checker.ShouldEscalate(ticket, rule, priorExecutions(tt.prior), thresholdNow)
			assert.Equal(t, tt.escalate, decision.Escalate)
			if tt.escalate {
				assert.Equal(t, tt.sequence, decision.SequenceNumber)
			}
		})
	}

	t.Run("next window not yet reached", func(t *testing.T) {
		decision := checker.ShouldEscalate(ticketCreatedAgo(45), rule, priorExecutions(1), thresholdNow)
		assert.False(t, decision.Escalate, "second repeat needs elapsed >= 60")
	})
}

func TestShouldEscalate_UnitNormalization(t *testing.T) {
	checker := NewThresholdChecker(NewBusinessCalendar(time.UTC))
	rule := unassignedRule(2)
	rule.TimeUnit = domain.TimeUnitHours

	assert.False(t, checker.ShouldEscalate(ticketCreatedAgo(119), rule, nil, thresholdNow).Escalate)
	assert.True(t, checker.ShouldEscalate(ticketCreatedAgo(120), rule, nil, thresholdNow).Escalate)
}

func TestShouldEscalate_BusinessHoursRule(t *testing.T) {
	checker := NewThresholdChecker(NewBusinessCalendar(time.UTC))
	rule := unassignedRule(60)
	rule.BusinessHoursOnly = true
	rule.BusinessHoursStart = 9 * 60
	rule.BusinessHoursEnd = 17 * 60
	rule.WorkingDays = weekdays

	// Created Saturday 2024-01-06 10:00; now Monday 2024-01-08 09:30.
	// Only 30 business minutes have elapsed.
	ticket := &domain.TicketSnapshot{
		ID:        "ticket-1",
		CreatedAt: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)

	decision := checker.ShouldEscalate(ticket, rule, nil, now)
	assert.False(t, decision.Escalate)
	assert.Equal(t, 30, decision.ElapsedMinutes)
}
