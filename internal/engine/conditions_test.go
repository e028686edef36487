package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func TestMatches(t *testing.T) {
	staffID := "staff-1"
	ticket := &domain.TicketSnapshot{
		ID:       "t-1",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium,
		Category: "network",
		TenantID: "tenant-a",
	}
	assigned := &domain.TicketSnapshot{
		ID:         "t-2",
		Status:     domain.TicketStatusInProgress,
		Priority:   domain.TicketPriorityHigh,
		Category:   "hardware",
		TenantID:   "tenant-b",
		AssignedTo: &staffID,
	}

	tests := []struct {
		name       string
		ticket     *domain.TicketSnapshot
		conditions domain.RuleConditions
		want       bool
	}{
		{"empty conditions match everything", ticket, domain.RuleConditions{}, true},
		{"empty conditions match assigned ticket", assigned, domain.RuleConditions{}, true},
		{
			"status membership passes",
			ticket,
			domain.RuleConditions{Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}},
			true,
		},
		{
			"status membership fails",
			ticket,
			domain.RuleConditions{Statuses: []domain.TicketStatus{domain.TicketStatusClosed}},
			false,
		},
		{
			"priority mismatch fails",
			ticket,
			domain.RuleConditions{Priorities: []domain.TicketPriority{domain.TicketPriorityUrgent}},
			false,
		},
		{
			"category membership passes",
			ticket,
			domain.RuleConditions{Categories: []string{"network", "software"}},
			true,
		},
		{
			"tenant scope fails",
			ticket,
			domain.RuleConditions{TenantIDs: []string{"tenant-b"}},
			false,
		},
		{
			"unassigned constraint passes on unassigned ticket",
			ticket,
			domain.RuleConditions{Assigned: boolPtr(false)},
			true,
		},
		{
			"unassigned constraint fails on assigned ticket",
			assigned,
			domain.RuleConditions{Assigned: boolPtr(false)},
			false,
		},
		{
			"assigned constraint passes on assigned ticket",
			assigned,
			domain.RuleConditions{Assigned: boolPtr(true)},
			true,
		},
		{
			"all declared constraints must pass",
			ticket,
			domain.RuleConditions{
				Statuses:   []domain.TicketStatus{domain.TicketStatusOpen},
				Categories: []string{"hardware"},
			},
			false,
		},
		{
			"conjunction of passing constraints",
			assigned,
			domain.RuleConditions{
				Statuses:   []domain.TicketStatus{domain.TicketStatusInProgress},
				Priorities: []domain.TicketPriority{domain.TicketPriorityHigh},
				TenantIDs:  []string{"tenant-b"},
				Assigned:   boolPtr(true),
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.ticket, tt.conditions))
		})
	}
}

func TestMatches_EmptyAssigneeTreatedAsUnassigned(t *testing.T) {
	empty := ""
	ticket := &domain.TicketSnapshot{ID: "t-3", Status: domain.TicketStatusOpen, AssignedTo: &empty}
	assert.True(t, Matches(ticket, domain.RuleConditions{Assigned: boolPtr(false)}))
}
