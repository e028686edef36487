package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

func fullActionRule() *domain.EscalationRule {
	return &domain.EscalationRule{
		ID:   "rule-1",
		Name: "escalate stale",
		Actions: []domain.RuleAction{
			{Kind: domain.ActionReassign, AssigneeStaffID: "lead-1"},
			{Kind: domain.ActionSetPriority, Priority: domain.TicketPriorityUrgent},
			{Kind: domain.ActionNotify, Recipient: "team-lead"},
			{Kind: domain.ActionAddComment, CommentTemplate: "Ticket {{ticket_id}} escalated by {{rule_name}}"},
			{Kind: domain.ActionAddTag, Tag: "escalated"},
		},
	}
}

func newTestExecutor(tickets *fakeTicketStore, executions *fakeExecutionStore, notifier *fakeNotifier) *ActionExecutor {
	return NewActionExecutor(ExecutorDependencies{
		TicketStore:    tickets,
		ExecutionStore: executions,
		Notifier:       notifier,
		ActionTimeout:  time.Second,
	})
}

func TestApply_AllActionsSucceed(t *testing.T) {
	ticket := &domain.TicketSnapshot{
		ID:       "ticket-1",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium,
	}
	tickets := newFakeTicketStore(ticket)
	executions := &fakeExecutionStore{}
	notifier := &fakeNotifier{}
	executor := newTestExecutor(tickets, executions, notifier)

	result, err := executor.Apply(context.Background(), ticket, fullActionRule(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSuccess, result.Outcome)
	assert.Nil(t, result.ErrorDetail)
	assert.Len(t, result.ActionsApplied, 5)

	updated, err := tickets.GetTicket(context.Background(), "ticket-1")
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "lead-1", *updated.AssignedTo)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "team-lead", notifier.calls[0].recipient)

	require.Len(t, tickets.comments["ticket-1"], 1)
	assert.Equal(t, "Ticket ticket-1 escalated by escalate stale", tickets.comments["ticket-1"][0])
	assert.Equal(t, []string{"escalated"}, tickets.tags["ticket-1"])

	require.Len(t, executions.records, 1)
	record := executions.records[0]
	assert.Equal(t, 1, record.SequenceNumber)
	assert.Equal(t, domain.OutcomeSuccess, record.Outcome)
}

func TestApply_PartialFailureContinuesAndRecords(t *testing.T) {
	ticket := &domain.TicketSnapshot{ID: "ticket-1", Priority: domain.TicketPriorityMedium}
	tickets := newFakeTicketStore(ticket)
	executions := &fakeExecutionStore{}
	notifier := &fakeNotifier{err: errors.New("smtp unreachable")}
	executor := newTestExecutor(tickets, executions, notifier)

	rule := &domain.EscalationRule{
		ID:   "rule-1",
		Name: "bump and notify",
		Actions: []domain.RuleAction{
			{Kind: domain.ActionNotify, Recipient: "manager"},
			{Kind: domain.ActionSetPriority, Priority: domain.TicketPriorityHigh},
		},
	}

	result, err := executor.Apply(context.Background(), ticket, rule, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomePartial, result.Outcome)
	require.NotNil(t, result.ErrorDetail)
	assert.Contains(t, *result.ErrorDetail, "NOTIFY")
	assert.Contains(t, *result.ErrorDetail, "smtp unreachable")
	assert.Equal(t, []domain.ActionKind{domain.ActionSetPriority}, result.ActionsApplied)

	// Priority still updated despite the notify failure.
	updated, err := tickets.GetTicket(context.Background(), "ticket-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)

	// Exactly one execution record regardless of partial failure.
	require.Len(t, executions.records, 1)
	assert.Equal(t, domain.OutcomePartial, executions.records[0].Outcome)
}

func TestApply_AllActionsFail(t *testing.T) {
	ticket := &domain.TicketSnapshot{ID: "ticket-1"}
	tickets := newFakeTicketStore(ticket)
	tickets.updateErr = errors.New("db down")
	executions := &fakeExecutionStore{}
	notifier := &fakeNotifier{err: errors.New("smtp unreachable")}
	executor := newTestExecutor(tickets, executions, notifier)

	rule := &domain.EscalationRule{
		ID:   "rule-1",
		Name: "doomed",
		Actions: []domain.RuleAction{
			{Kind: domain.ActionSetPriority, Priority: domain.TicketPriorityHigh},
			{Kind: domain.ActionNotify, Recipient: "manager"},
		},
	}

	result, err := executor.Apply(context.Background(), ticket, rule, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Empty(t, result.ActionsApplied)
	require.NotNil(t, result.ErrorDetail)

	// The record is still written so repeat counting stays correct.
	require.Len(t, executions.records, 1)
	assert.Equal(t, domain.OutcomeFailed, executions.records[0].Outcome)
}

func TestApply_DuplicateSequenceIsBenign(t *testing.T) {
	ticket := &domain.TicketSnapshot{ID: "ticket-1"}
	tickets := newFakeTicketStore(ticket)
	executions := &fakeExecutionStore{
		records: []domain.EscalationExecution{
			{TicketID: "ticket-1", RuleID: "rule-1", SequenceNumber: 1},
		},
	}
	executor := newTestExecutor(tickets, executions, &fakeNotifier{})

	rule := &domain.EscalationRule{
		ID:      "rule-1",
		Name:    "raced",
		Actions: []domain.RuleAction{{Kind: domain.ActionAddTag, Tag: "escalated"}},
	}

	result, err := executor.Apply(context.Background(), ticket, rule, 1)
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Len(t, executions.records, 1, "no second record for the same sequence")
}

func TestApply_RecordFailurePropagates(t *testing.T) {
	ticket := &domain.TicketSnapshot{ID: "ticket-1"}
	tickets := newFakeTicketStore(ticket)
	executions := &fakeExecutionStore{recordErr: errors.New("connection reset")}
	executor := newTestExecutor(tickets, executions, &fakeNotifier{})

	rule := &domain.EscalationRule{
		ID:      "rule-1",
		Name:    "audit required",
		Actions: []domain.RuleAction{{Kind: domain.ActionAddTag, Tag: "escalated"}},
	}

	_, err := executor.Apply(context.Background(), ticket, rule, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record execution")
}
