package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

type fakeRuleStore struct {
	rules []domain.EscalationRule
	err   error
}

func (s *fakeRuleStore) ListActiveRules(ctx context.Context) ([]domain.EscalationRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.EscalationRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

type fakeTicketStore struct {
	mu        sync.Mutex
	tickets   map[string]*domain.TicketSnapshot
	comments  map[string][]string
	tags      map[string][]string
	updateErr error
	commentEr error
	listErr   error
}

func newFakeTicketStore(tickets ...*domain.TicketSnapshot) *fakeTicketStore {
	s := &fakeTicketStore{
		tickets:  map[string]*domain.TicketSnapshot{},
		comments: map[string][]string{},
		tags:     map[string][]string{},
	}
	for _, t := range tickets {
		s.tickets[t.ID] = t
	}
	return s
}

func (s *fakeTicketStore) GetTicket(ctx context.Context, id string) (*domain.TicketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %s not found", id)
	}
	clone := *ticket
	return &clone, nil
}

func (s *fakeTicketStore) ListTickets(ctx context.Context, statuses []domain.TicketStatus, limit int) ([]domain.TicketSnapshot, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TicketSnapshot
	for _, ticket := range s.tickets {
		for _, status := range statuses {
			if ticket.Status == status {
				out = append(out, *ticket)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeTicketStore) UpdateTicket(ctx context.Context, id string, update TicketUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return fmt.Errorf("ticket %s not found", id)
	}
	if update.AssignedTo != nil {
		assignee := *update.AssignedTo
		ticket.AssignedTo = &assignee
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	return nil
}

func (s *fakeTicketStore) AddComment(ctx context.Context, ticketID, body string) error {
	if s.commentEr != nil {
		return s.commentEr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[ticketID] = append(s.comments[ticketID], body)
	return nil
}

func (s *fakeTicketStore) AddTag(ctx context.Context, ticketID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[ticketID] = append(s.tags[ticketID], tag)
	return nil
}

type fakeExecutionStore struct {
	mu        sync.Mutex
	records   []domain.EscalationExecution
	listErr   error
	recordErr error
}

func (s *fakeExecutionStore) ListExecutions(ctx context.Context, ticketID, ruleID string) ([]domain.EscalationExecution, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.EscalationExecution
	for _, record := range s.records {
		if record.TicketID == ticketID && record.RuleID == ruleID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out, nil
}

func (s *fakeExecutionStore) RecordExecution(ctx context.Context, execution *domain.EscalationExecution) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.TicketID == execution.TicketID &&
			record.RuleID == execution.RuleID &&
			record.SequenceNumber == execution.SequenceNumber {
			return ErrDuplicateExecution
		}
	}
	s.records = append(s.records, *execution)
	return nil
}

type notifyCall struct {
	recipient string
	template  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *fakeNotifier) Notify(ctx context.Context, recipient, template string, payload map[string]any) error {
	n.mu.Lock()
	n.calls = append(n.calls, notifyCall{recipient: recipient, template: template})
	n.mu.Unlock()
	return n.err
}
