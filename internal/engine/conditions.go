package engine

import "github.com/spec-kit/escalation-engine/internal/domain"

// Matches reports whether a rule's declarative conditions include the given
// ticket. Every declared constraint must pass (logical AND); fields left
// empty impose no constraint.
func Matches(ticket *domain.TicketSnapshot, conditions domain.RuleConditions) bool {
	if len(conditions.Statuses) > 0 && !containsStatus(conditions.Statuses, ticket.Status) {
		return false
	}
	if len(conditions.Priorities) > 0 && !containsPriority(conditions.Priorities, ticket.Priority) {
		return false
	}
	if len(conditions.Categories) > 0 && !containsString(conditions.Categories, ticket.Category) {
		return false
	}
	if len(conditions.TenantIDs) > 0 && !containsString(conditions.TenantIDs, ticket.TenantID) {
		return false
	}
	if conditions.Assigned != nil && *conditions.Assigned != ticket.Assigned() {
		return false
	}
	return true
}

func containsStatus(set []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPriority(set []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, p := range set {
		if p == v {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
