package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketSnapshot is the read-only view of a ticket the escalation engine
// consumes. The engine never mutates a snapshot directly; ticket state
// changes only through the declared action side effects.
type TicketSnapshot struct {
	ID              string
	Status          TicketStatus
	Priority        TicketPriority
	Category        string
	TenantID        string
	AssignedTo      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
}

// Assigned reports whether the ticket currently has an assignee.
func (t *TicketSnapshot) Assigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}
