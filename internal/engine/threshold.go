package engine

import (
	"time"

	"github.com/spec-kit/escalation-engine/internal/domain"
)

// Decision is the outcome of a threshold check for one (ticket, rule) pair.
type Decision struct {
	Escalate       bool
	SequenceNumber int
	ElapsedMinutes int
}

// ThresholdChecker decides whether a rule's time threshold has been breached
// for a ticket, given the prior execution history.
type ThresholdChecker struct {
	calendar BusinessCalendar
}

// NewThresholdChecker builds a checker over the given calendar.
func NewThresholdChecker(calendar BusinessCalendar) ThresholdChecker {
	return ThresholdChecker{calendar: calendar}
}

// ShouldEscalate applies the applicability guard for the rule's time
// condition, computes elapsed qualifying minutes from the anchor, and gates
// on the threshold. Equality counts as breached. For repeating rules the nth
// repeat requires elapsed >= threshold + n*interval and n < max_repeats.
// Prior executions must be ordered by sequence number.
func (tc ThresholdChecker) ShouldEscalate(ticket *domain.TicketSnapshot, rule *domain.EscalationRule, prior []domain.EscalationExecution, now time.Time) Decision {
	switch rule.TimeCondition {
	case domain.TimeConditionUnassigned:
		if ticket.Assigned() {
			return Decision{}
		}
	case domain.TimeConditionNoResponse:
		if ticket.FirstResponseAt != nil {
			return Decision{}
		}
	case domain.TimeConditionResolution:
		if ticket.ResolvedAt != nil {
			return Decision{}
		}
	case domain.TimeConditionCustom:
		// No applicability guard; scoping happens via rule conditions.
	default:
		return Decision{}
	}

	elapsed := tc.calendar.ElapsedQualifyingMinutes(
		ticket.CreatedAt, now,
		rule.BusinessHoursOnly,
		rule.BusinessHoursStart, rule.BusinessHoursEnd,
		rule.WorkingDays,
	)
	threshold := rule.ThresholdMinutes()

	if !rule.RepeatEscalation {
		if len(prior) == 0 && elapsed >= threshold {
			return Decision{Escalate: true, SequenceNumber: 1, ElapsedMinutes: elapsed}
		}
		return Decision{ElapsedMinutes: elapsed}
	}

	n := len(prior)
	if n < rule.MaxRepeats && elapsed >= threshold+n*rule.RepeatInterval {
		return Decision{Escalate: true, SequenceNumber: n + 1, ElapsedMinutes: elapsed}
	}
	return Decision{ElapsedMinutes: elapsed}
}
