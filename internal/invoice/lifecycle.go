package invoice

import (
	"fmt"
	"slices"
	"time"
)

var transitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusCancelled},
	StatusSent:    {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

// InvalidTransitionError is returned for any change the lifecycle does not allow.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition from %s to %s: %s", e.From, e.To, e.Reason)
	}

	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return st, true
	}

	return "", false
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Transition moves the invoice to status to, stamping the matching timestamp.
// The invoice is left untouched when the move is not allowed.
func (inv *Invoice) Transition(to Status, at time.Time) error {
	if !CanTransition(inv.Status, to) {
		return &InvalidTransitionError{From: inv.Status, To: to}
	}

	if to == StatusSent && inv.Number == "" {
		return &InvalidTransitionError{From: inv.Status, To: to, Reason: "invoice has no number"}
	}

	switch to {
	case StatusSent:
		inv.SentAt = &at
	case StatusPaid:
		inv.PaidAt = &at
	case StatusCancelled:
		inv.CancelledAt = &at
	}

	inv.Status = to
	inv.UpdatedAt = at

	return nil
}

// ReplaceItems swaps the line items of a draft and recomputes its totals.
func (inv *Invoice) ReplaceItems(items []LineItem, at time.Time) error {
	if inv.Status != StatusDraft {
		return &InvalidTransitionError{From: inv.Status, To: inv.Status, Reason: "only drafts can be edited"}
	}

	totals, err := Compute(items)
	if err != nil {
		return err
	}

	inv.Items = slices.Clone(items)
	inv.Totals = totals
	inv.UpdatedAt = at

	return nil
}
