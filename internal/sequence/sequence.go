// Package sequence hands out per-account invoice numbers.
package sequence

import (
	"context"
	"fmt"
	"regexp"

	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
)

const (
	numberWidth     = 4
	maxPrefixLength = 12
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9\-_/.]*$`)

//go:generate mockgen -source=sequence.go -destination=store_mock.go -package=sequence
type Store interface {
	// Increment atomically advances the account's counter, creating it at 1 on
	// first use, and returns the new value with the configured prefix.
	Increment(ctx context.Context, accountID string) (int64, string, error)
	// Current returns the last issued value, 0 when nothing was issued yet.
	Current(ctx context.Context, accountID string) (int64, string, error)
	SetPrefix(ctx context.Context, accountID, prefix string) error
}

// Number is one allocated invoice number.
type Number struct {
	Value  int64
	Prefix string
}

// Display renders the number as prefix followed by the value padded to four digits.
func (n Number) Display() string {
	return fmt.Sprintf("%s%0*d", n.Prefix, numberWidth, n.Value)
}

func (n Number) String() string {
	return n.Display()
}

// AllocationError wraps any failure to advance an account's counter.
type AllocationError struct {
	AccountID string
	Err       error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating invoice number for account %s: %v", e.AccountID, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

type Allocator struct {
	store Store
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Next issues the account's next number. Values are strictly increasing and
// never reused, even when the caller later discards the number.
func (a *Allocator) Next(ctx context.Context, accountID string) (Number, error) {
	if err := ctx.Err(); err != nil {
		return Number{}, &AllocationError{AccountID: accountID, Err: err}
	}

	value, prefix, err := a.store.Increment(ctx, accountID)
	if err != nil {
		return Number{}, &AllocationError{AccountID: accountID, Err: err}
	}

	return Number{Value: value, Prefix: prefix}, nil
}

// Current returns the last issued number without advancing the counter.
func (a *Allocator) Current(ctx context.Context, accountID string) (Number, error) {
	value, prefix, err := a.store.Current(ctx, accountID)
	if err != nil {
		return Number{}, fmt.Errorf("reading sequence: %w", err)
	}

	return Number{Value: value, Prefix: prefix}, nil
}

// SetPrefix changes the prefix used for numbers issued from now on.
func (a *Allocator) SetPrefix(ctx context.Context, accountID, prefix string) error {
	if err := ValidatePrefix(prefix); err != nil {
		return err
	}

	if err := a.store.SetPrefix(ctx, accountID, prefix); err != nil {
		return fmt.Errorf("setting sequence prefix: %w", err)
	}

	return nil
}

func ValidatePrefix(prefix string) error {
	if len(prefix) > maxPrefixLength {
		return &scalar.ValidationError{Field: "prefix", Reason: "must not be longer than 12 characters"}
	}

	if !prefixPattern.MatchString(prefix) {
		return &scalar.ValidationError{Field: "prefix", Reason: "may only contain letters, digits and - _ / ."}
	}

	return nil
}
