// Package naming allocates collision-free names within an owner's scope.
package naming

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/errs"
)

// MaxTitleAttempts bounds the number of suffixed candidates tried before
// the allocator reports the namespace as saturated.
const MaxTitleAttempts = 10

// LookupFunc reports whether a name is already taken in the owner's scope.
type LookupFunc func(ctx context.Context, owner uuid.UUID, name string) (bool, error)

// Allocator finds a free name by probing desired, desired_1, desired_2, …
// The check-then-act sequence has an inherent race window; the storage
// layer's unique constraint remains the authoritative guard, and a losing
// insert surfaces as a conflict there.
type Allocator struct {
	lookup      LookupFunc
	maxAttempts int
}

// New constructs an allocator over the given lookup.
func New(lookup LookupFunc, maxAttempts int) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = MaxTitleAttempts
	}
	return &Allocator{lookup: lookup, maxAttempts: maxAttempts}
}

// Allocate returns the first free candidate for desired. The suffix
// scheme ("_1", "_2", … in attempt order) is fixed: stored names already
// following it must keep lining up with newly allocated ones.
func (a *Allocator) Allocate(ctx context.Context, owner uuid.UUID, desired string) (string, error) {
	candidate := desired
	for attempt := 0; attempt <= a.maxAttempts; attempt++ {
		if attempt > 0 {
			candidate = fmt.Sprintf("%s_%d", desired, attempt)
		}
		taken, err := a.lookup(ctx, owner, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("allocate %q: %w", desired, errs.ErrExhausted)
}
