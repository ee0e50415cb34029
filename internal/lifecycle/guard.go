package lifecycle

import (
	"context"
	"fmt"

	dErrors "channelling/pkg/domain-errors"
)

// Guard rejects creation of a record whose business key is already taken by a
// record of the same kind, active or inactive.
type Guard[T Record] struct {
	kind  string
	store Store[T]
}

// NewGuard builds a guard over the records of one kind.
func NewGuard[T Record](kind string, store Store[T]) *Guard[T] {
	return &Guard[T]{kind: kind, store: store}
}

// EnsureUnique fails with CodeDuplicateKey if a record with code exists.
func (g *Guard[T]) EnsureUnique(ctx context.Context, code string) error {
	existing, err := g.store.FindWhere(ctx, Filter{Code: code})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to check %s code", g.kind))
	}
	if len(existing) > 0 {
		return duplicateKey(g.kind, code)
	}
	return nil
}

func duplicateKey(kind, code string) error {
	return dErrors.New(dErrors.CodeDuplicateKey,
		fmt.Sprintf("the entered %s %q already exists in the database", kind, code))
}
