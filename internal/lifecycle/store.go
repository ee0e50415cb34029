package lifecycle

import "context"

// Filter is the find-by-predicate part of the record store contract, expressed as
// data so both in-memory and SQL stores can evaluate it. Zero-valued fields do
// not constrain the result; set fields are combined with AND.
type Filter struct {
	Status Status
	Code   string
	// Field names a reference attribute by its JSON key (e.g. "country_id") and
	// Value is its decimal or textual form.
	Field string
	Value string
}

// Store is the record store the lifecycle core calls into. Implementations
// return sentinel errors (pkg/platform/sentinel):
//   - FindByID, Update, Delete: ErrNotFound when the id is unknown
//   - Insert: ErrAlreadyUsed when the business key is taken
//   - Update: ErrConflict when the stored version differs from expectedVersion
//
// Insert assigns the id and the initial version (1). Update persists rec only if
// the stored version still equals expectedVersion and advances it by one, as a
// single atomic step.
type Store[T Record] interface {
	FindByID(ctx context.Context, id int64) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	FindWhere(ctx context.Context, filter Filter) ([]T, error)
	Insert(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T, expectedVersion int64) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Primary is implemented by store decorators that may answer FindByID from a
// copy, such as a cache. Update and Delete read the record they replace from
// Primary so the version check runs against the authoritative row.
type Primary[T Record] interface {
	Primary() Store[T]
}
