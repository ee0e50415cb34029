package lifecycle

import "slices"

// Descriptor tells generic code how to handle one entity type without knowing
// its business fields.
type Descriptor[T Record] struct {
	// Name is the entity kind, e.g. "country". Used in messages, metrics and the
	// kind column of SQL stores.
	Name string
	// New returns an empty record.
	New func() T
	// CopyFields copies the mutable business fields from src onto dst. Envelope
	// fields and immutable keys are never copied.
	CopyFields func(dst, src T)
	// Key extracts the business key. When nil, records implementing Keyed are
	// keyed by BusinessKey and all others are unkeyed.
	Key func(T) string
	// References lists the JSON names of reference attributes that may be used
	// as list filters.
	References []string
}

// BusinessKey returns the record's unique key, if the kind has one.
func (d Descriptor[T]) BusinessKey(rec T) (string, bool) {
	if d.Key != nil {
		return d.Key(rec), true
	}
	if k, ok := any(rec).(Keyed); ok {
		return k.BusinessKey(), true
	}
	return "", false
}

// CodeBearing reports whether records of this kind carry a unique code.
func (d Descriptor[T]) CodeBearing() bool {
	if d.Key != nil {
		return true
	}
	_, ok := any(d.New()).(Keyed)
	return ok
}

// HasReference reports whether field is a declared reference attribute.
func (d Descriptor[T]) HasReference(field string) bool {
	return slices.Contains(d.References, field)
}

// Adapter binds a Descriptor to the store holding its records.
type Adapter[T Record] struct {
	Descriptor[T]
	Store Store[T]
}
