package lifecycle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle flag every record carries.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Envelope is the common shape embedded in every persisted entity: identity,
// lifecycle status, audit stamps and the optimistic-concurrency token.
//
// Invariants:
//   - ID is assigned by the store on insert and never changes
//   - Status is never empty once the record exists
//   - CreatedBy/CreatedAt are written once, on create
//   - ModifiedBy/ModifiedAt are empty until the first successful update
//   - Version starts at 1 and advances by exactly one per successful write
//
// Only the Manager writes envelope fields. Payloads decoded by handlers may carry
// envelope values; the Manager ignores all of them except Version and Status on
// update.
type Envelope struct {
	ID         int64      `json:"id"`
	Status     Status     `json:"status"`
	CreatedBy  string     `json:"created_user"`
	CreatedAt  time.Time  `json:"created_date"`
	ModifiedBy string     `json:"modified_user,omitempty"`
	ModifiedAt *time.Time `json:"modified_date,omitempty"`
	Version    int64      `json:"version"`
}

// Meta gives generic code access to the embedded envelope.
func (e *Envelope) Meta() *Envelope {
	return e
}

// IsActive reports whether the record is in ACTIVE status.
func (e *Envelope) IsActive() bool {
	return e.Status == StatusActive
}

// EnvelopeFields are the JSON keys owned by Envelope. Stores that persist
// business attributes separately strip these keys.
var EnvelopeFields = []string{"id", "status", "created_user", "created_date", "modified_user", "modified_date", "version"}

// Record is implemented by every entity pointer type through the embedded
// Envelope.
type Record interface {
	Meta() *Envelope
}

// Keyed is implemented by entities that carry a unique business key.
type Keyed interface {
	BusinessKey() string
}

// Definition is embedded by code-bearing reference entities (institution,
// specialization, transaction type, ...). Code is immutable after creation.
type Definition struct {
	Code        string `json:"code" validate:"required,max=10,alphanum"`
	Description string `json:"description" validate:"required,max=100"`
}

// BusinessKey returns the code.
func (d *Definition) BusinessKey() string {
	return d.Code
}

// CopyDescription replaces the mutable part of a definition. Code is left alone.
func (d *Definition) CopyDescription(src *Definition) {
	d.Description = src.Description
}

// Clone deep-copies a record through its JSON form so stores can hand out
// records without sharing memory with their internal state.
func Clone[T Record](d Descriptor[T], rec T) (T, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("clone %s: %w", d.Name, err)
	}
	out := d.New()
	if err := json.Unmarshal(raw, out); err != nil {
		var zero T
		return zero, fmt.Errorf("clone %s: %w", d.Name, err)
	}
	return out, nil
}
