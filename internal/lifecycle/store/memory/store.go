// Package memory is an in-process record store for one entity kind.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"channelling/internal/lifecycle"
	"channelling/pkg/platform/sentinel"
)

// InMemory holds records keyed by id. It keeps private copies, so records handed
// in or out can be mutated freely by callers.
type InMemory[T lifecycle.Record] struct {
	desc lifecycle.Descriptor[T]

	mu     sync.RWMutex
	nextID int64
	byID   map[int64]T
	byKey  map[string]int64
}

// New creates an empty store for the kind described by desc.
func New[T lifecycle.Record](desc lifecycle.Descriptor[T]) *InMemory[T] {
	return &InMemory[T]{
		desc:  desc,
		byID:  make(map[int64]T),
		byKey: make(map[string]int64),
	}
}

func (s *InMemory[T]) FindByID(_ context.Context, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", s.desc.Name, id, sentinel.ErrNotFound)
	}
	return lifecycle.Clone(s.desc, rec)
}

func (s *InMemory[T]) FindAll(ctx context.Context) ([]T, error) {
	return s.FindWhere(ctx, lifecycle.Filter{})
}

// FindWhere returns matching records ordered by id.
func (s *InMemory[T]) FindWhere(_ context.Context, filter lifecycle.Filter) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0)
	for _, id := range ids {
		rec := s.byID[id]
		ok, err := s.matches(rec, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		c, err := lifecycle.Clone(s.desc, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *InMemory[T]) matches(rec T, filter lifecycle.Filter) (bool, error) {
	if filter.Status != "" && rec.Meta().Status != filter.Status {
		return false, nil
	}
	if filter.Code != "" {
		key, ok := s.desc.BusinessKey(rec)
		if !ok || key != filter.Code {
			return false, nil
		}
	}
	if filter.Field != "" {
		value, err := attribute(rec, filter.Field)
		if err != nil {
			return false, err
		}
		if value != filter.Value {
			return false, nil
		}
	}
	return true, nil
}

// attribute renders one top-level JSON attribute of rec as text.
func attribute(rec any, field string) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return "", fmt.Errorf("decode record: %w", err)
	}
	v, ok := attrs[field]
	if !ok || v == nil {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func (s *InMemory[T]) Insert(_ context.Context, rec T) (T, error) {
	var zero T
	stored, err := lifecycle.Clone(s.desc, rec)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, keyed := s.desc.BusinessKey(stored)
	if keyed {
		if _, taken := s.byKey[key]; taken {
			return zero, fmt.Errorf("%s code %q: %w", s.desc.Name, key, sentinel.ErrAlreadyUsed)
		}
	}

	s.nextID++
	env := stored.Meta()
	env.ID = s.nextID
	env.Version = 1
	s.byID[env.ID] = stored
	if keyed {
		s.byKey[key] = env.ID
	}
	return lifecycle.Clone(s.desc, stored)
}

func (s *InMemory[T]) Update(_ context.Context, rec T, expectedVersion int64) (T, error) {
	var zero T
	next, err := lifecycle.Clone(s.desc, rec)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := next.Meta().ID
	current, ok := s.byID[id]
	if !ok {
		return zero, fmt.Errorf("%s %d: %w", s.desc.Name, id, sentinel.ErrNotFound)
	}
	if current.Meta().Version != expectedVersion {
		return zero, fmt.Errorf("%s %d at version %d: %w", s.desc.Name, id, expectedVersion, sentinel.ErrConflict)
	}

	oldKey, keyed := s.desc.BusinessKey(current)
	if keyed {
		newKey, _ := s.desc.BusinessKey(next)
		if newKey != oldKey {
			if _, taken := s.byKey[newKey]; taken {
				return zero, fmt.Errorf("%s code %q: %w", s.desc.Name, newKey, sentinel.ErrAlreadyUsed)
			}
			delete(s.byKey, oldKey)
			s.byKey[newKey] = id
		}
	}

	next.Meta().Version = expectedVersion + 1
	s.byID[id] = next
	return lifecycle.Clone(s.desc, next)
}

func (s *InMemory[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s %d: %w", s.desc.Name, id, sentinel.ErrNotFound)
	}
	if key, keyed := s.desc.BusinessKey(rec); keyed {
		delete(s.byKey, key)
	}
	delete(s.byID, id)
	return nil
}

// Len returns the number of stored records.
func (s *InMemory[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
