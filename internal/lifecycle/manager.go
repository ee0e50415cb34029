package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"channelling/internal/audit"
	"channelling/internal/lifecycle/metrics"
	dErrors "channelling/pkg/domain-errors"
	"channelling/pkg/platform/sentinel"
	"channelling/pkg/requestcontext"
)

const tracerName = "channelling/internal/lifecycle"

// AuditPublisher receives an event after every successful write.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type options struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher AuditPublisher
	tracer    trace.Tracer
	validate  *validator.Validate
}

// Option configures a Manager.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithValidator shares one validator (and its struct cache) across managers.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) {
		o.validate = v
	}
}

// Manager implements create, read, update and delete for one entity kind. It owns
// every envelope field: it stamps the audit trail from the request actor and
// time, forces ACTIVE on create, and rejects updates carrying a stale version.
//
// Business fields are only touched through the adapter's CopyFields.
type Manager[T Record] struct {
	adapter Adapter[T]
	guard   *Guard[T]
	options
}

// NewManager builds a manager over adapter.
func NewManager[T Record](adapter Adapter[T], opts ...Option) (*Manager[T], error) {
	if adapter.Name == "" {
		return nil, errors.New("entity kind name is required")
	}
	if adapter.Store == nil {
		return nil, fmt.Errorf("%s store is required", adapter.Name)
	}
	if adapter.New == nil || adapter.CopyFields == nil {
		return nil, fmt.Errorf("%s descriptor must define New and CopyFields", adapter.Name)
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.validate == nil {
		o.validate = NewValidator()
	}
	return &Manager[T]{
		adapter: adapter,
		guard:   NewGuard(adapter.Name, adapter.Store),
		options: o,
	}, nil
}

// Kind returns the entity kind this manager serves.
func (m *Manager[T]) Kind() string {
	return m.adapter.Name
}

// Descriptor returns the entity descriptor.
func (m *Manager[T]) Descriptor() Descriptor[T] {
	return m.adapter.Descriptor
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// FindAll returns every record of the kind regardless of status.
func (m *Manager[T]) FindAll(ctx context.Context) ([]T, error) {
	var out []T
	err := m.observe(ctx, "find_all", 0, func(ctx context.Context) error {
		recs, err := m.adapter.Store.FindAll(ctx)
		if err != nil {
			return m.internal(err, "list")
		}
		out = recs
		return nil
	})
	return out, err
}

// FindByID returns the record with id or a CodeNotFound error.
func (m *Manager[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var out T
	err := m.observe(ctx, "find_by_id", id, func(ctx context.Context) error {
		rec, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	return out, err
}

// FindByStatus returns the records in status. An empty result is not an error.
func (m *Manager[T]) FindByStatus(ctx context.Context, status Status) ([]T, error) {
	var out []T
	err := m.observe(ctx, "find_by_status", 0, func(ctx context.Context) error {
		if !status.Valid() {
			return dErrors.Validation(fmt.Sprintf("status must be %s or %s", StatusActive, StatusInactive), "status")
		}
		recs, err := m.adapter.Store.FindWhere(ctx, Filter{Status: status})
		if err != nil {
			return m.internal(err, "list")
		}
		out = recs
		return nil
	})
	return out, err
}

// FindByCode returns the record holding code. Only valid for code-bearing kinds.
func (m *Manager[T]) FindByCode(ctx context.Context, code string) (T, error) {
	var out T
	err := m.observe(ctx, "find_by_code", 0, func(ctx context.Context) error {
		if !m.adapter.CodeBearing() {
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s records have no code", m.adapter.Name))
		}
		recs, err := m.adapter.Store.FindWhere(ctx, Filter{Code: code})
		if err != nil {
			return m.internal(err, "find")
		}
		if len(recs) == 0 {
			return dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("no %s record found for the code : %s", m.adapter.Name, code))
		}
		out = recs[0]
		return nil
	})
	return out, err
}

// FindByReference lists the records whose reference attribute field equals id,
// e.g. the states of one country. field must be declared on the descriptor.
func (m *Manager[T]) FindByReference(ctx context.Context, field string, id int64) ([]T, error) {
	var out []T
	err := m.observe(ctx, "find_by_reference", id, func(ctx context.Context) error {
		if !m.adapter.HasReference(field) {
			return dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("%s records cannot be filtered by %q", m.adapter.Name, field))
		}
		recs, err := m.adapter.Store.FindWhere(ctx, Filter{Field: field, Value: strconv.FormatInt(id, 10)})
		if err != nil {
			return m.internal(err, "list")
		}
		out = recs
		return nil
	})
	return out, err
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Create persists payload as a new ACTIVE record stamped with the current actor.
// Envelope values carried by payload are discarded. payload is consumed.
func (m *Manager[T]) Create(ctx context.Context, payload T) (T, error) {
	var out T
	err := m.observe(ctx, "create", 0, func(ctx context.Context) error {
		actor, err := requestcontext.RequireActor(ctx)
		if err != nil {
			return err
		}
		if err := m.validateRecord(payload); err != nil {
			return err
		}
		key, keyed := m.adapter.BusinessKey(payload)
		if keyed {
			if err := m.guard.EnsureUnique(ctx, key); err != nil {
				return err
			}
		}

		*payload.Meta() = Envelope{
			Status:    StatusActive,
			CreatedBy: actor,
			CreatedAt: stampTime(ctx),
		}

		created, err := m.adapter.Store.Insert(ctx, payload)
		if err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return duplicateKey(m.adapter.Name, key)
			}
			return m.internal(err, "save")
		}
		if m.metrics != nil {
			m.metrics.IncrementCreated(m.adapter.Name)
		}
		m.emit(ctx, audit.ActionRecordCreated, created.Meta(), actor)
		out = created
		return nil
	})
	return out, err
}

// Update applies the business fields and status of payload to the stored record
// id. payload's version must equal the stored version; anything else is a stale
// write and nothing is persisted. An empty payload status keeps the stored one.
func (m *Manager[T]) Update(ctx context.Context, id int64, payload T) (T, error) {
	var out T
	err := m.observe(ctx, "update", id, func(ctx context.Context) error {
		actor, err := requestcontext.RequireActor(ctx)
		if err != nil {
			return err
		}
		stored, err := m.loadForWrite(ctx, id)
		if err != nil {
			return err
		}

		incoming := payload.Meta()
		expected := stored.Meta().Version
		if incoming.Version != expected {
			return m.stale(id, incoming.Version)
		}

		status := stored.Meta().Status
		if incoming.Status != "" {
			parsed, err := ParseStatus(string(incoming.Status))
			if err != nil {
				return dErrors.Validation(err.Error(), "status")
			}
			status = parsed
		}

		m.adapter.CopyFields(stored, payload)
		now := stampTime(ctx)
		env := stored.Meta()
		env.Status = status
		env.ModifiedBy = actor
		env.ModifiedAt = &now

		if err := m.validateRecord(stored); err != nil {
			return err
		}

		updated, err := m.adapter.Store.Update(ctx, stored, expected)
		if err != nil {
			switch {
			case errors.Is(err, sentinel.ErrConflict):
				return m.stale(id, expected)
			case errors.Is(err, sentinel.ErrNotFound):
				return m.notFound(id)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				k, _ := m.adapter.BusinessKey(stored)
				return duplicateKey(m.adapter.Name, k)
			}
			return m.internal(err, "update")
		}
		m.emit(ctx, audit.ActionRecordUpdated, updated.Meta(), actor)
		out = updated
		return nil
	})
	return out, err
}

// Delete removes the record id. Deleting requires an authenticated actor.
func (m *Manager[T]) Delete(ctx context.Context, id int64) error {
	return m.observe(ctx, "delete", id, func(ctx context.Context) error {
		actor, err := requestcontext.RequireActor(ctx)
		if err != nil {
			return err
		}
		stored, err := m.loadForWrite(ctx, id)
		if err != nil {
			return err
		}
		if err := m.adapter.Store.Delete(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return m.notFound(id)
			}
			return m.internal(err, "delete")
		}
		m.emit(ctx, audit.ActionRecordDeleted, stored.Meta(), actor)
		return nil
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (m *Manager[T]) load(ctx context.Context, id int64) (T, error) {
	return m.find(ctx, m.adapter.Store, id)
}

// loadForWrite bypasses read-through copies: a cached record may lag behind a
// concurrent write and would turn a current version into a stale write.
func (m *Manager[T]) loadForWrite(ctx context.Context, id int64) (T, error) {
	store := m.adapter.Store
	if p, ok := store.(Primary[T]); ok {
		store = p.Primary()
	}
	return m.find(ctx, store, id)
}

func (m *Manager[T]) find(ctx context.Context, store Store[T], id int64) (T, error) {
	rec, err := store.FindByID(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, sentinel.ErrNotFound) {
			return zero, m.notFound(id)
		}
		return zero, m.internal(err, "find")
	}
	return rec, nil
}

func (m *Manager[T]) validateRecord(rec T) error {
	return validateStruct(m.validate, rec)
}

func (m *Manager[T]) notFound(id int64) error {
	return dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("no %s record found for the id : %d", m.adapter.Name, id))
}

func (m *Manager[T]) stale(id, version int64) error {
	if m.metrics != nil {
		m.metrics.IncrementStaleWrite(m.adapter.Name)
	}
	return dErrors.New(dErrors.CodeStaleWrite,
		fmt.Sprintf("%s record %d was modified by another user (version %d is out of date); reload and retry",
			m.adapter.Name, id, version))
}

func (m *Manager[T]) internal(err error, action string) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to %s %s", action, m.adapter.Name))
}

// emit is best effort: the write has already happened, so a failing sink is
// logged and does not fail the request.
func (m *Manager[T]) emit(ctx context.Context, action audit.Action, env *Envelope, actor string) {
	if m.publisher == nil {
		return
	}
	err := m.publisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		Kind:      m.adapter.Name,
		RecordID:  env.ID,
		Version:   env.Version,
		Actor:     actor,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"kind", m.adapter.Name,
			"record_id", env.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// observe wraps one operation in a span and records its outcome.
func (m *Manager[T]) observe(ctx context.Context, op string, id int64, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "lifecycle."+op, trace.WithAttributes(
		attribute.String("record.kind", m.adapter.Name),
	))
	defer span.End()
	if id != 0 {
		span.SetAttributes(attribute.Int64("record.id", id))
	}

	err := fn(ctx)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == string(dErrors.CodeInternal) {
			m.logger.ErrorContext(ctx, "lifecycle operation failed",
				"op", op,
				"kind", m.adapter.Name,
				"record_id", id,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	if m.metrics != nil {
		m.metrics.Observe(m.adapter.Name, op, outcome, start)
	}
	return err
}

// stampTime is the request time at the precision every store can round-trip.
func stampTime(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
}
