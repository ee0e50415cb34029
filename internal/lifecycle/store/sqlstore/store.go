// Package sqlstore persists records of every entity kind in one shared table,
// catalog_records. Envelope fields live in columns; business attributes live in
// a JSON column. Ids are allocated per kind from catalog_sequences.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"channelling/internal/lifecycle"
	"channelling/pkg/platform/sentinel"
	txcontext "channelling/pkg/platform/tx"
)

const selectColumns = "id, status, created_user, created_date, modified_user, modified_date, version, attributes"

// Store implements lifecycle.Store for one entity kind.
type Store[T lifecycle.Record] struct {
	db      *sql.DB
	dialect Dialect
	desc    lifecycle.Descriptor[T]
}

// New creates a store for the kind described by desc. The schema must already be
// migrated (see internal/platform/database).
func New[T lifecycle.Record](db *sql.DB, dialect Dialect, desc lifecycle.Descriptor[T]) *Store[T] {
	return &Store[T]{db: db, dialect: dialect, desc: desc}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store[T]) conn(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (T, error) {
	query := s.dialect.Rebind(`SELECT ` + selectColumns + ` FROM catalog_records WHERE kind = ? AND id = ?`)
	rec, err := s.scan(s.conn(ctx).QueryRowContext(ctx, query, s.desc.Name, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s %d: %w", s.desc.Name, id, sentinel.ErrNotFound)
		}
		return zero, fmt.Errorf("find %s %d: %w", s.desc.Name, id, err)
	}
	return rec, nil
}

func (s *Store[T]) FindAll(ctx context.Context) ([]T, error) {
	return s.FindWhere(ctx, lifecycle.Filter{})
}

func (s *Store[T]) FindWhere(ctx context.Context, filter lifecycle.Filter) ([]T, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + selectColumns + ` FROM catalog_records WHERE kind = ?`)
	args := []any{s.desc.Name}
	if filter.Status != "" {
		b.WriteString(` AND status = ?`)
		args = append(args, string(filter.Status))
	}
	if filter.Code != "" {
		b.WriteString(` AND code = ?`)
		args = append(args, filter.Code)
	}
	if filter.Field != "" {
		b.WriteString(` AND ` + s.dialect.attribute + ` = ?`)
		args = append(args, filter.Field, filter.Value)
	}
	b.WriteString(` ORDER BY id`)

	rows, err := s.conn(ctx).QueryContext(ctx, s.dialect.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.desc.Name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.desc.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.desc.Name, err)
	}
	return out, nil
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	attrs, err := s.attributes(rec)
	if err != nil {
		return zero, err
	}
	code := s.code(rec)
	env := rec.Meta()

	err = txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var id int64
		next := s.dialect.Rebind(`INSERT INTO catalog_sequences (kind, last_id) VALUES (?, 1)
			ON CONFLICT (kind) DO UPDATE SET last_id = catalog_sequences.last_id + 1
			RETURNING last_id`)
		if err := tx.QueryRowContext(ctx, next, s.desc.Name).Scan(&id); err != nil {
			return fmt.Errorf("allocate %s id: %w", s.desc.Name, err)
		}

		insert := s.dialect.Rebind(`INSERT INTO catalog_records
			(kind, id, status, code, created_user, created_date, modified_user, modified_date, version, attributes)
			VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, 1, ?)`)
		_, err := tx.ExecContext(ctx, insert,
			s.desc.Name, id, string(env.Status), code, env.CreatedBy, s.dialect.timeValue(env.CreatedAt), attrs)
		if err != nil {
			if s.dialect.isUniqueViolation(err) {
				return fmt.Errorf("%s code %v: %w", s.desc.Name, code, sentinel.ErrAlreadyUsed)
			}
			return fmt.Errorf("insert %s: %w", s.desc.Name, err)
		}
		env.ID = id
		env.Version = 1
		return nil
	})
	if err != nil {
		return zero, err
	}
	return s.FindByID(ctx, env.ID)
}

// Update writes rec only while the stored version equals expectedVersion; the
// WHERE clause makes the comparison and the increment one atomic statement.
func (s *Store[T]) Update(ctx context.Context, rec T, expectedVersion int64) (T, error) {
	var zero T
	attrs, err := s.attributes(rec)
	if err != nil {
		return zero, err
	}
	env := rec.Meta()
	var modifiedAt any
	if env.ModifiedAt != nil {
		modifiedAt = s.dialect.timeValue(*env.ModifiedAt)
	}

	query := s.dialect.Rebind(`UPDATE catalog_records
		SET status = ?, code = ?, modified_user = ?, modified_date = ?, version = version + 1, attributes = ?
		WHERE kind = ? AND id = ? AND version = ?`)
	res, err := s.conn(ctx).ExecContext(ctx, query,
		string(env.Status), s.code(rec), nullString(env.ModifiedBy), modifiedAt, attrs,
		s.desc.Name, env.ID, expectedVersion)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return zero, fmt.Errorf("%s %d: %w", s.desc.Name, env.ID, sentinel.ErrAlreadyUsed)
		}
		return zero, fmt.Errorf("update %s %d: %w", s.desc.Name, env.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", s.desc.Name, env.ID, err)
	}
	if affected == 0 {
		if _, err := s.FindByID(ctx, env.ID); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s %d at version %d: %w", s.desc.Name, env.ID, expectedVersion, sentinel.ErrConflict)
	}
	return s.FindByID(ctx, env.ID)
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	query := s.dialect.Rebind(`DELETE FROM catalog_records WHERE kind = ? AND id = ?`)
	res, err := s.conn(ctx).ExecContext(ctx, query, s.desc.Name, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.desc.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.desc.Name, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", s.desc.Name, id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store[T]) scan(row rowScanner) (T, error) {
	var (
		zero         T
		env          lifecycle.Envelope
		status       string
		created      timestamp
		modifiedUser sql.NullString
		modified     timestamp
		attrs        []byte
	)
	if err := row.Scan(&env.ID, &status, &env.CreatedBy, &created, &modifiedUser, &modified, &env.Version, &attrs); err != nil {
		return zero, err
	}
	env.Status = lifecycle.Status(status)
	env.CreatedAt = created.Time
	env.ModifiedBy = modifiedUser.String
	if modified.Valid {
		t := modified.Time
		env.ModifiedAt = &t
	}

	rec := s.desc.New()
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, rec); err != nil {
			return zero, fmt.Errorf("decode %s attributes: %w", s.desc.Name, err)
		}
	}
	*rec.Meta() = env
	return rec, nil
}

// attributes is the JSON form of rec without envelope fields.
func (s *Store[T]) attributes(rec T) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s.desc.Name, err)
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return "", fmt.Errorf("encode %s: %w", s.desc.Name, err)
	}
	for _, field := range lifecycle.EnvelopeFields {
		delete(attrs, field)
	}
	out, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s.desc.Name, err)
	}
	return string(out), nil
}

func (s *Store[T]) code(rec T) any {
	if key, ok := s.desc.BusinessKey(rec); ok {
		return key
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

