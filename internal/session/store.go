package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/validation"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// DBTX is the subset of pgx operations the store needs.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists validation sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	SetSchema(ctx context.Context, id uuid.UUID, schema *validation.Schema, at time.Time) error
	SetReport(ctx context.Context, id uuid.UUID, report *validation.Report, at time.Time) error
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db DBTX
}

// NewPGStore creates a store over the given connection or pool.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// payload is the JSONB shape of the stored dataset.
type payload struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Create inserts a new session row.
func (st *PGStore) Create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(payload{Columns: s.Data.Columns, Rows: s.Data.Rows})
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	_, err = st.db.Exec(ctx, `
		INSERT INTO validation_sessions
			(id, file_name, file_size, row_count, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.FileName, s.FileSize, s.RowCount, data, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get loads a session by ID, rebuilding the in-memory dataset.
func (st *PGStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := st.db.QueryRow(ctx, `
		SELECT id, file_name, file_size, row_count, payload, categorization, report, created_at, updated_at
		FROM validation_sessions WHERE id = $1`, id)

	var (
		s          Session
		data       []byte
		schemaJSON []byte
		reportJSON []byte
	)
	err := row.Scan(&s.ID, &s.FileName, &s.FileSize, &s.RowCount, &data, &schemaJSON, &reportJSON, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	ds, err := dataset.New(p.Columns, p.Rows)
	if err != nil {
		return nil, fmt.Errorf("rebuild dataset: %w", err)
	}
	s.Data = ds
	s.Columns = ds.Columns

	if len(schemaJSON) > 0 {
		var schema validation.Schema
		if err := json.Unmarshal(schemaJSON, &schema); err != nil {
			return nil, fmt.Errorf("decode categorization: %w", err)
		}
		s.Schema = &schema
	}
	if len(reportJSON) > 0 {
		var report validation.Report
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		s.Report = &report
	}

	return &s, nil
}

// SetSchema stores the variable categorization and clears any stale report.
func (st *PGStore) SetSchema(ctx context.Context, id uuid.UUID, schema *validation.Schema, at time.Time) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode categorization: %w", err)
	}

	tag, err := st.db.Exec(ctx, `
		UPDATE validation_sessions
		SET categorization = $2, report = NULL, updated_at = $3
		WHERE id = $1`, id, data, at)
	if err != nil {
		return fmt.Errorf("update categorization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetReport stores the result of a validation run.
func (st *PGStore) SetReport(ctx context.Context, id uuid.UUID, report *validation.Report, at time.Time) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tag, err := st.db.Exec(ctx, `
		UPDATE validation_sessions
		SET report = $2, updated_at = $3
		WHERE id = $1`, id, data, at)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns summaries of all sessions, newest first.
func (st *PGStore) List(ctx context.Context) ([]Info, error) {
	rows, err := st.db.Query(ctx, `
		SELECT id, file_name, file_size, row_count, payload -> 'columns',
		       categorization IS NOT NULL, report IS NOT NULL, created_at, updated_at
		FROM validation_sessions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info     Info
			colsJSON []byte
		)
		if err := rows.Scan(&info.ID, &info.FileName, &info.FileSize, &info.RowCount,
			&colsJSON, &info.HasSchema, &info.HasReport, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal(colsJSON, &info.Columns); err != nil {
			return nil, fmt.Errorf("decode columns: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return infos, nil
}

// Delete removes a session.
func (st *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := st.db.Exec(ctx, `DELETE FROM validation_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes up to limit sessions not touched since cutoff.
// Returns the number of sessions deleted.
func (st *PGStore) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	tag, err := st.db.Exec(ctx, `
		DELETE FROM validation_sessions
		WHERE id IN (
			SELECT id FROM validation_sessions
			WHERE updated_at < $1
			ORDER BY updated_at
			LIMIT $2
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
