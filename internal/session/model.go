// Package session manages validation sessions: an uploaded spreadsheet,
// its variable categorization, and the most recent validation report.
// Sessions are persisted in PostgreSQL and expire after a configurable TTL.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/validation"
)

// Session holds the state of one validation workflow.
type Session struct {
	ID        uuid.UUID          `json:"id"`
	FileName  string             `json:"file_name"`
	FileSize  int64              `json:"file_size"`
	Columns   []string           `json:"columns"`
	RowCount  int                `json:"row_count"`
	Data      *dataset.Dataset   `json:"-"`
	Schema    *validation.Schema `json:"categorization,omitempty"`
	Report    *validation.Report `json:"report,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// HasCategorization reports whether the user has assigned variable roles.
func (s *Session) HasCategorization() bool {
	return s.Schema != nil
}

// HasReport reports whether a validation run has completed for this session.
func (s *Session) HasReport() bool {
	return s.Report != nil
}

// Info is the session summary returned by list and create endpoints.
// It omits the dataset payload.
type Info struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	Columns   []string  `json:"columns"`
	RowCount  int       `json:"row_count"`
	HasSchema bool      `json:"has_categorization"`
	HasReport bool      `json:"has_report"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the session's Info view.
func (s *Session) Summary() Info {
	return Info{
		ID:        s.ID,
		FileName:  s.FileName,
		FileSize:  s.FileSize,
		Columns:   s.Columns,
		RowCount:  s.RowCount,
		HasSchema: s.HasCategorization(),
		HasReport: s.HasReport(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
