package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/validation"
)

// Limits bounds accepted uploads.
type Limits struct {
	MaxFileSize int64
	MaxRows     int
}

// Service provides the business logic for the validation workflow:
// file ingestion, variable categorization, and validation runs.
type Service struct {
	store  Store
	engine *validation.Engine
	limits Limits
	now    func() time.Time
}

// NewService creates a Service over the given store.
func NewService(store Store, engine *validation.Engine, limits Limits) *Service {
	return &Service{
		store:  store,
		engine: engine,
		limits: limits,
		now:    time.Now,
	}
}

// CreateFromUpload parses an uploaded spreadsheet and persists a new session.
func (s *Service) CreateFromUpload(ctx context.Context, fileName string, fileData []byte) (*Session, error) {
	if s.limits.MaxFileSize > 0 && int64(len(fileData)) > s.limits.MaxFileSize {
		return nil, &UploadError{Reason: fmt.Errorf("file exceeds maximum size of %d bytes", s.limits.MaxFileSize)}
	}

	ds, err := dataset.Parse(fileName, fileData)
	if err != nil {
		return nil, &UploadError{Reason: fmt.Errorf("parse %s: %w", fileName, err)}
	}
	if s.limits.MaxRows > 0 && ds.Len() > s.limits.MaxRows {
		return nil, &UploadError{Reason: fmt.Errorf("file has %d rows, maximum is %d", ds.Len(), s.limits.MaxRows)}
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.New(),
		FileName:  fileName,
		FileSize:  int64(len(fileData)),
		Columns:   ds.Columns,
		RowCount:  ds.Len(),
		Data:      ds,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Get(ctx, id)
}

// List returns summaries of all stored sessions.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	return s.store.List(ctx)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// SetCategorization validates and stores the variable role assignment.
// Any previously stored report is discarded since it no longer matches.
func (s *Service) SetCategorization(ctx context.Context, id uuid.UUID, schema *validation.Schema) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	schema.Normalize(sess.Data.Columns)
	if err := schema.Validate(sess.Data.Columns); err != nil {
		return nil, &CategorizationError{Reason: err}
	}

	if err := s.store.SetSchema(ctx, id, schema, s.now().UTC()); err != nil {
		return nil, err
	}
	sess.Schema = schema
	sess.Report = nil
	return sess, nil
}

// PreValidate runs only the identification completeness check.
func (s *Service) PreValidate(ctx context.Context, id uuid.UUID) ([]validation.Error, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasCategorization() {
		return nil, ErrNoCategorization
	}
	return s.engine.PreValidate(sess.Data, sess.Schema), nil
}

// Run executes the full validation pipeline and persists the report on success.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*validation.Outcome, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasCategorization() {
		return nil, ErrNoCategorization
	}

	outcome := s.engine.Run(sess.Data, sess.Schema)
	if outcome.Kind == validation.OutcomeOK {
		if err := s.store.SetReport(ctx, id, outcome.Report, s.now().UTC()); err != nil {
			return nil, err
		}
	}
	return &outcome, nil
}

// Report returns the stored report for a completed validation run.
func (s *Service) Report(ctx context.Context, id uuid.UUID) (*validation.Report, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasReport() {
		return nil, ErrNoReport
	}
	return sess.Report, nil
}
