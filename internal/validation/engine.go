package validation

import (
	"fmt"
	"time"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// OutcomeKind tags the result of a validation run.
type OutcomeKind string

const (
	// OutcomeOK: the run completed and produced a report. The report
	// itself may still carry an error status; that is validation output,
	// not an engine failure.
	OutcomeOK OutcomeKind = "ok"

	// OutcomePreValidationFailed: identification columns contain missing
	// values; no partitioning or checks ran.
	OutcomePreValidationFailed OutcomeKind = "prevalidation_failed"

	// OutcomeFailed: the schema is invalid or a mandatory check hit a
	// programming defect.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the tagged result of Engine.Run. Callers switch on Kind
// instead of catching anything.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Report *Report     `json:"report,omitempty"`
	Errors []Error     `json:"errors,omitempty"`
}

// Engine runs the full validation battery. It is stateless across runs;
// the clock is injectable so tests can demand byte-identical reports.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine with the real clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PreValidate exposes the cheap identification check on its own, so a
// caller can reject bad data before paying for the full run.
func (e *Engine) PreValidate(d *dataset.Dataset, s *Schema) []Error {
	schema := cloneSchema(s)
	schema.Normalize(d.Columns)
	if err := schema.Validate(d.Columns); err != nil {
		return []Error{schemaError(err)}
	}
	return PreValidate(d, schema)
}

// Run validates the dataset against the schema and returns a tagged
// outcome. The checks execute in a fixed order (duplicates, metadata,
// classification, advanced) for consistent error ordering; they are
// read-only over the same partition, so the order does not change any
// result.
func (e *Engine) Run(d *dataset.Dataset, s *Schema) (outcome Outcome) {
	defer func() {
		// A mandatory check must never panic on well-formed input; a
		// panic here is a programming defect surfaced as a terminal
		// failure, never a partial report.
		if r := recover(); r != nil {
			outcome = Outcome{
				Kind: OutcomeFailed,
				Errors: []Error{{
					Message:  fmt.Sprintf("Error crítico durante generación de reporte: %v", r),
					Code:     CodeRunFailed,
					Severity: SeverityError,
				}},
			}
		}
	}()

	schema := cloneSchema(s)
	schema.Normalize(d.Columns)
	if err := schema.Validate(d.Columns); err != nil {
		return Outcome{Kind: OutcomeFailed, Errors: []Error{schemaError(err)}}
	}

	if errs := PreValidate(d, schema); len(errs) > 0 {
		return Outcome{Kind: OutcomePreValidationFailed, Errors: errs}
	}

	partition := BuildPartition(d, schema.InstrumentVars)

	dup := ValidateDuplicates(d, schema, partition)
	meta := ValidateMetadata(d, schema)
	class := ValidateClassification(d, schema, partition)
	adv := ValidateAdvanced(d, schema, partition)

	report := AssembleReport(d, schema, partition, dup, meta, class, adv, e.now())
	return Outcome{Kind: OutcomeOK, Report: report}
}

// cloneSchema copies the schema so Normalize never mutates the caller's
// snapshot mid-run.
func cloneSchema(s *Schema) *Schema {
	clone := &Schema{
		InstrumentVars:     append([]string{}, s.InstrumentVars...),
		ItemIDVars:         append([]string{}, s.ItemIDVars...),
		MetadataVars:       append([]string{}, s.MetadataVars...),
		ClassificationVars: append([]string{}, s.ClassificationVars...),
		OtherVars:          append([]string{}, s.OtherVars...),
		Advanced:           s.Advanced,
	}
	return clone
}

// schemaError wraps a schema validation failure as a run error.
func schemaError(err error) Error {
	return Error{
		Message:  fmt.Sprintf("Categorización inválida: %v", err),
		Code:     CodeInvalidCategorization,
		Severity: SeverityError,
	}
}
