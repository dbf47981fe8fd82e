package validation

// report.go assembles the four check results into one report.
//
// Assembly is pure aggregation: the overall status is error when any
// check is invalid, warning when any check carries warnings, success
// otherwise. The report is constructed once per run, serialized for
// transport, and never mutated afterwards.

import (
	"time"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// Status is the overall outcome of a validation run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Summary condenses a report for list views and the banner line.
type Summary struct {
	TotalItems       int     `json:"total_items"`
	TotalInstruments int     `json:"total_instruments"`
	ValidationStatus Status  `json:"validation_status"`
	Timestamp        string  `json:"timestamp"`
	Categorization   *Schema `json:"categorization"`
}

// Report is the complete output of one validation run.
type Report struct {
	Summary        Summary               `json:"summary"`
	Duplicates     *DuplicateResult      `json:"duplicate_validation"`
	Metadata       *MetadataResult       `json:"metadata_validation"`
	Classification *ClassificationResult `json:"classification_validation"`
	Advanced       *AdvancedResult       `json:"advanced_validation"`
}

// AssembleReport merges the check results and computes the overall
// status.
func AssembleReport(
	d *dataset.Dataset,
	s *Schema,
	p *Partition,
	dup *DuplicateResult,
	meta *MetadataResult,
	class *ClassificationResult,
	adv *AdvancedResult,
	now time.Time,
) *Report {
	hasErrors := !dup.IsValid || !meta.IsValid || !class.IsValid || !adv.IsValid
	hasWarnings := len(dup.Warnings) > 0 || len(meta.Warnings) > 0 ||
		len(class.Warnings) > 0 || len(adv.Warnings) > 0

	status := StatusSuccess
	switch {
	case hasErrors:
		status = StatusError
	case hasWarnings:
		status = StatusWarning
	}

	return &Report{
		Summary: Summary{
			TotalItems:       d.Len(),
			TotalInstruments: p.Len(),
			ValidationStatus: status,
			Timestamp:        now.UTC().Format(time.RFC3339),
			Categorization:   s,
		},
		Duplicates:     dup,
		Metadata:       meta,
		Classification: class,
		Advanced:       adv,
	}
}
