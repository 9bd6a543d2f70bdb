// Package validation holds the value types the engine produces: findings,
// per-record results and aggregated reports.
package validation

import (
	"time"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
)

// Finding is a single validation issue. It carries no identity beyond its
// content.
type Finding struct {
	Field       string        `json:"field"`
	Message     string        `json:"message"`
	Severity    rule.Severity `json:"severity"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// Result is the validation outcome for one record. IsValid is always
// equivalent to len(Errors) == 0.
type Result struct {
	RecordID    string      `json:"recordId"`
	RecordType  record.Kind `json:"recordType"`
	IsValid     bool        `json:"isValid"`
	Errors      []Finding   `json:"errors"`
	Warnings    []Finding   `json:"warnings"`
	Suggestions []Finding   `json:"suggestions"`
	Score       int         `json:"score"`
	ValidatedAt time.Time   `json:"validatedAt"`
}

func NewResult(recordID string, kind record.Kind) *Result {
	return &Result{
		RecordID:    recordID,
		RecordType:  kind,
		IsValid:     true,
		Errors:      []Finding{},
		Warnings:    []Finding{},
		Suggestions: []Finding{},
		ValidatedAt: time.Now(),
	}
}

// Add routes a finding into the severity bucket and re-derives IsValid.
func (r *Result) Add(f Finding) {
	switch f.Severity {
	case rule.SeverityError:
		r.Errors = append(r.Errors, f)
	case rule.SeverityWarning:
		r.Warnings = append(r.Warnings, f)
	default:
		r.Suggestions = append(r.Suggestions, f)
	}
	r.IsValid = len(r.Errors) == 0
}

// Summary are the aggregate counts of a validated batch.
type Summary struct {
	TotalRecords int     `json:"totalRecords"`
	ValidRecords int     `json:"validRecords"`
	ErrorCount   int     `json:"errorCount"`
	WarningCount int     `json:"warningCount"`
	AverageScore float64 `json:"averageScore"`
}

// Issue is one entry of a report's frequency ranking.
type Issue struct {
	Message  string        `json:"message"`
	Count    int           `json:"count"`
	Severity rule.Severity `json:"severity"`
}

// Report is the derived, never-persisted batch summary.
type Report struct {
	Summary         Summary   `json:"summary"`
	TopIssues       []Issue   `json:"topIssues"`
	Recommendations []string  `json:"recommendations"`
	GeneratedAt     time.Time `json:"generatedAt"`
}
