package dtos

import (
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/validation"
)

// APIError standardizes JSON error responses.
type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// DatasetUploadRequest carries the decoded rows of one collection upload.
type DatasetUploadRequest struct {
	Records []record.Record `json:"records"`
}

// DatasetResponse wraps one collection.
type DatasetResponse struct {
	Kind    record.Kind     `json:"kind"`
	Count   int             `json:"count"`
	Records []record.Record `json:"records"`
}

// DatasetSummaryResponse lists all collections with row counts.
type DatasetSummaryResponse struct {
	Clients int `json:"clients"`
	Workers int `json:"workers"`
	Tasks   int `json:"tasks"`
}

// ValidateRequest optionally carries the batch to validate. When Records is
// absent the stored collection is validated instead.
type ValidateRequest struct {
	Records []record.Record `json:"records"`
}

// ValidateResponse pairs the index-aligned results with their report.
type ValidateResponse struct {
	Results []*validation.Result `json:"results"`
	Report  validation.Report    `json:"report"`
}

// RuleResponse is the JSON form of one catalog rule.
type RuleResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Field         string    `json:"field"`
	Predicate     rule.Spec `json:"predicate"`
	Message       string    `json:"message"`
	Severity      string    `json:"severity"`
	AutoFixable   bool      `json:"autoFixable"`
	FixSuggestion string    `json:"fixSuggestion,omitempty"`
}

func NewRuleResponse(r rule.Rule) RuleResponse {
	return RuleResponse{
		ID:            r.ID,
		Name:          r.Name,
		Field:         r.Field,
		Predicate:     rule.SpecOf(r.Predicate),
		Message:       r.Message,
		Severity:      string(r.Severity),
		AutoFixable:   r.AutoFixable,
		FixSuggestion: r.FixSuggestion,
	}
}

// CreateRuleRequest declares a new rule.
type CreateRuleRequest struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Field         string    `json:"field"`
	Predicate     rule.Spec `json:"predicate"`
	Message       string    `json:"message"`
	Severity      string    `json:"severity"`
	AutoFixable   bool      `json:"autoFixable"`
	FixSuggestion string    `json:"fixSuggestion"`
}

// UpdateRuleRequest carries a partial rule update; nil fields are untouched.
type UpdateRuleRequest struct {
	Name          *string    `json:"name"`
	Field         *string    `json:"field"`
	Message       *string    `json:"message"`
	Severity      *string    `json:"severity"`
	AutoFixable   *bool      `json:"autoFixable"`
	FixSuggestion *string    `json:"fixSuggestion"`
	Predicate     *rule.Spec `json:"predicate"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
