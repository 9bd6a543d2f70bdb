package services

import (
	"context"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/dataset"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/validation"
	"github.com/allocat-dev/allocat/pkg/metrics"
)

// ValidationService runs the rule catalog over single records and whole
// batches, merging in cross-record and cross-dataset findings. It only ever
// reads the dataset store.
//
// Design invariant: validation always completes and returns one result per
// input record. Rule-evaluation faults and registry lookup faults are
// fail-open - the worst case of total breakdown is "no issues detected",
// never a crash.
type ValidationService struct {
	rules   *RuleService
	store   dataset.Store
	logger  *logrus.Logger
	workers int
}

func NewValidationService(rules *RuleService, store dataset.Store, logger *logrus.Logger, workers int) *ValidationService {
	if workers < 1 {
		workers = 1
	}
	return &ValidationService{
		rules:   rules,
		store:   store,
		logger:  logger,
		workers: workers,
	}
}

// ValidateRecord evaluates the kind's catalog rules against one record. Pure
// aside from catalog reads.
func (s *ValidationService) ValidateRecord(rec record.Record, kind record.Kind) *validation.Result {
	return s.validateRecordAt(rec, kind, 0)
}

func (s *ValidationService) validateRecordAt(rec record.Record, kind record.Kind, index int) *validation.Result {
	result := validation.NewResult(record.Identifier(rec, kind, index), kind)

	for _, r := range s.rules.Rules(kind) {
		outcome := r.Evaluate(rec)
		if outcome.Fault != nil {
			// Fail-open: one broken rule must not poison the batch.
			metrics.RuleFaultsTotal.WithLabelValues(string(kind)).Inc()
			s.logger.WithError(outcome.Fault).WithFields(logrus.Fields{
				"rule": r.ID,
				"kind": kind,
			}).Warn("rule evaluation faulted, treating as passed")
			continue
		}
		if outcome.Ok {
			continue
		}
		finding := validation.Finding{
			Field:    r.Field,
			Message:  r.Message,
			Severity: r.Severity,
		}
		if r.FixSuggestion != "" {
			finding.Suggestions = []string{r.FixSuggestion}
		}
		result.Add(finding)
	}

	result.Score = score(rec, result)
	return result
}

// score implements the quality formula:
// clamp(0, 100, round(100 - 20*errors - 10*warnings - 5*suggestions +
// 10*(nonEmptyFields/totalFields))).
func score(rec record.Record, result *validation.Result) int {
	completeness := 0.0
	if nonEmpty, total := rec.Completeness(); total > 0 {
		completeness = float64(nonEmpty) / float64(total)
	}
	raw := 100.0 -
		20.0*float64(len(result.Errors)) -
		10.0*float64(len(result.Warnings)) -
		5.0*float64(len(result.Suggestions)) +
		10.0*completeness
	rounded := int(math.Round(raw))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// ValidateBatch validates every record of the batch and merges in
// cross-record findings. Results are index-aligned with the input.
//
// Per-record validation is embarrassingly parallel (the store is read-only
// during validation), so it is fanned out over a bounded worker pool;
// cross-record checks run after the fan-in because they merge positionally
// into the same results.
func (s *ValidationService) ValidateBatch(ctx context.Context, records []record.Record, kind record.Kind) []*validation.Result {
	results := make([]*validation.Result, len(records))
	if len(records) == 0 {
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec record.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.validateRecordAt(rec, kind, i)
		}(i, rec)
	}
	wg.Wait()

	s.crossValidate(records, kind, results)

	metrics.ValidationsTotal.WithLabelValues(string(kind)).Add(float64(len(records)))
	for _, result := range results {
		metrics.FindingsTotal.WithLabelValues(string(kind), string(rule.SeverityError)).Add(float64(len(result.Errors)))
		metrics.FindingsTotal.WithLabelValues(string(kind), string(rule.SeverityWarning)).Add(float64(len(result.Warnings)))
	}
	return results
}
