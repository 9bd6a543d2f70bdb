package services

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/validation"
)

// ReportService aggregates validation results into dashboard reports. The
// most recent report is cached until a dataset replacement invalidates it.
type ReportService struct {
	mu     sync.RWMutex
	latest *validation.Report
}

func NewReportService() *ReportService {
	return &ReportService{}
}

// Summarize folds a result set into counts, a frequency ranking of the ten
// most common error and warning messages, and recommendation text. An empty
// or nil result set yields a zero-count report with an average score of 0.
func (s *ReportService) Summarize(results []*validation.Result) validation.Report {
	report := validation.Report{
		TopIssues:       []validation.Issue{},
		Recommendations: []string{},
		GeneratedAt:     time.Now(),
	}

	counts := make(map[string]*validation.Issue)
	order := make([]string, 0)
	totalScore := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		report.Summary.TotalRecords++
		if result.IsValid {
			report.Summary.ValidRecords++
		}
		report.Summary.ErrorCount += len(result.Errors)
		report.Summary.WarningCount += len(result.Warnings)
		totalScore += result.Score

		for _, f := range result.Errors {
			tally(counts, &order, f.Message, rule.SeverityError)
		}
		for _, f := range result.Warnings {
			tally(counts, &order, f.Message, rule.SeverityWarning)
		}
	}
	if report.Summary.TotalRecords > 0 {
		mean := float64(totalScore) / float64(report.Summary.TotalRecords)
		report.Summary.AverageScore = math.Round(mean*100) / 100
	}

	// Ties keep first-encounter order.
	issues := make([]validation.Issue, 0, len(order))
	for _, message := range order {
		issues = append(issues, *counts[message])
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Count > issues[j].Count
	})
	if len(issues) > 10 {
		issues = issues[:10]
	}
	report.TopIssues = issues
	report.Recommendations = recommendations(report.Summary, issues)

	s.mu.Lock()
	s.latest = &report
	s.mu.Unlock()
	return report
}

func tally(counts map[string]*validation.Issue, order *[]string, message string, severity rule.Severity) {
	if issue, ok := counts[message]; ok {
		issue.Count++
		return
	}
	counts[message] = &validation.Issue{Message: message, Count: 1, Severity: severity}
	*order = append(*order, message)
}

// recommendations derives free-text guidance from the aggregate shape. The
// wording is advisory, not contractual, but it is deterministic for a given
// summary.
func recommendations(summary validation.Summary, issues []validation.Issue) []string {
	recs := []string{}
	if summary.TotalRecords == 0 {
		return recs
	}
	if summary.ErrorCount > 0 {
		recs = append(recs, fmt.Sprintf("Resolve the %d validation errors before running an allocation.", summary.ErrorCount))
	}
	if summary.WarningCount > 0 {
		recs = append(recs, fmt.Sprintf("Review the %d warnings; they often point at duplicated or saturated data.", summary.WarningCount))
	}
	if len(issues) > 0 {
		recs = append(recs, fmt.Sprintf("Most frequent issue (%d records): %s", issues[0].Count, issues[0].Message))
	}
	if summary.AverageScore < 70 {
		recs = append(recs, "Average record quality is low; fill in the optional columns to raise completeness.")
	}
	if len(recs) == 0 {
		recs = append(recs, "All records passed validation. The dataset is ready for allocation.")
	}
	return recs
}

// Latest returns the cached report, if one has been generated since the last
// dataset replacement.
func (s *ReportService) Latest() (validation.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return validation.Report{}, false
	}
	return *s.latest, true
}

// Invalidate drops the cached report. Wired to dataset replacement events.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()
}
