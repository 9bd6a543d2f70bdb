package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/validation"
	"github.com/allocat-dev/allocat/modules/planning/services"
)

func resultWith(score int, findings ...validation.Finding) *validation.Result {
	r := validation.NewResult("r", record.KindClients)
	for _, f := range findings {
		r.Add(f)
	}
	r.Score = score
	return r
}

func TestSummarize_EmptyInput(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	report := sut.Summarize(nil)
	assert.Equal(t, 0, report.Summary.TotalRecords)
	assert.Zero(t, report.Summary.AverageScore)
	assert.Empty(t, report.TopIssues)
	assert.Empty(t, report.Recommendations)
}

func TestSummarize_Counts(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	report := sut.Summarize([]*validation.Result{
		resultWith(100),
		resultWith(80, validation.Finding{Message: "ClientID is required", Severity: rule.SeverityError}),
		resultWith(90, validation.Finding{Message: "Duplicate ClientID", Severity: rule.SeverityWarning}),
	})

	assert.Equal(t, 3, report.Summary.TotalRecords)
	assert.Equal(t, 2, report.Summary.ValidRecords)
	assert.Equal(t, 1, report.Summary.ErrorCount)
	assert.Equal(t, 1, report.Summary.WarningCount)
	assert.InDelta(t, 90, report.Summary.AverageScore, 0.0001)
	assert.NotEmpty(t, report.Recommendations)
}

func TestSummarize_NoIssuesNoTopIssues(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	report := sut.Summarize([]*validation.Result{resultWith(100), resultWith(100)})
	assert.Empty(t, report.TopIssues)
	assert.NotEmpty(t, report.Recommendations)
}

func TestSummarize_TopIssuesRankedAndCapped(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	results := make([]*validation.Result, 0)
	// "common" appears three times, "rare-N" once each; twelve distinct
	// messages in total.
	for i := 0; i < 3; i++ {
		results = append(results, resultWith(50, validation.Finding{Message: "common", Severity: rule.SeverityError}))
	}
	for i := 0; i < 12; i++ {
		results = append(results, resultWith(50, validation.Finding{
			Message:  fmt.Sprintf("rare-%d", i),
			Severity: rule.SeverityWarning,
		}))
	}

	report := sut.Summarize(results)
	require.Len(t, report.TopIssues, 10)
	assert.Equal(t, "common", report.TopIssues[0].Message)
	assert.Equal(t, 3, report.TopIssues[0].Count)
	// Ties keep encounter order.
	assert.Equal(t, "rare-0", report.TopIssues[1].Message)
	assert.Equal(t, "rare-1", report.TopIssues[2].Message)
}

func TestSummarize_InfoFindingsNotRanked(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	report := sut.Summarize([]*validation.Result{
		resultWith(95, validation.Finding{Message: "PriorityLevel should be one of 1, 2, 3, 4 or 5", Severity: rule.SeverityInfo}),
	})
	assert.Empty(t, report.TopIssues)
}

func TestReportService_LatestAndInvalidate(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	_, ok := sut.Latest()
	assert.False(t, ok)

	generated := sut.Summarize([]*validation.Result{resultWith(100)})
	latest, ok := sut.Latest()
	require.True(t, ok)
	assert.Equal(t, generated.Summary, latest.Summary)

	sut.Invalidate()
	_, ok = sut.Latest()
	assert.False(t, ok)
}

func TestSummarize_NilResultsSkipped(t *testing.T) {
	t.Parallel()
	sut := services.NewReportService()

	report := sut.Summarize([]*validation.Result{nil, resultWith(80)})
	assert.Equal(t, 1, report.Summary.TotalRecords)
}
