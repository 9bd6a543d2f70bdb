package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
)

func f64(v float64) *float64 { return &v }

func TestRequired(t *testing.T) {
	t.Parallel()
	sut := rule.Required{}

	assert.False(t, sut.Check(nil, nil).Ok)
	assert.False(t, sut.Check("   ", nil).Ok)
	assert.False(t, sut.Check([]any{}, nil).Ok)
	assert.True(t, sut.Check("W1", nil).Ok)
	assert.True(t, sut.Check(0, nil).Ok)
}

func TestRange(t *testing.T) {
	t.Parallel()
	sut := rule.Range{Min: f64(1), Max: f64(5)}

	assert.True(t, sut.Check(3, nil).Ok)
	assert.True(t, sut.Check("5", nil).Ok)
	assert.False(t, sut.Check(0, nil).Ok)
	assert.False(t, sut.Check(6, nil).Ok)
	assert.False(t, sut.Check("high", nil).Ok)
	// Blank values are Required's concern.
	assert.True(t, sut.Check(nil, nil).Ok)
	assert.True(t, sut.Check("", nil).Ok)
}

func TestPattern(t *testing.T) {
	t.Parallel()
	sut, err := rule.NewPattern(`^[A-Z]\d+$`)
	require.NoError(t, err)

	assert.True(t, sut.Check("C12", nil).Ok)
	assert.False(t, sut.Check("12C", nil).Ok)
	assert.True(t, sut.Check("", nil).Ok)

	_, err = rule.NewPattern(`([`)
	require.Error(t, err)
}

func TestEnum_CaseInsensitive(t *testing.T) {
	t.Parallel()
	sut := rule.Enum{Values: []string{"available", "busy"}}

	assert.True(t, sut.Check("Available", nil).Ok)
	assert.True(t, sut.Check(" BUSY ", nil).Ok)
	assert.False(t, sut.Check("retired", nil).Ok)
	assert.True(t, sut.Check(nil, nil).Ok)
}

func TestEmail(t *testing.T) {
	t.Parallel()
	sut := rule.Email{}

	assert.True(t, sut.Check("ops@acme.test", nil).Ok)
	assert.False(t, sut.Check("not-an-email", nil).Ok)
	assert.True(t, sut.Check("", nil).Ok)
}

func TestSpec_Build(t *testing.T) {
	t.Parallel()

	p, err := rule.Spec{Type: "range", Min: f64(1), Max: f64(5)}.Build()
	require.NoError(t, err)
	assert.Equal(t, "range", p.Type())

	_, err = rule.Spec{Type: "range"}.Build()
	require.Error(t, err)

	_, err = rule.Spec{Type: "enum"}.Build()
	require.Error(t, err)

	_, err = rule.Spec{Type: "telepathy"}.Build()
	require.Error(t, err)
}

func TestSpecOf_RoundTrip(t *testing.T) {
	t.Parallel()

	original := rule.Spec{Type: "enum", Values: []string{"a", "b"}}
	p, err := original.Build()
	require.NoError(t, err)
	assert.Equal(t, original, rule.SpecOf(p))
}

func TestRule_Evaluate_PanicIsFault(t *testing.T) {
	t.Parallel()
	sut := rule.Rule{
		ID:    "exploding",
		Field: "Anything",
		Predicate: rule.Custom{Fn: func(value any, rec record.Record) bool {
			panic("boom")
		}},
	}

	outcome := sut.Evaluate(record.Record{"Anything": "x"})
	require.Error(t, outcome.Fault)
	assert.Contains(t, outcome.Fault.Error(), "exploding")
}

func TestRule_Evaluate_NilPredicateIsFault(t *testing.T) {
	t.Parallel()
	sut := rule.Rule{ID: "empty"}

	outcome := sut.Evaluate(record.Record{})
	require.Error(t, outcome.Fault)
}
