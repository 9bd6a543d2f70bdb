// Package rule defines the validation rule catalog's data model: rules are
// data, grouped per entity kind, each carrying a typed predicate from a
// closed set of variants. The validator stays generic over the rule set.
package rule

import (
	"github.com/pkg/errors"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo:
		return Severity(s), nil
	default:
		return "", errors.Errorf("unknown severity %q", s)
	}
}

// Rule is one field-level validation check. ID is unique within its kind's
// group.
type Rule struct {
	ID            string
	Name          string
	Field         string
	Predicate     Predicate
	Message       string
	Severity      Severity
	AutoFixable   bool
	FixSuggestion string
}

// Evaluate runs the rule's predicate against the record's field value. A
// panicking predicate is converted into a fault; the caller decides what a
// fault means (the engine treats it as passed).
func (r Rule) Evaluate(rec record.Record) (outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = Faulted(errors.Errorf("rule %s: predicate panicked: %v", r.ID, recovered))
		}
	}()
	if r.Predicate == nil {
		return Faulted(errors.Errorf("rule %s: nil predicate", r.ID))
	}
	return r.Predicate.Check(rec.Value(r.Field), rec)
}

// Outcome is the explicit result of one predicate evaluation. Fault is set
// when evaluation itself broke; Ok is meaningless in that case.
type Outcome struct {
	Ok    bool
	Fault error
}

func Pass() Outcome { return Outcome{Ok: true} }

func Fail() Outcome { return Outcome{Ok: false} }

func Faulted(err error) Outcome { return Outcome{Fault: err} }

// Events published on catalog mutations.
type (
	AddedEvent struct {
		Kind record.Kind
		Rule Rule
	}
	RemovedEvent struct {
		Kind   record.Kind
		RuleID string
	}
	UpdatedEvent struct {
		Kind record.Kind
		Rule Rule
	}
)
