package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
)

// Predicate is one variant of the closed check set. Implementations must be
// pure: no I/O, no access to other records. Cross-record logic never belongs
// here.
type Predicate interface {
	Check(value any, rec record.Record) Outcome
	Type() string
}

var validate = validator.New()

// Required fails on absent or blank values.
type Required struct{}

func (Required) Type() string { return "required" }

func (Required) Check(value any, _ record.Record) Outcome {
	if isBlank(value) {
		return Fail()
	}
	return Pass()
}

// Range checks a numeric value against optional inclusive bounds. Blank
// values pass; presence is Required's job.
type Range struct {
	Min *float64
	Max *float64
}

func (Range) Type() string { return "range" }

func (p Range) Check(value any, _ record.Record) Outcome {
	if isBlank(value) {
		return Pass()
	}
	n, ok := toNumber(value)
	if !ok {
		return Fail()
	}
	if p.Min != nil && n < *p.Min {
		return Fail()
	}
	if p.Max != nil && n > *p.Max {
		return Fail()
	}
	return Pass()
}

// Pattern checks a string value against a compiled regular expression.
type Pattern struct {
	expr string
	re   *regexp.Regexp
}

func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, "invalid pattern %q", expr)
	}
	return Pattern{expr: expr, re: re}, nil
}

func (Pattern) Type() string { return "pattern" }

func (p Pattern) Expr() string { return p.expr }

func (p Pattern) Check(value any, _ record.Record) Outcome {
	if isBlank(value) {
		return Pass()
	}
	if p.re == nil {
		return Faulted(errors.Errorf("pattern %q not compiled", p.expr))
	}
	if p.re.MatchString(strings.TrimSpace(fmt.Sprint(value))) {
		return Pass()
	}
	return Fail()
}

// Enum checks membership in a fixed value set, case-insensitively.
type Enum struct {
	Values []string
}

func (Enum) Type() string { return "enum" }

func (p Enum) Check(value any, _ record.Record) Outcome {
	if isBlank(value) {
		return Pass()
	}
	s := strings.TrimSpace(fmt.Sprint(value))
	for _, allowed := range p.Values {
		if strings.EqualFold(s, allowed) {
			return Pass()
		}
	}
	return Fail()
}

// Email checks well-formedness of an email address.
type Email struct{}

func (Email) Type() string { return "email" }

func (Email) Check(value any, _ record.Record) Outcome {
	if isBlank(value) {
		return Pass()
	}
	if err := validate.Var(strings.TrimSpace(fmt.Sprint(value)), "email"); err != nil {
		return Fail()
	}
	return Pass()
}

// Custom wraps an arbitrary pure check. Not constructible over the API;
// reserved for programmatic extension.
type Custom struct {
	Fn func(value any, rec record.Record) bool
}

func (Custom) Type() string { return "custom" }

func (p Custom) Check(value any, rec record.Record) Outcome {
	if p.Fn == nil {
		return Faulted(errors.New("custom predicate without function"))
	}
	if p.Fn(value, rec) {
		return Pass()
	}
	return Fail()
}

// Spec is the declarative predicate form used by the default catalog file
// and the rules API.
type Spec struct {
	Type    string   `json:"type" yaml:"type"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Values  []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Build materializes the declared predicate.
func (s Spec) Build() (Predicate, error) {
	switch s.Type {
	case "required":
		return Required{}, nil
	case "range":
		if s.Min == nil && s.Max == nil {
			return nil, errors.New("range predicate needs min or max")
		}
		return Range{Min: s.Min, Max: s.Max}, nil
	case "pattern":
		return NewPattern(s.Pattern)
	case "enum":
		if len(s.Values) == 0 {
			return nil, errors.New("enum predicate needs values")
		}
		return Enum{Values: s.Values}, nil
	case "email":
		return Email{}, nil
	default:
		return nil, errors.Errorf("unknown predicate type %q", s.Type)
	}
}

// SpecOf returns the declarative form of a predicate for catalog listings.
func SpecOf(p Predicate) Spec {
	switch v := p.(type) {
	case Range:
		return Spec{Type: v.Type(), Min: v.Min, Max: v.Max}
	case Pattern:
		return Spec{Type: v.Type(), Pattern: v.Expr()}
	case Enum:
		return Spec{Type: v.Type(), Values: v.Values}
	default:
		if p == nil {
			return Spec{}
		}
		return Spec{Type: p.Type()}
	}
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func toNumber(value any) (float64, bool) {
	r := record.Record{"v": value}
	return r.Number("v")
}
