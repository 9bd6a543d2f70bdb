package services

import (
	_ "embed"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/pkg/eventbus"
)

//go:embed defaults.yaml
var defaultCatalog []byte

var (
	ErrRuleNotFound  = errors.New("rule not found")
	ErrDuplicateRule = errors.New("duplicate rule id")
)

type ruleSpec struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Field         string    `yaml:"field"`
	Predicate     rule.Spec `yaml:"predicate"`
	Message       string    `yaml:"message"`
	Severity      string    `yaml:"severity"`
	AutoFixable   bool      `yaml:"autoFixable"`
	FixSuggestion string    `yaml:"fixSuggestion"`
}

// RuleService owns the mutable rule catalog, seeded from the embedded
// default set at construction. Mutations take effect for all subsequent
// validations; there is no versioning or rollback.
type RuleService struct {
	mu        sync.RWMutex
	catalog   map[record.Kind][]rule.Rule
	publisher eventbus.EventBus
	logger    *logrus.Logger
}

func NewRuleService(publisher eventbus.EventBus, logger *logrus.Logger) (*RuleService, error) {
	var specs map[string][]ruleSpec
	if err := yaml.Unmarshal(defaultCatalog, &specs); err != nil {
		return nil, errors.Wrap(err, "failed to parse default rule catalog")
	}

	catalog := make(map[record.Kind][]rule.Rule, len(specs))
	for kindName, kindSpecs := range specs {
		kind, err := record.ParseKind(kindName)
		if err != nil {
			return nil, err
		}
		rules := make([]rule.Rule, 0, len(kindSpecs))
		for _, s := range kindSpecs {
			r, err := buildRule(s)
			if err != nil {
				return nil, errors.Wrapf(err, "default rule %s/%s", kindName, s.ID)
			}
			rules = append(rules, r)
		}
		catalog[kind] = rules
	}

	return &RuleService{
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}, nil
}

func buildRule(s ruleSpec) (rule.Rule, error) {
	severity, err := rule.ParseSeverity(s.Severity)
	if err != nil {
		return rule.Rule{}, err
	}
	predicate, err := s.Predicate.Build()
	if err != nil {
		return rule.Rule{}, err
	}
	return rule.Rule{
		ID:            s.ID,
		Name:          s.Name,
		Field:         s.Field,
		Predicate:     predicate,
		Message:       s.Message,
		Severity:      severity,
		AutoFixable:   s.AutoFixable,
		FixSuggestion: s.FixSuggestion,
	}, nil
}

// Rules returns a copy of the kind's ordered rule list.
func (s *RuleService) Rules(kind record.Kind) []rule.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]rule.Rule, len(s.catalog[kind]))
	copy(rules, s.catalog[kind])
	return rules
}

// Add appends a rule to the kind's group. A blank id is assigned a uuid; a
// clashing id is rejected.
func (s *RuleService) Add(kind record.Kind, r rule.Rule) (rule.Rule, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.mu.Lock()
	for _, existing := range s.catalog[kind] {
		if existing.ID == r.ID {
			s.mu.Unlock()
			return rule.Rule{}, errors.Wrapf(ErrDuplicateRule, "%s/%s", kind, r.ID)
		}
	}
	s.catalog[kind] = append(s.catalog[kind], r)
	s.mu.Unlock()

	s.publisher.Publish(&rule.AddedEvent{Kind: kind, Rule: r})
	return r, nil
}

// Remove deletes a rule by id.
func (s *RuleService) Remove(kind record.Kind, ruleID string) error {
	s.mu.Lock()
	rules := s.catalog[kind]
	found := false
	for i, existing := range rules {
		if existing.ID == ruleID {
			s.catalog[kind] = append(rules[:i], rules[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return errors.Wrapf(ErrRuleNotFound, "%s/%s", kind, ruleID)
	}
	s.publisher.Publish(&rule.RemovedEvent{Kind: kind, RuleID: ruleID})
	return nil
}

// RulePatch carries the optional fields of a rule update.
type RulePatch struct {
	Name          *string
	Field         *string
	Message       *string
	Severity      *rule.Severity
	AutoFixable   *bool
	FixSuggestion *string
	Predicate     *rule.Spec
}

// Update applies a patch to an existing rule and returns the updated rule.
func (s *RuleService) Update(kind record.Kind, ruleID string, patch RulePatch) (rule.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.catalog[kind]
	for i, existing := range rules {
		if existing.ID != ruleID {
			continue
		}
		updated := existing
		if patch.Name != nil {
			updated.Name = *patch.Name
		}
		if patch.Field != nil {
			updated.Field = *patch.Field
		}
		if patch.Message != nil {
			updated.Message = *patch.Message
		}
		if patch.Severity != nil {
			updated.Severity = *patch.Severity
		}
		if patch.AutoFixable != nil {
			updated.AutoFixable = *patch.AutoFixable
		}
		if patch.FixSuggestion != nil {
			updated.FixSuggestion = *patch.FixSuggestion
		}
		if patch.Predicate != nil {
			predicate, err := patch.Predicate.Build()
			if err != nil {
				return rule.Rule{}, err
			}
			updated.Predicate = predicate
		}
		rules[i] = updated

		// Publish outside the lock would be nicer, but subscribers are
		// in-process log observers; keep the update atomic instead.
		s.publisher.Publish(&rule.UpdatedEvent{Kind: kind, Rule: updated})
		return updated, nil
	}
	return rule.Rule{}, errors.Wrapf(ErrRuleNotFound, "%s/%s", kind, ruleID)
}
