package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/rule"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/validation"
	"github.com/allocat-dev/allocat/pkg/listparse"
)

// crossValidate merges batch-level findings into the per-record results.
// Duplicate and structural checks are self-contained; cross-dataset checks
// consult the store and are skipped when the required other collection is
// empty or the lookup itself breaks.
func (s *ValidationService) crossValidate(records []record.Record, kind record.Kind, results []*validation.Result) {
	s.checkDuplicates(records, kind, results)

	switch kind {
	case record.KindTasks:
		s.checkTaskStructure(records, results)
		s.guarded("skill coverage", kind, func() {
			s.checkSkillCoverage(records, results)
		})
		s.guarded("phase saturation", kind, func() {
			s.checkPhaseSaturation(records, results)
		})
		s.guarded("client references", kind, func() {
			s.checkClientReferences(records, results)
		})
	case record.KindWorkers:
		s.checkWorkerStructure(records, results)
	case record.KindClients:
		s.guarded("task references", kind, func() {
			s.checkTaskReferences(records, results)
		})
	}
}

// guarded runs one cross-dataset check fail-open: a panicking lookup degrades
// the check to a no-op instead of aborting the batch.
func (s *ValidationService) guarded(name string, kind record.Kind, fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.WithFields(logrus.Fields{
				"check": name,
				"kind":  kind,
			}).Warnf("cross-dataset check faulted, skipping: %v", recovered)
		}
	}()
	fn()
}

// checkDuplicates groups records by each of the kind's key fields
// (case-insensitive, trimmed) and warns every member of a non-singleton
// group. The fields are checked independently, so one record can accrue a
// duplicate warning per field.
func (s *ValidationService) checkDuplicates(records []record.Record, kind record.Kind, results []*validation.Result) {
	for _, field := range record.KeyFields(kind) {
		groups := make(map[string][]int)
		values := make(map[string]string)
		for i, rec := range records {
			value := rec.String(field)
			if value == "" {
				continue
			}
			key := strings.ToLower(value)
			groups[key] = append(groups[key], i)
			if _, seen := values[key]; !seen {
				values[key] = value
			}
		}
		for key, indexes := range groups {
			if len(indexes) < 2 {
				continue
			}
			for _, i := range indexes {
				results[i].Add(validation.Finding{
					Field:    field,
					Message:  fmt.Sprintf("Duplicate %s: %q found in multiple records", field, values[key]),
					Severity: rule.SeverityWarning,
				})
			}
		}
	}
}

// taskDuration resolves a task's duration, with estimatedHours as the
// historical fallback column.
func taskDuration(rec record.Record) (float64, bool) {
	if d, ok := rec.Number("Duration"); ok {
		return d, true
	}
	return rec.Number("estimatedHours")
}

func (s *ValidationService) checkTaskStructure(records []record.Record, results []*validation.Result) {
	for i, rec := range records {
		if d, ok := taskDuration(rec); !ok || math.IsInf(d, 0) || math.IsNaN(d) || d < 1 {
			results[i].Add(validation.Finding{
				Field:    "Duration",
				Message:  "Duration must be a finite number of at least 1",
				Severity: rule.SeverityError,
			})
		}
		if raw := rec.Value("PreferredPhases"); raw != nil {
			if phases := listparse.Numbers(raw); len(phases) == 0 {
				results[i].Add(validation.Finding{
					Field:    "PreferredPhases",
					Message:  "PreferredPhases must parse to a non-empty list of phase numbers",
					Severity: rule.SeverityError,
				})
			}
		}
	}
}

func (s *ValidationService) checkWorkerStructure(records []record.Record, results []*validation.Result) {
	for i, rec := range records {
		raw := rec.Value("AvailableSlots")
		if raw == nil {
			continue
		}
		if slots := listparse.Numbers(raw); len(slots) == 0 {
			results[i].Add(validation.Finding{
				Field:    "AvailableSlots",
				Message:  "AvailableSlots must parse to a non-empty list of phase numbers",
				Severity: rule.SeverityError,
			})
		}
	}
}

// workerSkills returns each worker's case-folded skill set.
func workerSkills(workers []record.Record) []map[string]struct{} {
	sets := make([]map[string]struct{}, len(workers))
	for i, w := range workers {
		set := make(map[string]struct{})
		for _, skill := range listparse.Strings(w.Value("Skills")) {
			set[strings.ToLower(skill)] = struct{}{}
		}
		sets[i] = set
	}
	return sets
}

// checkSkillCoverage verifies that the worker pool covers every task's
// required skills and that enough qualified workers exist for the task's
// concurrency demand.
func (s *ValidationService) checkSkillCoverage(tasks []record.Record, results []*validation.Result) {
	workers := s.store.Collection(record.KindWorkers)
	if len(workers) == 0 {
		return
	}
	skillSets := workerSkills(workers)
	pool := make(map[string]struct{})
	for _, set := range skillSets {
		for skill := range set {
			pool[skill] = struct{}{}
		}
	}

	for i, task := range tasks {
		// An empty requirement set is still subject to the concurrency
		// check below: it just means every worker qualifies.
		required := listparse.Strings(task.Value("RequiredSkills"))

		var missing []string
		for _, skill := range required {
			if _, ok := pool[strings.ToLower(skill)]; !ok {
				missing = append(missing, skill)
			}
		}
		if len(missing) > 0 {
			results[i].Add(validation.Finding{
				Field:    "RequiredSkills",
				Message:  fmt.Sprintf("No worker covers required skills: %s", strings.Join(missing, ", ")),
				Severity: rule.SeverityError,
			})
		}

		qualified := 0
		for _, set := range skillSets {
			covers := true
			for _, skill := range required {
				if _, ok := set[strings.ToLower(skill)]; !ok {
					covers = false
					break
				}
			}
			if covers {
				qualified++
			}
		}
		maxConcurrent := 1.0
		if mc, ok := task.Number("MaxConcurrent"); ok {
			maxConcurrent = mc
		}
		if maxConcurrent > float64(qualified) {
			results[i].Add(validation.Finding{
				Field:    "MaxConcurrent",
				Message:  fmt.Sprintf("MaxConcurrent %g exceeds the %d qualified workers available", maxConcurrent, qualified),
				Severity: rule.SeverityError,
			})
		}
	}
}

// checkPhaseSaturation warns when a task's duration exceeds the summed
// worker capacity of one of its preferred phases. Capacity per phase is the
// sum of MaxLoadPerPhase (default 1) over every worker available in it.
func (s *ValidationService) checkPhaseSaturation(tasks []record.Record, results []*validation.Result) {
	workers := s.store.Collection(record.KindWorkers)
	if len(workers) == 0 {
		return
	}
	capacity := make(map[int]float64)
	for _, w := range workers {
		load := 1.0
		if l, ok := w.Number("MaxLoadPerPhase"); ok {
			load = l
		}
		for _, phase := range listparse.Numbers(w.Value("AvailableSlots")) {
			capacity[int(phase)] += load
		}
	}

	for i, task := range tasks {
		duration, ok := taskDuration(task)
		if !ok {
			continue
		}
		phases := listparse.Numbers(task.Value("PreferredPhases"))
		for _, p := range phases {
			phase := int(p)
			if duration > capacity[phase] {
				results[i].Add(validation.Finding{
					Field:    "PreferredPhases",
					Message:  fmt.Sprintf("Phase %d capacity %g is below task duration %g", phase, capacity[phase], duration),
					Severity: rule.SeverityWarning,
				})
			}
		}
	}
}

// checkClientReferences verifies a task's client reference against the known
// client identifiers, across the reference column's historical aliases.
func (s *ValidationService) checkClientReferences(tasks []record.Record, results []*validation.Result) {
	clients := s.store.Collection(record.KindClients)
	if len(clients) == 0 {
		return
	}
	known := make(map[string]struct{}, len(clients))
	for i, c := range clients {
		known[strings.ToLower(record.Identifier(c, record.KindClients, i))] = struct{}{}
	}

	for i, task := range tasks {
		ref := record.ClientRef(task)
		if ref == "" {
			continue
		}
		if _, ok := known[strings.ToLower(ref)]; !ok {
			results[i].Add(validation.Finding{
				Field:    "ClientID",
				Message:  fmt.Sprintf("Unknown client reference %q", ref),
				Severity: rule.SeverityError,
			})
		}
	}
}

// checkTaskReferences verifies every RequestedTaskIDs entry against the known
// task identifiers. All unknown ids of one client are enumerated in a single
// finding.
func (s *ValidationService) checkTaskReferences(clients []record.Record, results []*validation.Result) {
	tasks := s.store.Collection(record.KindTasks)
	if len(tasks) == 0 {
		return
	}
	known := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		known[strings.ToLower(record.Identifier(t, record.KindTasks, i))] = struct{}{}
	}

	for i, client := range clients {
		requested := listparse.Strings(client.Value("RequestedTaskIDs"))
		var missing []string
		for _, id := range requested {
			if _, ok := known[strings.ToLower(id)]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		results[i].Add(validation.Finding{
			Field:    "RequestedTaskIDs",
			Message:  fmt.Sprintf("Unknown task ids: %s", strings.Join(missing, ", ")),
			Severity: rule.SeverityError,
		})
	}
}
