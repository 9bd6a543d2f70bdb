// Package record models the loose spreadsheet rows the configurator works
// on: clients requesting tasks, workers supplying skills, and the tasks
// themselves. Rows arrive as free-form field maps; this package owns kind
// parsing, identifier resolution and the field-alias tables that normalize
// the historical column names upstream files use.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is one of the three fixed entity collections.
type Kind string

const (
	KindClients Kind = "clients"
	KindWorkers Kind = "workers"
	KindTasks   Kind = "tasks"
)

var ErrUnknownKind = errors.New("unknown entity kind")

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindClients:
		return KindClients, nil
	case KindWorkers:
		return KindWorkers, nil
	case KindTasks:
		return KindTasks, nil
	default:
		return "", errors.Wrapf(ErrUnknownKind, "%q", s)
	}
}

func Kinds() []Kind {
	return []Kind{KindClients, KindWorkers, KindTasks}
}

// Record is a single uploaded row. Values are whatever the ingestion layer
// decoded: strings, numbers, booleans or arrays thereof.
type Record map[string]any

// Value resolves a possibly dotted path ("contact.email") against the record.
func (r Record) Value(path string) any {
	if v, ok := r[path]; ok {
		return v
	}
	parts := strings.Split(path, ".")
	var current any = map[string]any(r)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// String returns the trimmed string form of a field, "" when absent.
func (r Record) String(field string) string {
	v := r.Value(field)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Number parses a field as a float, reporting whether it was numeric.
func (r Record) Number(field string) (float64, bool) {
	switch v := r.Value(field).(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Completeness returns (nonEmptyFields, totalFields) for the quality score's
// completeness bonus.
func (r Record) Completeness() (int, int) {
	total := len(r)
	nonEmpty := 0
	for _, v := range r {
		if !isEmptyValue(v) {
			nonEmpty++
		}
	}
	return nonEmpty, total
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

// idFields lists identifier columns per kind, most specific first.
var idFields = map[Kind][]string{
	KindClients: {"ClientID", "id", "ID"},
	KindWorkers: {"WorkerID", "id", "ID"},
	KindTasks:   {"TaskID", "id", "ID"},
}

// keyFields lists the duplicate-detection keys per kind, in priority order.
var keyFields = map[Kind][]string{
	KindClients: {"ClientID", "ClientName"},
	KindWorkers: {"WorkerID", "WorkerName"},
	KindTasks:   {"TaskID", "TaskName"},
}

// clientRefAliases are the historical column names a task's client reference
// has appeared under.
var clientRefAliases = []string{"ClientID", "Client", "client_id", "clientId"}

// Identifier resolves a record's stable id: the kind's id column, then a
// positional row index as a last resort.
func Identifier(r Record, kind Kind, index int) string {
	for _, field := range idFields[kind] {
		if id := r.String(field); id != "" {
			return id
		}
	}
	return fmt.Sprintf("row-%d", index)
}

// KeyFields returns the duplicate-detection key columns for a kind.
func KeyFields(kind Kind) []string {
	return keyFields[kind]
}

// ClientRef resolves a task's client reference across its known aliases.
func ClientRef(r Record) string {
	for _, alias := range clientRefAliases {
		if ref := r.String(alias); ref != "" {
			return ref
		}
	}
	return ""
}
