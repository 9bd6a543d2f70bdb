// Package dataset defines the session-scoped registry of uploaded entity
// collections and its replacement events.
package dataset

import (
	"time"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
)

// Store holds the three entity collections. Collections are replaced
// wholesale on upload and read as copies; absent data yields empty slices,
// never an error.
type Store interface {
	SetCollection(kind record.Kind, records []record.Record)
	Collection(kind record.Kind) []record.Record
	All() Snapshot
}

// Snapshot is a point-in-time copy of all three collections.
type Snapshot struct {
	Clients []record.Record `json:"clients"`
	Workers []record.Record `json:"workers"`
	Tasks   []record.Record `json:"tasks"`
}

func (s Snapshot) Collection(kind record.Kind) []record.Record {
	switch kind {
	case record.KindClients:
		return s.Clients
	case record.KindWorkers:
		return s.Workers
	case record.KindTasks:
		return s.Tasks
	default:
		return nil
	}
}

// ReplacedEvent is published after a collection has been overwritten.
type ReplacedEvent struct {
	Kind       record.Kind
	Count      int
	ReplacedAt time.Time
}
