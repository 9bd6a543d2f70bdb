// Package memory provides the volatile dataset store. The registry lives and
// dies with the process; uploads replace collections wholesale.
package memory

import (
	"sync"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/dataset"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
)

type datasetStore struct {
	mu          sync.RWMutex
	collections map[record.Kind][]record.Record
}

func NewDatasetStore() dataset.Store {
	return &datasetStore{
		collections: make(map[record.Kind][]record.Record),
	}
}

func (s *datasetStore) SetCollection(kind record.Kind, records []record.Record) {
	copied := copyRecords(records)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[kind] = copied
}

func (s *datasetStore) Collection(kind record.Kind) []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.collections[kind])
}

func (s *datasetStore) All() dataset.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataset.Snapshot{
		Clients: copyRecords(s.collections[record.KindClients]),
		Workers: copyRecords(s.collections[record.KindWorkers]),
		Tasks:   copyRecords(s.collections[record.KindTasks]),
	}
}

// copyRecords shallow-copies each row so later edits by callers cannot reach
// into the store.
func copyRecords(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, r := range records {
		copied := make(record.Record, len(r))
		for k, v := range r {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}
