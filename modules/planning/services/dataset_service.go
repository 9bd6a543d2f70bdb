package services

import (
	"context"
	"time"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/dataset"
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/pkg/eventbus"
)

// DatasetService is the ingestion boundary: the only writer of the dataset
// store. Rows are accepted as-is; validation is a separate concern.
type DatasetService struct {
	store     dataset.Store
	publisher eventbus.EventBus
}

func NewDatasetService(store dataset.Store, publisher eventbus.EventBus) *DatasetService {
	return &DatasetService{
		store:     store,
		publisher: publisher,
	}
}

// SetCollection replaces a collection wholesale and announces the swap.
func (s *DatasetService) SetCollection(ctx context.Context, kind record.Kind, records []record.Record) {
	s.store.SetCollection(kind, records)
	s.publisher.Publish(&dataset.ReplacedEvent{
		Kind:       kind,
		Count:      len(records),
		ReplacedAt: time.Now(),
	})
}

// Collection returns the current rows of a collection, empty if never set.
func (s *DatasetService) Collection(ctx context.Context, kind record.Kind) []record.Record {
	return s.store.Collection(kind)
}

// All returns a snapshot of all three collections.
func (s *DatasetService) All(ctx context.Context) dataset.Snapshot {
	return s.store.All()
}
