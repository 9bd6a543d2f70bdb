package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/infrastructure/memory"
)

func TestDatasetStore_EmptyByDefault(t *testing.T) {
	t.Parallel()
	sut := memory.NewDatasetStore()

	assert.Empty(t, sut.Collection(record.KindClients))
	snapshot := sut.All()
	assert.Empty(t, snapshot.Clients)
	assert.Empty(t, snapshot.Workers)
	assert.Empty(t, snapshot.Tasks)
}

func TestDatasetStore_ReplaceOnWrite(t *testing.T) {
	t.Parallel()
	sut := memory.NewDatasetStore()

	sut.SetCollection(record.KindWorkers, []record.Record{
		{"WorkerID": "W1"},
		{"WorkerID": "W2"},
	})
	sut.SetCollection(record.KindWorkers, []record.Record{
		{"WorkerID": "W3"},
	})

	workers := sut.Collection(record.KindWorkers)
	require.Len(t, workers, 1)
	assert.Equal(t, "W3", workers[0].String("WorkerID"))
}

func TestDatasetStore_ReadsAreIsolated(t *testing.T) {
	t.Parallel()
	sut := memory.NewDatasetStore()

	uploaded := []record.Record{{"TaskID": "T1"}}
	sut.SetCollection(record.KindTasks, uploaded)

	// Mutating the uploaded slice or a read copy must not leak into the store.
	uploaded[0]["TaskID"] = "changed"
	first := sut.Collection(record.KindTasks)
	first[0]["TaskID"] = "also-changed"

	second := sut.Collection(record.KindTasks)
	require.Len(t, second, 1)
	assert.Equal(t, "T1", second[0].String("TaskID"))
}

func TestDatasetStore_SnapshotByKind(t *testing.T) {
	t.Parallel()
	sut := memory.NewDatasetStore()

	sut.SetCollection(record.KindClients, []record.Record{{"ClientID": "C1"}})
	sut.SetCollection(record.KindTasks, []record.Record{{"TaskID": "T1"}, {"TaskID": "T2"}})

	snapshot := sut.All()
	assert.Len(t, snapshot.Collection(record.KindClients), 1)
	assert.Empty(t, snapshot.Collection(record.KindWorkers))
	assert.Len(t, snapshot.Collection(record.KindTasks), 2)
	assert.Nil(t, snapshot.Collection(record.Kind("bogus")))
}
