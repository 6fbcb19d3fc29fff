package analysis

import (
	"sync"
	"testing"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestStoreSwap(t *testing.T) {
	first := NewSnapshot([]models.RawResult{raw("2000", "GER", "male", "30", "2:00:00")}, "a.csv")
	store := NewStore(first)

	held := store.Load()
	assert.Equal(t, "a.csv", held.Source)
	assert.Equal(t, 1, held.Dataset.Len())
	assert.Equal(t, 1, held.Report.Kept)

	store.Swap(NewSnapshot([]models.RawResult{
		raw("2001", "KEN", "female", "25", "2:20:00"),
		raw("2001", "KEN", "female", "25", "DSQ"),
	}, "b.csv"))

	assert.Equal(t, "b.csv", store.Load().Source)
	assert.Equal(t, 1, store.Load().Report.Excluded[models.ReasonTimeSentinel])
	assert.Equal(t, 2000, held.Dataset.Results()[0].Year, "old snapshot unchanged")
}

func TestStoreConcurrentReads(t *testing.T) {
	store := NewStore(NewSnapshot([]models.RawResult{raw("2000", "GER", "male", "30", "2:00:00")}, "a.csv"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds := store.Load().Dataset
			ds.YearlyTimes()
			ds.TopFinishers(GenderAll, 50)
		}()
	}
	store.Swap(NewSnapshot(nil, "empty"))
	wg.Wait()
	assert.Equal(t, 0, store.Load().Dataset.Len())
}
