package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/logger"
)

func newCounterFixture(store *accumulatingCounterStore) *CounterService {
	return NewCounterService(store, logger.New("error", "json"))
}

func TestCounterService_MonotonicAcrossCalls(t *testing.T) {
	store := newAccumulatingCounterStore()
	svc := newCounterFixture(store)

	ref := models.ContentReference{Kind: models.KindVideo, ID: 7}

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Propagate(context.Background(), []models.ContentReference{ref}))
	}

	assert.Equal(t, 5, store.counters[ref])
}

func TestCounterService_ShapeIndependence(t *testing.T) {
	ref := models.ContentReference{Kind: models.KindAudio, ID: 3}

	singleton, err := json.Marshal(ref)
	require.NoError(t, err)
	flat, err := json.Marshal([]models.ContentReference{ref})
	require.NoError(t, err)
	nested, err := json.Marshal([][]models.ContentReference{{ref}})
	require.NoError(t, err)

	store := newAccumulatingCounterStore()
	svc := newCounterFixture(store)

	for _, msg := range [][]byte{singleton, flat, nested} {
		require.NoError(t, svc.HandleMessage(context.Background(), msg))
	}

	assert.Equal(t, 3, store.counters[ref])
}

func TestCounterService_SkipsMalformedRefs(t *testing.T) {
	store := newAccumulatingCounterStore()
	svc := newCounterFixture(store)

	refs := []models.ContentReference{
		{Kind: "image", ID: 1},
		{Kind: models.KindVideo, ID: 0},
		{Kind: models.KindVideo, ID: 2},
	}

	require.NoError(t, svc.Propagate(context.Background(), refs))

	assert.Len(t, store.counters, 1)
	assert.Equal(t, 1, store.counters[models.ContentReference{Kind: models.KindVideo, ID: 2}])
}

func TestCounterService_EmptyBatchIsNoop(t *testing.T) {
	store := newAccumulatingCounterStore()
	svc := newCounterFixture(store)

	require.NoError(t, svc.Propagate(context.Background(), nil))
	assert.Empty(t, store.counters)
}

func TestCounterService_StoreFailurePropagates(t *testing.T) {
	store := newAccumulatingCounterStore()
	store.fail = true
	svc := newCounterFixture(store)

	err := svc.Propagate(context.Background(), []models.ContentReference{
		{Kind: models.KindVideo, ID: 1},
	})
	assert.Error(t, err)
	assert.Empty(t, store.counters)
}
