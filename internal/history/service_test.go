package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

func newTestService() *Service {
	return NewService(ServiceConfig{Repository: NewMemoryRepository()})
}

func samplePassages() []passage.Passage {
	return []passage.Passage{
		{PlaceName: "Gent", Status: passage.StatusResolved, CumulativeDistanceKm: 0},
		{PlaceName: "Deinze", Status: passage.StatusResolved, CumulativeDistanceKm: 18},
	}
}

func TestNewRouteID(t *testing.T) {
	id := NewRouteID()
	assert.True(t, strings.HasPrefix(id, "rte_"))
	assert.Len(t, id, 26)
	assert.NotEqual(t, id, NewRouteID())
}

func TestSaveAnalysis(t *testing.T) {
	svc := newTestService()
	departure := time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC)
	score := scoring.ConditionScore{Value: 88, Band: scoring.BandExcellent}

	route, err := svc.SaveAnalysis(context.Background(), "Saturday loop", departure, 25, 50, samplePassages(), score)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(route.ID, "rte_"))
	assert.Equal(t, "Saturday loop", route.Name)
	assert.Equal(t, 2*time.Hour, route.Duration)
	assert.Contains(t, route.DisplayDate, "2026")

	stored, err := svc.Get(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Equal(t, route.ID, stored.ID)
	assert.Equal(t, 88, stored.Score.Value)
	assert.Len(t, stored.Passages, 2)
}

func TestList_NewestFirstAndCapped(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(ServiceConfig{Repository: repo})
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxEntries+5; i++ {
		route := &SavedRoute{
			ID:      fmt.Sprintf("rte_%022d", i),
			Name:    fmt.Sprintf("ride %d", i),
			SavedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Save(ctx, route))
	}

	routes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, routes, MaxEntries)

	assert.Equal(t, "ride 34", routes[0].Name)
	for i := 1; i < len(routes); i++ {
		assert.True(t, routes[i].SavedAt.Before(routes[i-1].SavedAt))
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Get(context.Background(), "rte_missing")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	route, err := svc.SaveAnalysis(ctx, "loop", time.Now(), 25, 50, samplePassages(), scoring.ConditionScore{Value: 70})
	require.NoError(t, err)

	route.Score.Value = 55
	require.NoError(t, svc.Update(ctx, route))

	stored, err := svc.Get(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, stored.Score.Value)
}

func TestUpdate_MissingRoute(t *testing.T) {
	svc := newTestService()
	err := svc.Update(context.Background(), &SavedRoute{ID: "rte_missing"})
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	route, err := svc.SaveAnalysis(ctx, "loop", time.Now(), 25, 50, samplePassages(), scoring.ConditionScore{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, route.ID))

	_, err = svc.Get(ctx, route.ID)
	assert.ErrorIs(t, err, ErrRouteNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, route.ID), ErrRouteNotFound)
}

func TestClear(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SaveAnalysis(ctx, "a", time.Now(), 25, 50, samplePassages(), scoring.ConditionScore{})
	require.NoError(t, err)
	_, err = svc.SaveAnalysis(ctx, "b", time.Now(), 25, 50, samplePassages(), scoring.ConditionScore{})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))

	routes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, routes)
}
