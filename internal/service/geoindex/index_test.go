package geoindex_test

import (
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/geoindex"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestIndex_QueryWithinRadius_MatchesBruteForce(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	center := domain.Point{Lat: 12.90, Lng: 77.59}
	rnd := rand.New(rand.NewSource(42))

	points := make(map[int64]domain.Point)
	for id := int64(1); id <= 300; id++ {
		p := domain.Point{
			Lat: center.Lat + (rnd.Float64()-0.5)*0.2,
			Lng: center.Lng + (rnd.Float64()-0.5)*0.2,
		}
		points[id] = p
		require.NoError(t, idx.UpsertLocation(id, p.Lat, p.Lng, t0))
	}

	const radius = 5000.0
	var want []domain.Candidate
	for id, p := range points {
		if d := center.DistanceTo(p); d <= radius {
			want = append(want, domain.Candidate{AgentID: id, DistanceMeters: d})
		}
	}
	sort.Slice(want, func(a, b int) bool { return want[a].DistanceMeters < want[b].DistanceMeters })

	got := idx.QueryWithinRadius(center.Lat, center.Lng, radius)
	require.NotEmpty(t, got)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].AgentID, got[i].AgentID)
		require.InDelta(t, want[i].DistanceMeters, got[i].DistanceMeters, 1e-6)
	}
}

func TestIndex_QueryWithinRadius_TiesBrokenByAgentID(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	for _, id := range []int64{9, 3, 5} {
		require.NoError(t, idx.UpsertLocation(id, 12.91, 77.59, t0))
	}

	got := idx.QueryWithinRadius(12.90, 77.59, 5000)
	require.Len(t, got, 3)
	require.Equal(t, []int64{3, 5, 9}, []int64{got[0].AgentID, got[1].AgentID, got[2].AgentID})
}

func TestIndex_QueryWithinRadius_EmptyAndRestartable(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	require.Empty(t, idx.QueryWithinRadius(0, 0, 1000))

	require.NoError(t, idx.UpsertLocation(1, 0.001, 0, t0))
	first := idx.QueryWithinRadius(0, 0, 1000)
	second := idx.QueryWithinRadius(0, 0, 1000)
	require.Equal(t, first, second)
	require.Empty(t, idx.QueryWithinRadius(0, 0, 10))
}

func TestIndex_UpsertLocation_StaleUpdateRejected(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0.Add(time.Second))))
	t1, t2 := t0, t0.Add(500*time.Millisecond)

	require.NoError(t, idx.UpsertLocation(1, 12.95, 77.60, t2))
	err := idx.UpsertLocation(1, 12.90, 77.59, t1)
	require.ErrorIs(t, err, apperr.ErrStaleUpdate)

	loc, ok := idx.Location(1)
	require.True(t, ok)
	require.Equal(t, t2, loc.RecordedAt)
	require.Equal(t, domain.Point{Lat: 12.95, Lng: 77.60}, loc.Point)
}

func TestIndex_UpsertLocation_EqualTimestampOverwrites(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	require.NoError(t, idx.UpsertLocation(1, 1, 1, t0))
	require.NoError(t, idx.UpsertLocation(1, 2, 2, t0))

	loc, ok := idx.Location(1)
	require.True(t, ok)
	require.Equal(t, domain.Point{Lat: 2, Lng: 2}, loc.Point)
}

func TestIndex_UpsertLocation_Invalid(t *testing.T) {
	t.Parallel()

	idx := geoindex.New()
	require.ErrorIs(t, idx.UpsertLocation(0, 1, 1, t0), apperr.ErrInvalid)
	require.ErrorIs(t, idx.UpsertLocation(1, 95, 1, t0), apperr.ErrInvalid)
	require.ErrorIs(t, idx.UpsertLocation(1, 1, 1, time.Time{}), apperr.ErrInvalid)
}

func TestIndex_RemoveAgent_InvisibleUntilActivated(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	require.NoError(t, idx.UpsertLocation(1, 12.90, 77.59, t0))
	idx.RemoveAgent(1)

	require.Empty(t, idx.QueryWithinRadius(12.90, 77.59, 5000))

	// late report from before the offline switch is still recorded but hidden
	require.NoError(t, idx.UpsertLocation(1, 12.90, 77.59, t0))
	require.Empty(t, idx.QueryWithinRadius(12.90, 77.59, 5000))
	_, ok := idx.Location(1)
	require.False(t, ok)

	idx.Activate(1)
	got := idx.QueryWithinRadius(12.90, 77.59, 5000)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].AgentID)
}

func TestIndex_RemoveUnknownAgent_StaysHiddenAfterFirstReport(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0)))
	idx.RemoveAgent(7)
	require.NoError(t, idx.UpsertLocation(7, 1, 1, t0))
	require.Empty(t, idx.QueryWithinRadius(1, 1, 100))
}

func TestIndex_StaleAfter_ExpiresSilentAgents(t *testing.T) {
	t.Parallel()

	now := t0
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	idx := geoindex.New(geoindex.WithStaleAfter(2*time.Minute), geoindex.WithClock(clock))
	require.NoError(t, idx.UpsertLocation(1, 1, 1, t0))
	require.Len(t, idx.QueryWithinRadius(1, 1, 10), 1)

	mu.Lock()
	now = t0.Add(3 * time.Minute)
	mu.Unlock()
	require.Empty(t, idx.QueryWithinRadius(1, 1, 10))

	require.NoError(t, idx.UpsertLocation(1, 1, 1, t0.Add(3*time.Minute)))
	require.Len(t, idx.QueryWithinRadius(1, 1, 10), 1)
}

func TestIndex_ConcurrentUpdatesKeepNewest(t *testing.T) {
	t.Parallel()

	idx := geoindex.New(geoindex.WithClock(fixedClock(t0.Add(time.Hour))))
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = idx.UpsertLocation(1, float64(i)/100, 0, t0.Add(time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()

	loc, ok := idx.Location(1)
	require.True(t, ok)
	require.Equal(t, t0.Add(99*time.Second), loc.RecordedAt)
}
