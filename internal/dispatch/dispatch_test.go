package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luckysmouk/vidlytics/internal/catalog"
	"github.com/luckysmouk/vidlytics/internal/dates"
)

type stubStore struct {
	total  int64
	err    error
	calls  []string
	gotID  string
	gotMin int64
	gotDay time.Time
	gotLo  time.Time
	gotHi  time.Time
}

func (s *stubStore) TotalVideos(_ context.Context) (int64, error) {
	s.calls = append(s.calls, "total")
	return s.total, s.err
}

func (s *stubStore) CreatorVideosInRange(_ context.Context, creatorID string, start, end time.Time) (int64, error) {
	s.calls = append(s.calls, "creator_period")
	s.gotID, s.gotLo, s.gotHi = creatorID, start, end
	return s.total, s.err
}

func (s *stubStore) VideosWithViewsOver(_ context.Context, threshold int64) (int64, error) {
	s.calls = append(s.calls, "views_over")
	s.gotMin = threshold
	return s.total, s.err
}

func (s *stubStore) ViewsGrowthOnDate(_ context.Context, day time.Time) (int64, error) {
	s.calls = append(s.calls, "growth")
	s.gotDay = day
	return s.total, s.err
}

func (s *stubStore) VideosWithNewViewsOnDate(_ context.Context, day time.Time) (int64, error) {
	s.calls = append(s.calls, "new_views")
	s.gotDay = day
	return s.total, s.err
}

func newDispatcher(store *stubStore) *Dispatcher {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), store, dates.NewRussian())
}

func TestExecuteTotalVideos(t *testing.T) {
	t.Parallel()

	store := &stubStore{total: 42}
	d := newDispatcher(store)

	val, err := d.Execute(context.Background(), catalog.TotalVideosCount{})
	require.NoError(t, err)
	require.Equal(t, int64(42), val)
	require.Equal(t, []string{"total"}, store.calls)
}

func TestExecuteCreatorPeriodResolvesTextualRange(t *testing.T) {
	t.Parallel()

	store := &stubStore{total: 7}
	d := newDispatcher(store)

	val, err := d.Execute(context.Background(), catalog.CreatorVideosInPeriod{
		CreatorID:  "abc-123",
		PeriodText: "с 1 ноября 2025 по 5 ноября 2025",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), val)
	require.Equal(t, "abc-123", store.gotID)
	require.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), store.gotLo)
	require.Equal(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC), store.gotHi)
}

func TestExecuteGrowthResolvesTextualDate(t *testing.T) {
	t.Parallel()

	store := &stubStore{total: 1500}
	d := newDispatcher(store)

	val, err := d.Execute(context.Background(), catalog.ViewsGrowthOnDate{DateText: "28 ноября 2025"})
	require.NoError(t, err)
	require.Equal(t, int64(1500), val)
	require.Equal(t, time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC), store.gotDay)
}

func TestExecuteViewsThresholdPassedThrough(t *testing.T) {
	t.Parallel()

	store := &stubStore{total: 3}
	d := newDispatcher(store)

	val, err := d.Execute(context.Background(), catalog.VideosWithViewsMoreThan{Threshold: 100000})
	require.NoError(t, err)
	require.Equal(t, int64(3), val)
	require.Equal(t, int64(100000), store.gotMin)
}

func TestExecuteNewViewsOnDate(t *testing.T) {
	t.Parallel()

	store := &stubStore{total: 12}
	d := newDispatcher(store)

	val, err := d.Execute(context.Background(), catalog.VideosWithNewViewsOnDate{DateText: "2025-11-28"})
	require.NoError(t, err)
	require.Equal(t, int64(12), val)
	require.Equal(t, time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC), store.gotDay)
}

func TestExecuteBadDateSkipsStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	d := newDispatcher(store)

	_, err := d.Execute(context.Background(), catalog.ViewsGrowthOnDate{DateText: "30 февраля 2025"})

	var dateErr *dates.DateParseError
	require.ErrorAs(t, err, &dateErr)
	require.Empty(t, store.calls)
}

func TestExecuteBadRangeSkipsStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	d := newDispatcher(store)

	_, err := d.Execute(context.Background(), catalog.CreatorVideosInPeriod{
		CreatorID:  "abc",
		PeriodText: "когда-нибудь потом",
	})

	var rangeErr *dates.RangeParseError
	require.ErrorAs(t, err, &rangeErr)
	require.Empty(t, store.calls)
}

func TestExecuteWrapsDatabaseFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	store := &stubStore{err: cause}
	d := newDispatcher(store)

	_, err := d.Execute(context.Background(), catalog.TotalVideosCount{})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, catalog.MethodTotalVideosCount, execErr.Method)
	require.ErrorIs(t, err, cause)
}
