package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "videos": [
    {
      "id": "vid-1",
      "creator_id": "creator-a",
      "video_created_at": "2025-11-01T10:00:00",
      "views_count": 1000,
      "likes_count": 50,
      "comments_count": 10,
      "reports_count": 1,
      "created_at": "2025-11-01T10:00:00",
      "updated_at": "2025-11-28T09:00:00",
      "snapshots": [
        {
          "id": "snap-1",
          "views_count": 500,
          "delta_views_count": 500,
          "created_at": "2025-11-01T11:00:00"
        },
        {
          "id": "snap-2",
          "views_count": 1000,
          "delta_views_count": 500,
          "created_at": "2025-11-01T12:00:00"
        }
      ]
    },
    {
      "id": "vid-2",
      "creator_id": "creator-b",
      "video_created_at": "2025-11-02T08:30:00"
    }
  ]
}`

func TestParseAndFlatten(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(sampleExport))
	require.NoError(t, err)
	require.Len(t, f.Videos, 2)

	now := time.Date(2025, time.November, 28, 12, 0, 0, 0, time.UTC)
	videos, snapshots, err := f.Flatten(now)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	require.Len(t, snapshots, 2)

	require.Equal(t, "vid-1", videos[0].ID)
	require.Equal(t, "creator-a", videos[0].CreatorID)
	require.Equal(t, time.Date(2025, time.November, 1, 10, 0, 0, 0, time.UTC), videos[0].VideoCreatedAt)
	require.Equal(t, int64(1000), videos[0].ViewsCount)

	// Missing service timestamps fall back to now.
	require.Equal(t, now, videos[1].CreatedAt)
	require.Equal(t, now, videos[1].UpdatedAt)

	require.Equal(t, "snap-1", snapshots[0].ID)
	require.Equal(t, "vid-1", snapshots[0].VideoID)
	require.Equal(t, int64(500), snapshots[0].DeltaViewsCount)
	require.Equal(t, now, snapshots[0].UpdatedAt)
}

func TestParseRejectsMissingVideosKey(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"records": []}`))
	require.ErrorContains(t, err, "no videos key")
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"videos": [`))
	require.Error(t, err)
}

func TestParseEmptyVideosList(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`{"videos": []}`))
	require.NoError(t, err)
	require.Empty(t, f.Videos)
}

func TestFlattenRejectsVideoWithoutID(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`{"videos": [{"creator_id": "a", "video_created_at": "2025-11-01T10:00:00"}]}`))
	require.NoError(t, err)

	_, _, err = f.Flatten(time.Now())
	require.ErrorContains(t, err, "missing id")
}

func TestFlattenRejectsSnapshotWithoutCreatedAt(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`{
	  "videos": [{
	    "id": "v", "creator_id": "a", "video_created_at": "2025-11-01T10:00:00",
	    "snapshots": [{"id": "s"}]
	  }]
	}`))
	require.NoError(t, err)

	_, _, err = f.Flatten(time.Now())
	require.ErrorContains(t, err, "missing id or created_at")
}

func TestFlattenRejectsBadTimestamp(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`{"videos": [{"id": "v", "creator_id": "a", "video_created_at": "вчера"}]}`))
	require.NoError(t, err)

	_, _, err = f.Flatten(time.Now())
	require.ErrorContains(t, err, "unrecognized timestamp")
}

func TestParseTimeLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-11-28T09:00:00Z", time.Date(2025, time.November, 28, 9, 0, 0, 0, time.UTC)},
		{"2025-11-28T09:00:00", time.Date(2025, time.November, 28, 9, 0, 0, 0, time.UTC)},
		{"2025-11-28 09:00:00", time.Date(2025, time.November, 28, 9, 0, 0, 0, time.UTC)},
		{"2025-11-28", time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseTime(tt.in)
		require.NoError(t, err, tt.in)
		require.True(t, got.Equal(tt.want), tt.in)
	}
}
