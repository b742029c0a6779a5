package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_Lookup(t *testing.T) {
	t.Parallel()

	for _, d := range All() {
		got, ok := Lookup(d.Name)
		require.True(t, ok)
		require.Equal(t, d.Name, got.Name)
	}

	_, ok := Lookup("get_total_videos_count ") // trailing space: exact match only
	require.False(t, ok)
	_, ok = Lookup("GET_TOTAL_VIDEOS_COUNT")
	require.False(t, ok)
	_, ok = Lookup("")
	require.False(t, ok)
}

func TestCatalog_Validate_NoParams(t *testing.T) {
	t.Parallel()

	it, err := Validate(RawIntent{Method: MethodTotalVideosCount})
	require.NoError(t, err)
	require.Equal(t, TotalVideosCount{}, it)
	require.Equal(t, MethodTotalVideosCount, it.Method())
}

func TestCatalog_Validate_CreatorPeriod(t *testing.T) {
	t.Parallel()

	it, err := Validate(RawIntent{
		Method: MethodCreatorVideosInPeriod,
		Params: map[string]string{
			"creator_id": "  abc-123 ",
			"period":     " с 1 ноября 2025 по 5 ноября 2025 ",
		},
	})
	require.NoError(t, err)
	require.Equal(t, CreatorVideosInPeriod{
		CreatorID:  "abc-123",
		PeriodText: "с 1 ноября 2025 по 5 ноября 2025",
	}, it)
}

func TestCatalog_Validate_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		wantN  int64
		errSub string
	}{
		{name: "valid", value: "100000", wantN: 100000},
		{name: "zero", value: "0", wantN: 0},
		{name: "negative", value: "-5", errSub: "non-negative"},
		{name: "not a number", value: "many", errSub: "not an integer"},
		{name: "float", value: "1.5", errSub: "not an integer"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it, err := Validate(RawIntent{
				Method: MethodVideosWithViewsMoreThan,
				Params: map[string]string{"views_threshold": tt.value},
			})
			if tt.errSub != "" {
				var ierr *InvalidParameterError
				require.ErrorAs(t, err, &ierr)
				require.Equal(t, "views_threshold", ierr.Param)
				require.Contains(t, ierr.Reason, tt.errSub)
				return
			}
			require.NoError(t, err)
			require.Equal(t, VideosWithViewsMoreThan{Threshold: tt.wantN}, it)
		})
	}
}

func TestCatalog_Validate_MissingParams(t *testing.T) {
	t.Parallel()

	_, err := Validate(RawIntent{Method: MethodCreatorVideosInPeriod})
	var merr *MissingParameterError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, []string{"creator_id", "period"}, merr.Params)

	_, err = Validate(RawIntent{
		Method: MethodCreatorVideosInPeriod,
		Params: map[string]string{"creator_id": "abc", "period": "   "},
	})
	require.ErrorAs(t, err, &merr)
	require.Equal(t, []string{"period"}, merr.Params)
}

func TestCatalog_Validate_UnknownMethod(t *testing.T) {
	t.Parallel()

	_, err := Validate(RawIntent{Method: "drop_all_tables"})
	var uerr *UnknownIntentError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, "drop_all_tables", uerr.Method)
}
