package sqlgen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sql     string
		wantErr string
	}{
		{name: "plain count", sql: "SELECT COUNT(*) FROM videos"},
		{name: "trailing semicolon", sql: "SELECT COUNT(*) FROM videos;"},
		{name: "lowercase select", sql: "select sum(delta_views_count) from video_snapshots"},
		{name: "leading whitespace", sql: "  \n SELECT COUNT(*) FROM videos"},
		{name: "column named created_at", sql: "SELECT COUNT(*) FROM videos WHERE created_at::date = '2025-11-28'"},
		{name: "column named updated_at", sql: "SELECT COUNT(*) FROM videos WHERE updated_at > now() - interval '1 day'"},
		{name: "empty", sql: "   ", wantErr: "empty"},
		{name: "not a select", sql: "WITH x AS (SELECT 1) SELECT * FROM x", wantErr: "not a SELECT"},
		{name: "drop", sql: "SELECT 1; DROP TABLE videos", wantErr: "DROP"},
		{name: "delete", sql: "SELECT COUNT(*) FROM videos WHERE TRUE; DELETE FROM videos", wantErr: "DELETE"},
		{name: "insert", sql: "SELECT 1; INSERT INTO videos VALUES ('x')", wantErr: "INSERT"},
		{name: "update", sql: "SELECT 1; UPDATE videos SET views_count = 0", wantErr: "UPDATE"},
		{name: "truncate", sql: "SELECT 1; TRUNCATE videos", wantErr: "TRUNCATE"},
		{name: "create", sql: "SELECT 1; CREATE TABLE evil (id INT)", wantErr: "CREATE"},
		{name: "grant", sql: "SELECT 1; GRANT ALL ON videos TO PUBLIC", wantErr: "GRANT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Guard(tt.sql)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var guardErr *GuardError
			require.ErrorAs(t, err, &guardErr)
			require.Contains(t, guardErr.Reason, tt.wantErr)
		})
	}
}

type stubClient struct {
	response string
	err      error
}

func (c *stubClient) Complete(_ context.Context, _, _ string) (string, error) {
	return c.response, c.err
}

type stubExecutor struct {
	val     int64
	err     error
	gotSQL  string
	queries int
}

func (s *stubExecutor) QueryScalarRaw(_ context.Context, sql string) (int64, error) {
	s.queries++
	s.gotSQL = sql
	return s.val, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateStripsFences(t *testing.T) {
	t.Parallel()

	g := New(testLogger(), &stubClient{response: "```sql\nSELECT COUNT(*) FROM videos\n```"}, nil)

	sql, err := g.Generate(context.Background(), "Сколько видео?")
	require.NoError(t, err)
	require.Equal(t, "SELECT COUNT(*) FROM videos", sql)
}

func TestGenerateStripsLeadingProse(t *testing.T) {
	t.Parallel()

	g := New(testLogger(), &stubClient{response: "Вот запрос: SELECT COUNT(*) FROM videos"}, nil)

	sql, err := g.Generate(context.Background(), "Сколько видео?")
	require.NoError(t, err)
	require.Equal(t, "SELECT COUNT(*) FROM videos", sql)
}

func TestGenerateRejectsMutation(t *testing.T) {
	t.Parallel()

	g := New(testLogger(), &stubClient{response: "SELECT 1; DROP TABLE videos"}, nil)

	_, err := g.Generate(context.Background(), "Удали все видео")

	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
}

func TestAnswerRunsGuardedSQL(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{val: 1523}
	g := New(testLogger(), &stubClient{response: "SELECT COUNT(*) FROM videos"}, exec)

	got := g.Answer(context.Background(), "Сколько видео?")
	require.Equal(t, "1523", got)
	require.Equal(t, "SELECT COUNT(*) FROM videos", exec.gotSQL)
}

func TestAnswerRejectedSQLNeverReachesStore(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{}
	g := New(testLogger(), &stubClient{response: "DELETE FROM videos"}, exec)

	got := g.Answer(context.Background(), "Удали все видео")
	require.NotEmpty(t, got)
	require.Zero(t, exec.queries)
}

func TestAnswerDatabaseFailure(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{err: errors.New("syntax error")}
	g := New(testLogger(), &stubClient{response: "SELECT COUNT(*) FROM videos"}, exec)

	got := g.Answer(context.Background(), "Сколько видео?")
	require.Equal(t, "Ошибка при выполнении запроса к базе данных.", got)
}
