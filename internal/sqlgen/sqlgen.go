// Package sqlgen is the free-form query variant: the model writes a
// whole SELECT statement instead of picking a catalog method. It trades
// the catalog's validation for coverage, so every generated statement
// passes a read-only guard before touching the database.
package sqlgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luckysmouk/vidlytics/internal/answer"
	"github.com/luckysmouk/vidlytics/internal/dispatch"
	"github.com/luckysmouk/vidlytics/internal/llm"
	"github.com/luckysmouk/vidlytics/internal/resolver"
)

const systemPrompt = `Ты — генератор SQL-запросов к базе PostgreSQL с видео-аналитикой.

Схема:
- videos(id TEXT PRIMARY KEY, creator_id TEXT, video_created_at TIMESTAMPTZ, views_count BIGINT, likes_count BIGINT, comments_count BIGINT, reports_count BIGINT, created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)
- video_snapshots(id TEXT PRIMARY KEY, video_id TEXT REFERENCES videos(id), views_count BIGINT, likes_count BIGINT, comments_count BIGINT, reports_count BIGINT, delta_views_count BIGINT, delta_likes_count BIGINT, delta_comments_count BIGINT, delta_reports_count BIGINT, created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)

Правила:
- Ответ — ровно один SQL-запрос SELECT, возвращающий одно число, без пояснений и без форматирования.
- Только чтение данных. Никаких изменений схемы или данных.
- delta_views_count — прирост просмотров с предыдущего замера.`

// forbiddenKeywords lists statement kinds the guard rejects anywhere in
// the generated text, not just at the start.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE", "TRUNCATE", "GRANT", "REVOKE",
}

// GuardError reports a generated statement the read-only guard refused
// to run.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("generated SQL rejected: %s", e.Reason)
}

// Guard validates that a generated statement is a read-only SELECT.
func Guard(sql string) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if trimmed == "" {
		return &GuardError{Reason: "empty statement"}
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return &GuardError{Reason: "statement is not a SELECT"}
	}

	for _, kw := range forbiddenKeywords {
		if containsWord(upper, kw) {
			return &GuardError{Reason: fmt.Sprintf("statement contains %s", kw)}
		}
	}
	return nil
}

// containsWord reports whether s contains w as a whole word. Substring
// hits inside identifiers (e.g. "created_at" containing no standalone
// CREATE) must not trip the guard.
func containsWord(s, w string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], w)
		if j == -1 {
			return false
		}
		j += i
		before := j == 0 || !isWordByte(s[j-1])
		afterIdx := j + len(w)
		after := afterIdx >= len(s) || !isWordByte(s[afterIdx])
		if before && after {
			return true
		}
		i = j + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// RawExecutor is implemented by store.Store.
type RawExecutor interface {
	QueryScalarRaw(ctx context.Context, sql string) (int64, error)
}

type Generator struct {
	client llm.Client
	store  RawExecutor
	log    *slog.Logger
}

func New(log *slog.Logger, client llm.Client, store RawExecutor) *Generator {
	return &Generator{
		client: client,
		store:  store,
		log:    log.With("component", "sqlgen"),
	}
}

// Answer generates a SELECT for the question, guards it, runs it, and
// renders the scalar. Any failure collapses to a diagnostic sentence,
// matching the catalog pipeline's boundary contract.
func (g *Generator) Answer(ctx context.Context, question string) string {
	sql, err := g.Generate(ctx, question)
	if err != nil {
		g.log.Warn("sql generation failed", "question", question, "error", err)
		return answer.FormatError(err)
	}

	val, err := g.store.QueryScalarRaw(ctx, sql)
	if err != nil {
		g.log.Warn("generated sql failed", "sql", sql, "error", err)
		return answer.FormatError(&dispatch.ExecutionError{Method: "raw_sql", Err: err})
	}

	g.log.Info("raw sql answered", "value", val)
	return answer.FormatScalar(val)
}

// Generate produces a guarded SELECT statement for the question.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	response, err := g.client.Complete(ctx, systemPrompt, fmt.Sprintf("Вопрос: %s\nSQL:", question))
	if err != nil {
		return "", &resolver.ModelUnavailableError{Err: err}
	}

	sql := extractSQL(response)
	if err := Guard(sql); err != nil {
		return "", err
	}
	return sql, nil
}

// extractSQL strips code fences and surrounding prose from a model
// response.
func extractSQL(response string) string {
	response = strings.TrimSpace(response)

	for _, fence := range []string{"```sql", "```"} {
		if start := strings.Index(response, fence); start != -1 {
			start += len(fence)
			if end := strings.Index(response[start:], "```"); end != -1 {
				return strings.TrimSpace(response[start : start+end])
			}
		}
	}

	if idx := strings.Index(strings.ToUpper(response), "SELECT"); idx > 0 {
		return strings.TrimSpace(response[idx:])
	}
	return response
}
