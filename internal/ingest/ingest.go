// Package ingest loads the analytics dataset from its JSON export into
// Postgres and rebuilds the retrieval context collection.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/luckysmouk/vidlytics/internal/retrieval"
	"github.com/luckysmouk/vidlytics/internal/store"
)

// VideoRecord is one video entry of the export file, snapshots nested.
type VideoRecord struct {
	ID             string           `json:"id"`
	CreatorID      string           `json:"creator_id"`
	VideoCreatedAt string           `json:"video_created_at"`
	ViewsCount     int64            `json:"views_count"`
	LikesCount     int64            `json:"likes_count"`
	CommentsCount  int64            `json:"comments_count"`
	ReportsCount   int64            `json:"reports_count"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
	Snapshots      []SnapshotRecord `json:"snapshots"`
}

// SnapshotRecord is one hourly metrics observation of a video.
type SnapshotRecord struct {
	ID                 string `json:"id"`
	ViewsCount         int64  `json:"views_count"`
	LikesCount         int64  `json:"likes_count"`
	CommentsCount      int64  `json:"comments_count"`
	ReportsCount       int64  `json:"reports_count"`
	DeltaViewsCount    int64  `json:"delta_views_count"`
	DeltaLikesCount    int64  `json:"delta_likes_count"`
	DeltaCommentsCount int64  `json:"delta_comments_count"`
	DeltaReportsCount  int64  `json:"delta_reports_count"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// File is the top-level export shape.
type File struct {
	Videos []VideoRecord `json:"videos"`
}

// ReadFile parses the export file. A file without a videos key is
// rejected rather than treated as an empty dataset.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if _, ok := probe["videos"]; !ok {
		return nil, fmt.Errorf("parse export: no videos key")
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	return &f, nil
}

// Flatten converts the nested export into flat video and snapshot rows.
// Missing service timestamps default to now; missing required fields
// fail the whole load.
func (f *File) Flatten(now time.Time) ([]store.Video, []store.Snapshot, error) {
	videos := make([]store.Video, 0, len(f.Videos))
	var snapshots []store.Snapshot

	for i, v := range f.Videos {
		if v.ID == "" || v.CreatorID == "" || v.VideoCreatedAt == "" {
			return nil, nil, fmt.Errorf("video %d: missing id, creator_id or video_created_at", i)
		}
		publishedAt, err := parseTime(v.VideoCreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("video %s: %w", v.ID, err)
		}

		videos = append(videos, store.Video{
			ID:             v.ID,
			CreatorID:      v.CreatorID,
			VideoCreatedAt: publishedAt,
			ViewsCount:     v.ViewsCount,
			LikesCount:     v.LikesCount,
			CommentsCount:  v.CommentsCount,
			ReportsCount:   v.ReportsCount,
			CreatedAt:      parseTimeOr(v.CreatedAt, now),
			UpdatedAt:      parseTimeOr(v.UpdatedAt, now),
		})

		for j, sn := range v.Snapshots {
			if sn.ID == "" || sn.CreatedAt == "" {
				return nil, nil, fmt.Errorf("video %s snapshot %d: missing id or created_at", v.ID, j)
			}
			observedAt, err := parseTime(sn.CreatedAt)
			if err != nil {
				return nil, nil, fmt.Errorf("snapshot %s: %w", sn.ID, err)
			}

			snapshots = append(snapshots, store.Snapshot{
				ID:                 sn.ID,
				VideoID:            v.ID,
				ViewsCount:         sn.ViewsCount,
				LikesCount:         sn.LikesCount,
				CommentsCount:      sn.CommentsCount,
				ReportsCount:       sn.ReportsCount,
				DeltaViewsCount:    sn.DeltaViewsCount,
				DeltaLikesCount:    sn.DeltaLikesCount,
				DeltaCommentsCount: sn.DeltaCommentsCount,
				DeltaReportsCount:  sn.DeltaReportsCount,
				CreatedAt:          observedAt,
				UpdatedAt:          parseTimeOr(sn.UpdatedAt, now),
			})
		}
	}

	return videos, snapshots, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseTimeOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := parseTime(s)
	if err != nil {
		return fallback
	}
	return t
}

// Summary reports what a load wrote.
type Summary struct {
	Videos    int64
	Snapshots int64
	Docs      int
}

// Loader drives a full reload: schema reset, bulk copy, and context
// document rebuild.
type Loader struct {
	store    *store.Store
	embedder retrieval.Embedder
	log      *slog.Logger
}

func NewLoader(log *slog.Logger, st *store.Store, embedder retrieval.Embedder) *Loader {
	return &Loader{
		store:    st,
		embedder: embedder,
		log:      log.With("component", "ingest"),
	}
}

// Run loads the export at path from scratch. Context document embedding
// is best-effort: the catalog pipeline works without it.
func (l *Loader) Run(ctx context.Context, path string) (Summary, error) {
	file, err := ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	l.log.Info("export parsed", "path", path, "videos", len(file.Videos))

	videos, snapshots, err := file.Flatten(time.Now().UTC())
	if err != nil {
		return Summary{}, err
	}

	if err := l.store.ResetSchema(ctx); err != nil {
		return Summary{}, err
	}

	nVideos, err := l.store.InsertVideos(ctx, videos)
	if err != nil {
		return Summary{}, err
	}
	nSnapshots, err := l.store.InsertSnapshots(ctx, snapshots)
	if err != nil {
		return Summary{}, err
	}
	l.log.Info("dataset loaded", "videos", nVideos, "snapshots", nSnapshots)

	docs := l.buildContextDocs(ctx)
	if len(docs) > 0 {
		if err := l.store.ReplaceContextDocs(ctx, docs); err != nil {
			return Summary{}, err
		}
	}

	return Summary{Videos: nVideos, Snapshots: nSnapshots, Docs: len(docs)}, nil
}

func (l *Loader) buildContextDocs(ctx context.Context) []retrieval.Document {
	if l.embedder == nil {
		l.log.Warn("no embedder configured, skipping context documents")
		return nil
	}

	var docs []retrieval.Document
	for id, content := range contextDocs {
		vec, err := l.embedder.Embed(ctx, content)
		if err != nil {
			l.log.Warn("embedding failed, skipping context documents", "doc", id, "error", err)
			return nil
		}
		docs = append(docs, retrieval.Document{ID: id, Content: content, Embedding: vec})
	}
	return docs
}

// contextDocs are the reference texts surfaced to the classifier as
// prompt context.
var contextDocs = map[string]string{
	"schema": `База видео-аналитики содержит две таблицы.
Таблица videos — итоговая статистика по видео: id, creator_id,
video_created_at (дата публикации), views_count, likes_count,
comments_count, reports_count.
Таблица video_snapshots — почасовые замеры метрик: video_id,
текущие значения счётчиков и приращения с прошлого замера
(delta_views_count, delta_likes_count, delta_comments_count,
delta_reports_count), created_at — время замера.`,

	"query-patterns": `Типовые вопросы:
общее количество видео; число видео креатора за период по дате
публикации; видео с просмотрами выше порога; суммарный прирост
просмотров за дату (сумма delta_views_count по замерам этого дня);
число видео с новыми просмотрами за дату (замеры с
delta_views_count > 0).`,
}
