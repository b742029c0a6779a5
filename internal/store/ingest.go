package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/luckysmouk/vidlytics/internal/retrieval"
)

// Video is one video record as stored.
type Video struct {
	ID             string
	CreatorID      string
	VideoCreatedAt time.Time
	ViewsCount     int64
	LikesCount     int64
	CommentsCount  int64
	ReportsCount   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Snapshot is one period snapshot of a video's metrics.
type Snapshot struct {
	ID                 string
	VideoID            string
	ViewsCount         int64
	LikesCount         int64
	CommentsCount      int64
	ReportsCount       int64
	DeltaViewsCount    int64
	DeltaLikesCount    int64
	DeltaCommentsCount int64
	DeltaReportsCount  int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InsertVideos bulk-loads video records via COPY.
func (s *Store) InsertVideos(ctx context.Context, videos []Video) (int64, error) {
	rows := make([][]any, len(videos))
	for i, v := range videos {
		rows[i] = []any{
			v.ID, v.CreatorID, v.VideoCreatedAt,
			v.ViewsCount, v.LikesCount, v.CommentsCount, v.ReportsCount,
			v.CreatedAt, v.UpdatedAt,
		}
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"videos"},
		[]string{"id", "creator_id", "video_created_at", "views_count", "likes_count", "comments_count", "reports_count", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy videos: %w", err)
	}
	return n, nil
}

// InsertSnapshots bulk-loads snapshot records via COPY.
func (s *Store) InsertSnapshots(ctx context.Context, snapshots []Snapshot) (int64, error) {
	rows := make([][]any, len(snapshots))
	for i, sn := range snapshots {
		rows[i] = []any{
			sn.ID, sn.VideoID,
			sn.ViewsCount, sn.LikesCount, sn.CommentsCount, sn.ReportsCount,
			sn.DeltaViewsCount, sn.DeltaLikesCount, sn.DeltaCommentsCount, sn.DeltaReportsCount,
			sn.CreatedAt, sn.UpdatedAt,
		}
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"video_snapshots"},
		[]string{"id", "video_id", "views_count", "likes_count", "comments_count", "reports_count", "delta_views_count", "delta_likes_count", "delta_comments_count", "delta_reports_count", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy snapshots: %w", err)
	}
	return n, nil
}

// ReplaceContextDocs replaces the context document collection.
func (s *Store) ReplaceContextDocs(ctx context.Context, docs []retrieval.Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM context_docs`); err != nil {
		return fmt.Errorf("clear context docs: %w", err)
	}
	for _, d := range docs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO context_docs (id, content, embedding) VALUES ($1, $2, $3)`,
			d.ID, d.Content, d.Embedding,
		); err != nil {
			return fmt.Errorf("insert context doc %s: %w", d.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// Documents lists the stored context documents. Implements
// retrieval.DocSource.
func (s *Store) Documents(ctx context.Context) ([]retrieval.Document, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, content, embedding FROM context_docs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query context docs: %w", err)
	}
	defer rows.Close()

	var docs []retrieval.Document
	for rows.Next() {
		var d retrieval.Document
		if err := rows.Scan(&d.ID, &d.Content, &d.Embedding); err != nil {
			return nil, fmt.Errorf("scan context doc: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
