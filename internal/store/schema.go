package store

import (
	"context"
	"fmt"
)

// ResetSchema drops and recreates the two metrics tables, their indexes,
// and the context document collection. Ingestion always starts from a
// clean slate, matching the loader's contract.
func (s *Store) ResetSchema(ctx context.Context) error {
	s.log.Info("resetting schema")

	stmts := []string{
		`DROP TABLE IF EXISTS video_snapshots CASCADE`,
		`DROP TABLE IF EXISTS videos CASCADE`,
		`DROP TABLE IF EXISTS context_docs`,

		`CREATE TABLE videos (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL,
			video_created_at TIMESTAMPTZ NOT NULL,
			views_count BIGINT NOT NULL DEFAULT 0,
			likes_count BIGINT NOT NULL DEFAULT 0,
			comments_count BIGINT NOT NULL DEFAULT 0,
			reports_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX idx_videos_creator ON videos (creator_id)`,
		`CREATE INDEX idx_videos_created_at ON videos (video_created_at)`,
		`CREATE INDEX idx_videos_views ON videos (views_count)`,

		`CREATE TABLE video_snapshots (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL REFERENCES videos (id) ON DELETE CASCADE,
			views_count BIGINT NOT NULL DEFAULT 0,
			likes_count BIGINT NOT NULL DEFAULT 0,
			comments_count BIGINT NOT NULL DEFAULT 0,
			reports_count BIGINT NOT NULL DEFAULT 0,
			delta_views_count BIGINT NOT NULL DEFAULT 0,
			delta_likes_count BIGINT NOT NULL DEFAULT 0,
			delta_comments_count BIGINT NOT NULL DEFAULT 0,
			delta_reports_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX idx_snapshots_video_id ON video_snapshots (video_id)`,
		`CREATE INDEX idx_snapshots_created_at ON video_snapshots (created_at)`,
		`CREATE INDEX idx_snapshots_delta_views ON video_snapshots (delta_views_count)`,

		`CREATE TABLE context_docs (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding REAL[] NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	s.log.Info("schema created")
	return nil
}
