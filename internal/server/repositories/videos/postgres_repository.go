package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/progresslapse/internal/common"
	"github.com/smazurov/progresslapse/internal/dbx"
	"github.com/smazurov/progresslapse/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, video *models.ProgressVideo) (*models.ProgressVideo, error) {
	query :=
		`INSERT INTO progress_videos (user_id, category_id, storage_key, is_public, fps, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		video.UserID, video.CategoryID, video.StorageKey, video.IsPublic,
		video.FPS, video.StartDate, video.EndDate).Scan(&video.ID, &video.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) GetByStorageKey(ctx context.Context, userID, key string) (*models.ProgressVideo, error) {
	query :=
		`SELECT id, user_id, category_id, storage_key, is_public, fps, start_date, end_date, created_at
		 FROM progress_videos
		 WHERE user_id = $1 AND storage_key = $2
		 `

	video := &models.ProgressVideo{}
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(
		&video.ID, &video.UserID, &video.CategoryID, &video.StorageKey, &video.IsPublic,
		&video.FPS, &video.StartDate, &video.EndDate, &video.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query :=
		`SELECT COUNT(*) FROM progress_videos
		 WHERE user_id = $1 AND created_at >= $2
		 `

	var n int
	err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
