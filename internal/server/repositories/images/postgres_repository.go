package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, img *models.ProgressImage) (*models.ProgressImage, error) {
	query :=
		`INSERT INTO progress_images (user_id, category_id, date, storage_key, is_public)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		img.UserID, img.CategoryID, img.Date, img.StorageKey, img.IsPublic).Scan(&img.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ProgressImage, error) {
	query :=
		`SELECT id, user_id, category_id, date, storage_key, is_public FROM progress_images
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByStorageKey(ctx context.Context, userID, key string) (*models.ProgressImage, error) {
	query :=
		`SELECT id, user_id, category_id, date, storage_key, is_public FROM progress_images
		 WHERE user_id = $1 AND storage_key = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, key))
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, userID string, categoryID int64) ([]*models.ProgressImage, error) {
	query :=
		`SELECT id, user_id, category_id, date, storage_key, is_public FROM progress_images
		 WHERE user_id = $1 AND category_id = $2
		 ORDER BY date
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ProgressImage
	for rows.Next() {
		img := &models.ProgressImage{}
		err := rows.Scan(&img.ID, &img.UserID, &img.CategoryID, &img.Date, &img.StorageKey, &img.IsPublic)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM progress_images
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.ProgressImage, error) {
	img := &models.ProgressImage{}
	err := row.Scan(&img.ID, &img.UserID, &img.CategoryID, &img.Date, &img.StorageKey, &img.IsPublic)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}
