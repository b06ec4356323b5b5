package categories

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

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query :=
		`SELECT id, name FROM categories
		 WHERE LOWER(name) = LOWER($1)
		 `

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Category, error) {
	query :=
		`SELECT id, name FROM categories
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
