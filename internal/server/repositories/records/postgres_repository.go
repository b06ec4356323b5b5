package records

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

func (r *PostgresRepository) ListUnits(ctx context.Context) ([]*models.RecordUnit, error) {
	query :=
		`SELECT id, name FROM record_units
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RecordUnit
	for rows.Next() {
		u := &models.RecordUnit{}
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*models.RecordCategory, error) {
	query :=
		`SELECT c.id, c.name, c.unit_id, u.name FROM record_categories c
		 JOIN record_units u ON u.id = c.unit_id
		 ORDER BY c.name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RecordCategory
	for rows.Next() {
		c := &models.RecordCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.UnitID, &c.UnitName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByCategory(ctx context.Context, userID string, categoryID int64) (*models.RecordEntry, error) {
	query :=
		`SELECT id, user_id, category_id, date, value FROM record_data
		 WHERE user_id = $1 AND category_id = $2
		 `

	e := &models.RecordEntry{}
	err := r.db.QueryRowContext(ctx, query, userID, categoryID).Scan(
		&e.ID, &e.UserID, &e.CategoryID, &e.Date, &e.Value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.RecordEntry) (*models.RecordEntry, error) {
	query :=
		`INSERT INTO record_data (user_id, category_id, date, value)
		 VALUES ($1, $2, now(), $3)
		 ON CONFLICT (user_id, category_id)
		 DO UPDATE SET value = EXCLUDED.value, date = now()
		 RETURNING id, date
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.CategoryID, entry.Value).Scan(&entry.ID, &entry.Date)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) History(ctx context.Context, userID string, categoryID int64) ([]*models.RecordEntry, error) {
	query :=
		`SELECT id, user_id, category_id, date, value FROM record_data
		 WHERE user_id = $1 AND category_id = $2
		 ORDER BY date
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RecordEntry
	for rows.Next() {
		e := &models.RecordEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Date, &e.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
