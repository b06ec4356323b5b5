package records

import (
	"context"

	"github.com/smazurov/progresslapse/internal/server/models"
)

type Repository interface {
	ListUnits(ctx context.Context) ([]*models.RecordUnit, error)
	ListCategories(ctx context.Context) ([]*models.RecordCategory, error)
	// GetByCategory returns the user's current record for a category.
	GetByCategory(ctx context.Context, userID string, categoryID int64) (*models.RecordEntry, error)
	// Upsert inserts or replaces the record for (user, category).
	Upsert(ctx context.Context, entry *models.RecordEntry) (*models.RecordEntry, error)
	// History returns the user's entries for a category ordered by date.
	History(ctx context.Context, userID string, categoryID int64) ([]*models.RecordEntry, error)
}
