package categories

import (
	"context"

	"github.com/smazurov/progresslapse/internal/server/models"
)

type Repository interface {
	// GetByName resolves a category by name, case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}
