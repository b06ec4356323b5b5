package images

import (
	"context"

	"github.com/smazurov/progresslapse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.ProgressImage) (*models.ProgressImage, error)
	GetByID(ctx context.Context, id string) (*models.ProgressImage, error)
	// GetByStorageKey looks an image up by its blob key, scoped to the
	// owning user so the gateway's ownership check is one query.
	GetByStorageKey(ctx context.Context, userID, key string) (*models.ProgressImage, error)
	// ListByCategory returns the user's images in a category ordered by
	// capture date ascending.
	ListByCategory(ctx context.Context, userID string, categoryID int64) ([]*models.ProgressImage, error)
	Delete(ctx context.Context, id string) error
}
