package videos

import (
	"context"
	"time"

	"github.com/smazurov/progresslapse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, video *models.ProgressVideo) (*models.ProgressVideo, error)
	GetByStorageKey(ctx context.Context, userID, key string) (*models.ProgressVideo, error)
	// CountCreatedSince counts the user's videos created at or after the
	// given instant; the compiler's sliding-window quota is built on it.
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
}
