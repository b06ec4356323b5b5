package users

import (
	"context"

	"github.com/smazurov/progresslapse/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
