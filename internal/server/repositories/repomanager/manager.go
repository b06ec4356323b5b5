// Package repomanager bundles the Postgres repositories behind one
// constructor so services receive a single dependency.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/smazurov/progresslapse/internal/server/repositories/categories"
	"github.com/smazurov/progresslapse/internal/server/repositories/images"
	"github.com/smazurov/progresslapse/internal/server/repositories/records"
	"github.com/smazurov/progresslapse/internal/server/repositories/users"
	"github.com/smazurov/progresslapse/internal/server/repositories/videos"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Categories() categories.Repository
	Images() images.Repository
	Videos() videos.Repository
	Records() records.Repository
	RunMigrations(ctx context.Context) error
	EnsureReferenceData(ctx context.Context) error
	Close() error
}
