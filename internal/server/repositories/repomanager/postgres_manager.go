package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/smazurov/progresslapse/internal/server/migrations"
	"github.com/smazurov/progresslapse/internal/server/repositories/categories"
	"github.com/smazurov/progresslapse/internal/server/repositories/images"
	"github.com/smazurov/progresslapse/internal/server/repositories/records"
	"github.com/smazurov/progresslapse/internal/server/repositories/users"
	"github.com/smazurov/progresslapse/internal/server/repositories/videos"
)

type PostgresRepositoryManager struct {
	db         *sql.DB
	users      users.Repository
	categories categories.Repository
	images     images.Repository
	videos     videos.Repository
	records    records.Repository
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:         db,
		users:      users.NewPostgresRepository(db),
		categories: categories.NewPostgresRepository(db),
		images:     images.NewPostgresRepository(db),
		videos:     videos.NewPostgresRepository(db),
		records:    records.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB { return m.db }

func (m *PostgresRepositoryManager) Users() users.Repository           { return m.users }
func (m *PostgresRepositoryManager) Categories() categories.Repository { return m.categories }
func (m *PostgresRepositoryManager) Images() images.Repository         { return m.images }
func (m *PostgresRepositoryManager) Videos() videos.Repository         { return m.videos }
func (m *PostgresRepositoryManager) Records() records.Repository       { return m.records }

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
