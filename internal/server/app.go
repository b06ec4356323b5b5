// Package server initializes and runs the progresslapse server. It
// wires configuration, key derivation, object storage, the database
// repositories and the HTTP endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/progresslapse/internal/cryptox"
	"github.com/smazurov/progresslapse/internal/filex"
	"github.com/smazurov/progresslapse/internal/logging"
	"github.com/smazurov/progresslapse/internal/server/blob"
	"github.com/smazurov/progresslapse/internal/server/config"
	"github.com/smazurov/progresslapse/internal/server/httpapi"
	"github.com/smazurov/progresslapse/internal/server/media"
	"github.com/smazurov/progresslapse/internal/server/repositories/repomanager"
	"github.com/smazurov/progresslapse/internal/server/timelapse"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if err := filex.EnsureDir(cfg.TempDir); err != nil {
		return nil, fmt.Errorf("temp dir init error: %w", err)
	}

	deriver, err := cryptox.NewKeyDeriver([]byte(cfg.MediaMasterSecret))
	if err != nil {
		return nil, err
	}
	cipher := cryptox.NewMediaCipher(deriver)

	store, err := blob.NewS3Store(ctx, blob.S3Config{
		User:         cfg.S3User,
		Password:     cfg.S3Password,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	repos, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.EnsureReferenceData(ctx); err != nil {
		return nil, fmt.Errorf("db seed error: %w", err)
	}

	gateway := media.NewGateway(repos.Images(), repos.Videos(), store, cipher, cfg.TempDir, cfg.PresignTTL)
	encoder := timelapse.NewFFmpegEncoder(cfg.FFmpegPath)
	compiler := timelapse.NewCompiler(repos.Users(), repos.Categories(), repos.Images(),
		repos.Videos(), gateway, encoder, cfg.TempDir, cfg.WeeklyVideoQuota, logger)

	srv := httpapi.NewServer(cfg, logger, gateway, compiler, store,
		repos.Categories(), repos.Images(), repos.Records())

	return &App{config: cfg, logger: logger, repos: repos, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(app.config.EndpointAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	return nil
}
