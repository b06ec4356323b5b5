// Package httpapi exposes the media, timelapse and record operations
// over HTTP. It is a thin adapter: validation beyond request shape,
// access control and the media pipeline all live in the service layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smazurov/progresslapse/internal/common"
	"github.com/smazurov/progresslapse/internal/logging"
	"github.com/smazurov/progresslapse/internal/server/blob"
	"github.com/smazurov/progresslapse/internal/server/config"
	"github.com/smazurov/progresslapse/internal/server/media"
	"github.com/smazurov/progresslapse/internal/server/repositories/categories"
	"github.com/smazurov/progresslapse/internal/server/repositories/images"
	"github.com/smazurov/progresslapse/internal/server/repositories/records"
	"github.com/smazurov/progresslapse/internal/server/timelapse"
)

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	logger   logging.Logger
	gateway  *media.Gateway
	compiler *timelapse.Compiler
	store    blob.Store
	cats     categories.Repository
	imgs     images.Repository
	recs     records.Repository
}

func NewServer(cfg *config.Config, logger logging.Logger, gateway *media.Gateway,
	compiler *timelapse.Compiler, store blob.Store, cats categories.Repository,
	imgs images.Repository, recs records.Repository) *Server {

	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		logger:   logger,
		gateway:  gateway,
		compiler: compiler,
		store:    store,
		cats:     cats,
		imgs:     imgs,
		recs:     recs,
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api", s.authMiddleware)

	api.GET("/media/*", s.handleMedia)

	api.GET("/categories", s.handleListCategories)
	api.GET("/progress/:category", s.handleCategoryProgress)
	api.POST("/progress-images", s.handleUploadImage)
	api.DELETE("/progress-images/:id", s.handleDeleteImage)
	api.POST("/progress-videos", s.handleCompileVideo)

	api.GET("/record-units", s.handleListRecordUnits)
	api.GET("/record-categories", s.handleListRecordCategories)
	api.GET("/records/category/:id", s.handleGetRecord)
	api.POST("/records/category/:id", s.handleSetRecord)
	api.GET("/records/history/:id", s.handleRecordHistory)
}

// Echo returns the underlying router, used by tests and by App.Run.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// writeError maps the service error taxonomy onto HTTP outcomes.
// Ownership violations deliberately collapse into 404 so existence
// never leaks, and crypto failures surface as an opaque server error.
func (s *Server) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": userMessage(err)})
	case errors.Is(err, common.ErrQuotaExceeded):
		return c.JSON(http.StatusForbidden, echo.Map{"detail": userMessage(err)})
	case errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "not found"})
	case errors.Is(err, common.ErrBackend):
		s.logger.Error(c.Request().Context(), "storage backend failure", "error", err.Error())
		return c.JSON(http.StatusBadGateway, echo.Map{"detail": "storage temporarily unavailable"})
	default:
		s.logger.Error(c.Request().Context(), "internal error", "error", err.Error())
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "internal error"})
	}
}

// userMessage strips the sentinel prefix from a wrapped error, leaving
// the human-readable reason.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{common.ErrInvalidArgument, common.ErrQuotaExceeded} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}
