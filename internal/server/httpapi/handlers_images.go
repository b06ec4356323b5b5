package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smazurov/progresslapse/internal/server/media"
	"github.com/smazurov/progresslapse/internal/server/models"
)

const dateLayout = "2006-01-02"

type imageResponse struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Date  string `json:"date"`
}

func toImageResponse(img *models.ProgressImage) imageResponse {
	return imageResponse{
		ID:    img.ID,
		Image: "/api/media/" + img.StorageKey,
		Date:  img.Date.Format(dateLayout),
	}
}

func (s *Server) handleListCategories(c echo.Context) error {
	cats, err := s.cats.List(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}

	out := make([]echo.Map, 0, len(cats))
	for _, cat := range cats {
		out = append(out, echo.Map{"id": cat.ID, "name": cat.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// handleCategoryProgress lists the caller's images in one category,
// oldest first, as dated media paths.
func (s *Server) handleCategoryProgress(c echo.Context) error {
	ctx := c.Request().Context()

	cat, err := s.cats.GetByName(ctx, c.Param("category"))
	if err != nil {
		return s.writeError(c, err)
	}

	imgs, err := s.imgs.ListByCategory(ctx, userID(c), cat.ID)
	if err != nil {
		return s.writeError(c, err)
	}

	out := make([]imageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, toImageResponse(img))
	}
	return c.JSON(http.StatusOK, echo.Map{"category": cat.Name, "images": out})
}

// handleUploadImage accepts a multipart image upload, encrypts it under
// the caller's key and records it as private.
func (s *Server) handleUploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	uid := userID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "no image file provided"})
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "only image files are allowed"})
	}

	cat, err := s.cats.GetByName(ctx, c.FormValue("category"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "unknown category"})
	}

	date := time.Now().UTC()
	if raw := c.FormValue("date"); raw != "" {
		date, err = time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "date must be YYYY-MM-DD"})
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return s.writeError(c, err)
	}
	defer src.Close()

	key := media.ImageKeyPrefix(uid) + uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := s.gateway.PutEncrypted(ctx, key, uid, src); err != nil {
		return s.writeError(c, err)
	}

	img, err := s.imgs.Create(ctx, &models.ProgressImage{
		UserID:     uid,
		CategoryID: cat.ID,
		Date:       date,
		StorageKey: key,
	})
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toImageResponse(img))
}

// handleDeleteImage removes one of the caller's images. Rows owned by
// someone else answer exactly like missing rows. The blob delete is
// best effort; a dangling ciphertext object is harmless.
func (s *Server) handleDeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	img, err := s.imgs.GetByID(ctx, id)
	if err != nil {
		return s.writeError(c, err)
	}
	if img.UserID != userID(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "not found"})
	}

	if err := s.store.Delete(ctx, img.StorageKey); err != nil {
		s.logger.Warn(ctx, "blob delete failed", "key", img.StorageKey, "error", err.Error())
	}

	if err := s.imgs.Delete(ctx, id); err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "progress image deleted"})
}
