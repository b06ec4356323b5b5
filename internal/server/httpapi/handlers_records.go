package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smazurov/progresslapse/internal/common"
	"github.com/smazurov/progresslapse/internal/server/models"
)

func (s *Server) handleListRecordUnits(c echo.Context) error {
	units, err := s.recs.ListUnits(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}

	out := make([]echo.Map, 0, len(units))
	for _, u := range units {
		out = append(out, echo.Map{"id": u.ID, "name": u.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"units": out})
}

func (s *Server) handleListRecordCategories(c echo.Context) error {
	cats, err := s.recs.ListCategories(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}

	out := make([]echo.Map, 0, len(cats))
	for _, rc := range cats {
		out = append(out, echo.Map{"id": rc.ID, "name": rc.Name, "unit": rc.UnitName})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// handleGetRecord returns the caller's current record for a category,
// or a null value if none has been set yet.
func (s *Server) handleGetRecord(c echo.Context) error {
	categoryID, err := recordCategoryID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid category id"})
	}

	entry, err := s.recs.GetByCategory(c.Request().Context(), userID(c), categoryID)
	if errors.Is(err, common.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"value": nil})
	}
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"value": entry.Value,
		"date":  entry.Date.Format(dateLayout),
	})
}

func (s *Server) handleSetRecord(c echo.Context) error {
	categoryID, err := recordCategoryID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid category id"})
	}

	var body struct {
		Value *int64 `json:"value"`
	}
	if err := c.Bind(&body); err != nil || body.Value == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "value is required"})
	}

	entry, err := s.recs.Upsert(c.Request().Context(), &models.RecordEntry{
		UserID:     userID(c),
		CategoryID: categoryID,
		Date:       time.Now().UTC(),
		Value:      *body.Value,
	})
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"value": entry.Value,
		"date":  entry.Date.Format(dateLayout),
	})
}

func (s *Server) handleRecordHistory(c echo.Context) error {
	categoryID, err := recordCategoryID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid category id"})
	}

	entries, err := s.recs.History(c.Request().Context(), userID(c), categoryID)
	if err != nil {
		return s.writeError(c, err)
	}

	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, echo.Map{"value": e.Value, "date": e.Date.Format(dateLayout)})
	}
	return c.JSON(http.StatusOK, echo.Map{"history": out})
}

func recordCategoryID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
