package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smazurov/progresslapse/internal/server/timelapse"
)

type compileVideoRequest struct {
	Category   string   `json:"category"`
	StartIndex *int     `json:"start_index"`
	EndIndex   *int     `json:"end_index"`
	FPS        *float64 `json:"fps"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Order      string   `json:"order"`
}

type compileVideoResponse struct {
	VideoURL        string  `json:"video_url"`
	Count           int     `json:"count"`
	DurationSeconds float64 `json:"duration_seconds"`
	FPS             float64 `json:"fps"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
}

// handleCompileVideo runs the timelapse pipeline for the caller.
// Omitted fields fall back to the full range at 2 fps, oldest first.
func (s *Server) handleCompileVideo(c echo.Context) error {
	var body compileVideoRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}

	req := timelapse.CompileRequest{
		Category:   body.Category,
		StartIndex: 0,
		EndIndex:   -1,
		FPS:        2.0,
		Width:      body.Width,
		Height:     body.Height,
		Order:      body.Order,
	}
	if body.StartIndex != nil {
		req.StartIndex = *body.StartIndex
	}
	if body.EndIndex != nil {
		req.EndIndex = *body.EndIndex
	}
	if body.FPS != nil {
		req.FPS = *body.FPS
	}
	if req.Order == "" {
		req.Order = timelapse.OrderOldest
	}

	result, err := s.compiler.Compile(c.Request().Context(), userID(c), req)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, compileVideoResponse{
		VideoURL:        result.Path,
		Count:           result.Count,
		DurationSeconds: result.DurationSeconds,
		FPS:             result.FPS,
		StartDate:       result.StartDate.Format(dateLayout),
		EndDate:         result.EndDate.Format(dateLayout),
	})
}
