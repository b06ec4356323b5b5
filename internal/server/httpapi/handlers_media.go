package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smazurov/progresslapse/internal/server/media"
)

// handleMedia serves GET /api/media/<storage key>. Public media is
// answered with a redirect to a presigned URL; private media is
// decrypted server-side and streamed inline. The decrypted temp file
// is removed when the response has been written.
func (s *Server) handleMedia(c echo.Context) error {
	key := c.Param("*")

	decision, err := s.gateway.Resolve(c.Request().Context(), key, userID(c))
	if err != nil {
		return s.writeError(c, err)
	}
	defer decision.Close()

	if decision.Kind == media.DecisionRedirect {
		return c.Redirect(http.StatusFound, decision.URL)
	}

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(decision.Size, 10))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("inline; filename=%q", decision.FileName))
	return c.Stream(http.StatusOK, decision.ContentType, decision.File)
}
