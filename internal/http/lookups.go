package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/primerdw/bartender-api/internal/apperr"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/repository"
)

const ctxRowCount = "row_count"

// lookupHandler serves one resource: parse the declared parameters, run
// the lookup, answer 404 on no rows and the row array otherwise.
func lookupHandler(res lookup.Resource, repo repository.LookupRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := lookup.ParseRequest(res, c.QueryParams())
		if err != nil {
			return err
		}

		rows, err := repo.Find(c.Request().Context(), res, req)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperr.NotFound(res.NotFound)
		}

		c.Set(ctxRowCount, len(rows))
		return c.JSON(http.StatusOK, rows)
	}
}
