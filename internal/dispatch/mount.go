package dispatch

import (
	"io"
	"net/http"

	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/labstack/echo/v4"
)

// Mount registers every route of the table on e.
//
// Each Echo handler reads the raw query and body and runs the same pipeline
// as Dispatch. Failures are returned to Echo so its HTTPErrorHandler writes
// them; pair Mount with an error handler built on errs.Resolve to get the
// same body Dispatch produces.
func (t *Table) Mount(e *echo.Echo, m ...echo.MiddlewareFunc) {
	for _, route := range t.order {
		e.Add(route.Method, route.Path, func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return errs.NewBadRequestError("Failed to read request body", false, nil, nil)
			}

			result, err := route.run(c.Request().Context(), c.QueryParams(), body)
			if err != nil {
				return err
			}

			return c.JSON(http.StatusOK, result)
		}, m...)
	}
}
