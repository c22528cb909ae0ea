package router

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// JSONSerializer is an echo.JSONSerializer backed by goccy/go-json, so
// responses written through c.JSON and the dispatcher's own output share
// one encoder.
type JSONSerializer struct{}

// Serialize writes i as JSON to the response.
func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize reads the request body into i.
//
// Routes in this service read raw bodies, so this only backs c.Bind calls.
// Decode failures become a 400 like Echo's default serializer.
func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON in request body").SetInternal(err)
	}
	return nil
}
