package blogfront

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// reply sends the envelope a handler drew on.
func reply(c echo.Context, env *envelope) error {
	return c.JSON(http.StatusOK, env)
}

// replyError sends a bare alert envelope. Generation 0 is applied by the
// shell regardless of the latest generation it has seen.
func replyError(c echo.Context, code int, msg string) error {
	env := newEnvelope(0, nil)
	env.Alert(msg)
	return c.JSON(code, env)
}
