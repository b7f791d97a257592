package mkmtrees

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render answers a public page with 200.
func Render(c echo.Context, page templ.Component) error {
	return RenderStatus(c, http.StatusOK, page)
}

// RenderStatus renders page fully before writing anything, so a template
// error still reaches the error handler and becomes the 500 page. HEAD
// requests get the headers only.
func RenderStatus(c echo.Context, code int, page templ.Component) error {
	var buf bytes.Buffer
	if err := page.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	if c.Request().Method == http.MethodHead {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		return c.NoContent(code)
	}
	return c.HTMLBlob(code, buf.Bytes())
}
