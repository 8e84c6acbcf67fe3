package folio

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/live"
	"github.com/eringen/folio/views"
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

// renderXML writes a prebuilt XML document.
func renderXML(c echo.Context, contentType string, body []byte) error {
	return c.Blob(http.StatusOK, contentType, body)
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Image:       a.Config.Image,
	}
}

// page builds the shell data for the current request.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	var snap live.Snapshot
	if v := viewerFrom(c); v != nil {
		snap = v.State().Snapshot
	} else if a.Layer != nil {
		snap = a.Layer.Snapshot()
	}
	return views.Page{
		Site:    a.siteConfig(),
		Meta:    meta,
		Path:    c.Request().URL.Path,
		Profile: snap.Profile,
		Live:    true,
	}
}
