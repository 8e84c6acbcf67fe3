package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/live"
	"github.com/eringen/folio/views"
)

func (a *App) state(c echo.Context) live.State {
	if v := viewerFrom(c); v != nil {
		return v.State()
	}
	return live.State{Snapshot: a.Layer.Snapshot()}
}

func (a *App) handleHome(c echo.Context) error {
	st := a.state(c)
	p := a.page(c, views.PageMeta{
		Title:       st.Profile.Name,
		Description: st.Profile.ShortBio,
		URL:         BuildURL(a.Config.URL),
		Image:       st.Profile.AvatarURL,
	})
	p.JSONLD = []string{views.WebsiteJsonLD(a.siteConfig()), views.PersonJsonLD(a.siteConfig(), st.Profile)}
	return Render(c, views.Home(p, st.Profile, st.Categories, st.Projects))
}

func (a *App) handlePortfolio(c echo.Context) error {
	st := a.state(c)
	filter := strings.TrimSpace(c.QueryParam("cat"))
	meta := views.PageMeta{
		Title:       "Portfolio",
		Description: "Projects by " + st.Profile.Name,
		URL:         BuildURL(a.Config.URL, "portfolio"),
	}
	if filter != "" {
		cat, ok := content.Lookup(st.Categories, filter)
		if !ok || !cat.Active {
			filter = ""
		} else {
			meta.Title = cat.Name + " Portfolio"
			meta.NoIndex = true
		}
	}
	return Render(c, views.Portfolio(a.page(c, meta), st.Categories, st.Projects, filter))
}

func (a *App) handleProject(c echo.Context) error {
	st := a.state(c)
	id := c.Param("id")
	project, ok := content.FindProject(st.Projects, id)
	if !ok {
		p := a.page(c, views.PageMeta{Title: "Project not found", NoIndex: true})
		return RenderStatus(c, http.StatusNotFound, views.ProjectNotFound(p))
	}
	cat, hasCat := content.Lookup(st.Categories, project.CategoryID)
	p := a.page(c, views.PageMeta{
		Title:       project.Title,
		Description: project.Description,
		URL:         BuildURL(a.Config.URL, "project", project.ID),
		OGType:      "article",
		Image:       content.MainImageURL(project),
	})
	p.JSONLD = []string{views.ProjectJsonLD(a.siteConfig(), project, cat.Name)}
	return Render(c, views.ProjectDetails(p, project, cat, hasCat))
}

func (a *App) handleAbout(c echo.Context) error {
	st := a.state(c)
	p := a.page(c, views.PageMeta{
		Title:       "About",
		Description: st.Profile.ShortBio,
		URL:         BuildURL(a.Config.URL, "about"),
		OGType:      "profile",
		Image:       st.Profile.AvatarURL,
	})
	p.JSONLD = []string{views.PersonJsonLD(a.siteConfig(), st.Profile)}
	return Render(c, views.About(p, st.Profile))
}

func (a *App) handleContact(c echo.Context) error {
	st := a.state(c)
	p := a.page(c, views.PageMeta{
		Title:       "Contact",
		Description: "Get in touch with " + st.Profile.Name,
		URL:         BuildURL(a.Config.URL, "contact"),
	})
	return Render(c, views.Contact(p, st.Contacts))
}

func (a *App) handleSitemap(c echo.Context) error {
	body, err := a.Cache.Get(cacheKeySitemap, func() ([]byte, error) {
		st := a.Layer.Snapshot()
		return buildSitemap(a.Config.URL, st.Projects)
	})
	if err != nil {
		return err
	}
	return renderXML(c, "application/xml; charset=utf-8", body)
}

func (a *App) handleFeed(c echo.Context) error {
	body, err := a.Cache.Get(cacheKeyFeed, func() ([]byte, error) {
		st := a.Layer.Snapshot()
		return a.buildRSS(st.Projects, st.Categories)
	})
	if err != nil {
		return err
	}
	return renderXML(c, "application/rss+xml; charset=utf-8", body)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /live/\n")
	b.WriteString("\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		p := a.page(c, views.PageMeta{Title: "Not found", NoIndex: true})
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(p))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		p := a.page(c, views.PageMeta{Title: "Error", NoIndex: true})
		_ = RenderStatus(c, code, views.ServerError(p))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
