package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

func (a *App) adminPage(c echo.Context) views.Page {
	// live.js does not reload admin pages, so drafts survive remote changes.
	return a.page(c, views.PageMeta{Title: "Admin", NoIndex: true})
}

func (a *App) renderLogin(c echo.Context, email, errMsg string) error {
	return Render(c, views.AdminLogin(a.adminPage(c), CsrfToken(c), email, errMsg))
}

func (a *App) adminData(c echo.Context, tab string) views.AdminData {
	st := a.state(c)
	d := views.AdminData{
		Tab:  tab,
		CSRF: CsrfToken(c),
		Snapshot: views.AdminSnapshot{
			Projects:   st.Projects,
			Categories: st.Categories,
			Contacts:   st.Contacts,
			Profile:    st.Profile,
			Loading:    st.Loading,
		},
		MaxUpload: maxUploadSize,
	}
	if st.User != nil {
		d.Email = st.User.Email
	}
	if msg := c.QueryParam("msg"); msg != "" {
		d.Flash = views.Flash{Message: msg}
	}
	if msg := c.QueryParam("err"); msg != "" {
		d.Flash = views.Flash{Message: msg, Error: true}
	}
	if tab == views.TabSettings || tab == views.TabProjects {
		uploads, err := a.listUploads(c.Request().Context())
		if err != nil {
			a.Log.Warn().Err(err).Msg("list uploads")
		}
		d.Uploads = uploads
	}
	return d
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return a.renderLogin(c, "", "")
	}
	tab := c.QueryParam("tab")
	if !views.ValidTab(tab) {
		tab = views.TabDashboard
	}
	d := a.adminData(c, tab)
	if tab == views.TabProjects {
		switch {
		case c.QueryParam("new") != "":
			draft := newProjectDraft(d.Snapshot.Categories)
			d.Draft = &draft
		case c.QueryParam("edit") != "":
			p, ok := content.FindProject(d.Snapshot.Projects, c.QueryParam("edit"))
			if !ok {
				d.Flash = views.Flash{Message: "Project not found.", Error: true}
				break
			}
			d.Draft = &views.ProjectDraft{Project: p, NewMediaType: content.MediaImage}
		}
	}
	return Render(c, views.AdminPanel(a.adminPage(c), d))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return a.renderLogin(c, email, "Enter email and password.")
	}
	v := viewerFrom(c)
	if v == nil || !v.Login(c.Request().Context(), email, password) {
		return a.renderLogin(c, email, "Invalid email or password.")
	}
	if err := setAdminSession(c, authSessionFrom(c).Token()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if v := viewerFrom(c); v != nil {
		v.Logout(c.Request().Context())
	}
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleProjectDraft round-trips the project form. Add and remove media
// re-render the draft; save hands it to the live layer.
func (a *App) handleProjectDraft(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	draft := projectDraftFromForm(form)
	action := form.Get("action")
	d := a.adminData(c, views.TabProjects)

	if action == actionSave {
		if draft.Project.Title == "" {
			d.Draft = &draft
			d.Flash = views.Flash{Message: "Title is required.", Error: true}
			return Render(c, views.AdminPanel(a.adminPage(c), d))
		}
		ctx := c.Request().Context()
		if draft.IsNew {
			a.Layer.AddProject(ctx, draft.Project)
		} else {
			a.Layer.UpdateProject(ctx, draft.Project)
		}
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabProjects, "Project saved.", false))
	}

	if msg := applyProjectAction(&draft, action); msg != "" {
		d.Flash = views.Flash{Message: msg, Error: true}
	}
	d.Draft = &draft
	return Render(c, views.AdminPanel(a.adminPage(c), d))
}

func (a *App) handleProjectDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Layer.DeleteProject(c.Request().Context(), c.Param("id"))
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabProjects, "Project deleted.", false))
}

func (a *App) handleCategorySave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	cat := categoryFromForm(form, a.state(c).Categories)
	if cat.Name == "" {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabCategories, "Category name is required.", true))
	}
	ctx := c.Request().Context()
	if cat.ID == "" {
		a.Layer.AddCategory(ctx, cat)
	} else {
		a.Layer.UpdateCategory(ctx, cat)
	}
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabCategories, "Category saved.", false))
}

func (a *App) handleCategoryDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Layer.DeleteCategory(c.Request().Context(), c.Param("id"))
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabCategories, "Category deleted.", false))
}

func (a *App) handleContactSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	contact := contactFromForm(form)
	if contact.Platform == "" {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabContacts, "Platform is required.", true))
	}
	ctx := c.Request().Context()
	if contact.ID == "" {
		a.Layer.AddContact(ctx, contact)
	} else {
		a.Layer.UpdateContact(ctx, contact)
	}
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabContacts, "Contact saved.", false))
}

func (a *App) handleContactDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Layer.DeleteContact(c.Request().Context(), c.Param("id"))
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabContacts, "Contact deleted.", false))
}

func (a *App) handleSettingsSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	profile := a.state(c).Profile
	profile.Name = strings.TrimSpace(c.FormValue("name"))
	profile.Title = strings.TrimSpace(c.FormValue("title"))
	profile.AvatarURL = strings.TrimSpace(c.FormValue("avatar_url"))
	a.Layer.UpdateProfile(c.Request().Context(), profile)
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "Settings saved.", false))
}

// handleAboutDraft round-trips the about form so skills can be added and
// removed before saving.
func (a *App) handleAboutDraft(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	profile, newSkill := aboutDraftFromForm(form, a.state(c).Profile)
	action := form.Get("action")
	if action == actionSave {
		a.Layer.UpdateProfile(c.Request().Context(), profile)
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabAbout, "About saved.", false))
	}
	d := a.adminData(c, views.TabAbout)
	if !applyAboutAction(&profile, action, newSkill) {
		d.NewSkill = newSkill
	}
	d.About = &profile
	return Render(c, views.AdminPanel(a.adminPage(c), d))
}
