package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

// Admin tabs, in display order.
const (
	TabDashboard  = "dashboard"
	TabProjects   = "projects"
	TabCategories = "categories"
	TabSettings   = "settings"
	TabAbout      = "about"
	TabContacts   = "contacts"
)

var adminTabs = []struct {
	ID    string
	Label string
}{
	{TabDashboard, "Dashboard"},
	{TabProjects, "Projects"},
	{TabCategories, "Categories"},
	{TabSettings, "Settings"},
	{TabAbout, "About"},
	{TabContacts, "Contacts"},
}

// ValidTab reports whether tab names an admin tab.
func ValidTab(tab string) bool {
	for _, t := range adminTabs {
		if t.ID == tab {
			return true
		}
	}
	return false
}

// ProjectDraft is a project being edited in the admin form. It round-trips
// through the draft endpoint until saved.
type ProjectDraft struct {
	Project content.Project
	IsNew   bool
	// New media row, kept when validation fails.
	NewMediaURL  string
	NewMediaType content.MediaType
	NewMediaDesc string
}

// AdminData is everything the admin panel renders.
type AdminData struct {
	Tab       string
	CSRF      string
	Email     string
	Flash     Flash
	Snapshot  AdminSnapshot
	Draft     *ProjectDraft
	About     *content.Profile
	NewSkill  string
	Uploads   []content.Upload
	MaxUpload int64
}

// AdminSnapshot is the subset of live state the panel needs.
type AdminSnapshot struct {
	Projects   []content.Project
	Categories []content.Category
	Contacts   []content.Contact
	Profile    content.Profile
	Loading    bool
}

// AdminLogin renders the sign-in form. errMsg is shown above the form when
// set.
func AdminLogin(page Page, csrf, email, errMsg string) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container login-wrap"><div class="panel login-panel">`)
		w.raw(`<h1>Admin Login</h1>`)
		if errMsg != "" {
			w.rawf(`<div class="alert alert-error" role="alert">%s</div>`, esc(errMsg))
		}
		w.raw(`<form method="post" action="/admin/login/" class="form">`)
		w.render(csrfField(csrf))
		w.rawf(`<label>Email<input type="email" name="email" value="%s" autocomplete="username"/></label>`, esc(email))
		w.raw(`<label>Password<input type="password" name="password" autocomplete="current-password"/></label>`)
		w.raw(`<button type="submit" class="btn btn-primary">Login</button>`)
		w.raw(`</form></div></div>`)
	})
	return Layout(page, body)
}

// AdminPanel renders the authenticated panel with the selected tab.
func AdminPanel(page Page, d AdminData) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container admin">`)
		w.raw(`<div class="admin-head"><h1>Admin Panel</h1>`)
		w.raw(`<form method="post" action="/admin/logout/">`)
		w.render(csrfField(d.CSRF))
		w.rawf(`<span class="admin-user">%s</span><button type="submit" class="btn btn-ghost">Logout</button></form></div>`, esc(d.Email))

		w.raw(`<div class="tabs">`)
		for _, t := range adminTabs {
			class := "tab"
			if t.ID == d.Tab {
				class += " active"
			}
			w.rawf(`<a href="/admin/?tab=%s" class="%s">%s</a>`, t.ID, class, t.Label)
		}
		w.raw(`</div>`)

		if d.Flash.Message != "" {
			class := "alert alert-ok"
			if d.Flash.Error {
				class = "alert alert-error"
			}
			w.rawf(`<div class="%s" role="status">%s</div>`, class, esc(d.Flash.Message))
		}
		if d.Snapshot.Loading {
			w.raw(`<p class="muted">Loading…</p>`)
		}

		switch d.Tab {
		case TabProjects:
			w.render(adminProjects(d))
		case TabCategories:
			w.render(adminCategories(d))
		case TabSettings:
			w.render(adminSettings(d))
		case TabAbout:
			w.render(adminAbout(d))
		case TabContacts:
			w.render(adminContacts(d))
		default:
			w.render(adminDashboard(d))
		}
		w.raw(`</div>`)
	})
	return Layout(page, body)
}

func csrfField(token string) templ.Component {
	return component(func(w *htmlWriter) {
		w.rawf(`<input type="hidden" name="_csrf" value="%s"/>`, esc(token))
	})
}

func deleteButton(action, csrf, confirm string) templ.Component {
	return component(func(w *htmlWriter) {
		w.rawf(`<form method="post" action="%s" class="inline" data-confirm="%s">`, esc(action), esc(confirm))
		w.render(csrfField(csrf))
		w.raw(`<input type="hidden" name="_method" value="DELETE"/><button type="submit" class="btn btn-danger">Delete</button></form>`)
	})
}

func adminDashboard(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		stats := content.ComputeStats(d.Snapshot.Projects, d.Snapshot.Categories)
		w.raw(`<div class="grid grid-3 stats">`)
		w.rawf(`<div class="stat"><span class="stat-label">Total Projects</span><span class="stat-value">%d</span></div>`, stats.TotalProjects)
		w.rawf(`<div class="stat"><span class="stat-label">Active Categories</span><span class="stat-value">%d</span></div>`, stats.ActiveCategories)
		w.rawf(`<div class="stat"><span class="stat-label">Featured Projects</span><span class="stat-value">%d</span></div>`, stats.FeaturedProjects)
		w.raw(`</div>`)
		w.raw(`<div class="quick-links"><a href="/admin/?tab=projects&amp;new=1" class="btn btn-primary">Add New Project</a>`)
		w.raw(`<a href="/" class="btn btn-ghost" target="_blank">View Site</a></div>`)
	})
}

func adminProjects(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		if d.Draft != nil {
			w.render(projectForm(d))
			return
		}
		w.raw(`<div class="tab-head"><h2>Projects</h2><a href="/admin/?tab=projects&amp;new=1" class="btn btn-primary">Add New Project</a></div>`)
		if len(d.Snapshot.Projects) == 0 {
			w.raw(`<p class="empty">No projects yet.</p>`)
			return
		}
		w.raw(`<table class="admin-table"><thead><tr><th>Title</th><th>Category</th><th>Media</th><th>Featured</th><th></th></tr></thead><tbody>`)
		for _, p := range d.Snapshot.Projects {
			w.rawf(`<tr><td>%s</td><td>%s</td><td>%d</td>`, esc(p.Title), esc(content.CategoryName(d.Snapshot.Categories, p)), len(p.Media))
			star := ""
			if p.Featured {
				star = "★"
			}
			w.rawf(`<td>%s</td><td class="actions">`, star)
			w.rawf(`<a href="/admin/?tab=projects&amp;edit=%s" class="btn btn-ghost">Edit</a>`, esc(p.ID))
			w.render(deleteButton("/admin/projects/"+p.ID+"/", d.CSRF, "Delete this project?"))
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table>`)
	})
}

func projectForm(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		dr := d.Draft
		p := dr.Project
		heading := "Edit Project"
		if dr.IsNew {
			heading = "New Project"
		}
		w.rawf(`<h2>%s</h2>`, heading)
		w.raw(`<form method="post" action="/admin/projects/draft/" class="form project-form">`)
		w.render(csrfField(d.CSRF))
		w.rawf(`<input type="hidden" name="id" value="%s"/>`, esc(p.ID))
		w.rawf(`<input type="hidden" name="created_at" value="%s"/>`, esc(p.CreatedAt))
		if dr.IsNew {
			w.raw(`<input type="hidden" name="is_new" value="1"/>`)
		}
		w.rawf(`<label>Title<input type="text" name="title" value="%s"/></label>`, esc(p.Title))
		w.raw(`<label>Category<select name="category_id">`)
		for _, c := range content.SortCategories(d.Snapshot.Categories) {
			w.rawf(`<option value="%s"%s>%s %s</option>`, esc(c.ID), selected(c.ID == p.CategoryID), esc(c.Icon), esc(c.Name))
		}
		if _, ok := content.Lookup(d.Snapshot.Categories, p.CategoryID); !ok && p.CategoryID != "" {
			w.rawf(`<option value="%s" selected>(missing category)</option>`, esc(p.CategoryID))
		}
		w.raw(`</select></label>`)
		w.rawf(`<label>Short Description<input type="text" name="description" value="%s"/></label>`, esc(p.Description))
		w.rawf(`<label>Detailed Description<textarea name="description_detailed" rows="8">%s</textarea></label>`, esc(p.DescriptionDetailed))
		w.rawf(`<label class="check"><input type="checkbox" name="featured" value="1"%s/> Featured</label>`, checked(p.Featured))

		w.raw(`<fieldset class="media-list"><legend>Media</legend>`)
		for _, m := range p.Media {
			w.raw(`<div class="media-row">`)
			w.rawf(`<input type="hidden" name="media_id" value="%s"/>`, esc(m.ID))
			w.rawf(`<input type="text" name="media_url" value="%s" placeholder="URL"/>`, esc(m.URL))
			w.render(mediaTypeSelect("media_type", m.Type))
			w.rawf(`<input type="text" name="media_desc" value="%s" placeholder="Description"/>`, esc(m.Description))
			w.rawf(`<label class="check"><input type="radio" name="main" value="%s"%s/> Main</label>`, esc(m.ID), checked(m.IsMain))
			w.rawf(`<button type="submit" name="action" value="remove_media:%s" class="btn btn-danger">Remove</button>`, esc(m.ID))
			w.raw(`</div>`)
		}
		w.raw(`<div class="media-row media-new">`)
		w.rawf(`<input type="text" name="new_media_url" value="%s" placeholder="Media URL"/>`, esc(dr.NewMediaURL))
		w.render(mediaTypeSelect("new_media_type", dr.NewMediaType))
		w.rawf(`<input type="text" name="new_media_desc" value="%s" placeholder="Description"/>`, esc(dr.NewMediaDesc))
		w.raw(`<button type="submit" name="action" value="add_media" class="btn btn-ghost">Add Media</button>`)
		w.raw(`</div></fieldset>`)
		if len(d.Uploads) > 0 {
			w.raw(`<details class="upload-picker"><summary>Uploaded images</summary><ul>`)
			for _, u := range d.Uploads {
				w.rawf(`<li><code>%s</code></li>`, esc(u.URL()))
			}
			w.raw(`</ul></details>`)
		}

		w.raw(`<div class="form-actions"><button type="submit" name="action" value="save" class="btn btn-primary">Save Project</button>`)
		w.raw(`<a href="/admin/?tab=projects" class="btn btn-ghost">Cancel</a></div>`)
		w.raw(`</form>`)
	})
}

func mediaTypeSelect(name string, current content.MediaType) templ.Component {
	return component(func(w *htmlWriter) {
		w.rawf(`<select name="%s">`, name)
		for _, t := range []content.MediaType{content.MediaImage, content.MediaVideo, content.MediaGIF} {
			w.rawf(`<option value="%s"%s>%s</option>`, t, selected(t == current), t)
		}
		w.raw(`</select>`)
	})
}

func adminCategories(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		cats := content.SortCategories(d.Snapshot.Categories)
		w.raw(`<h2>Categories</h2>`)
		for _, c := range cats {
			w.render(categoryForm(d.CSRF, c, false))
		}
		w.raw(`<h3>Add Category</h3>`)
		w.render(categoryForm(d.CSRF, content.Category{Active: true, Order: len(cats) + 1}, true))
	})
}

func categoryForm(csrf string, c content.Category, isNew bool) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<div class="row-form">`)
		w.raw(`<form method="post" action="/admin/categories/" class="form inline-form">`)
		w.render(csrfField(csrf))
		w.rawf(`<input type="hidden" name="id" value="%s"/>`, esc(c.ID))
		w.rawf(`<input type="text" name="icon" value="%s" placeholder="Icon" class="narrow-input"/>`, esc(c.Icon))
		w.rawf(`<input type="text" name="name" value="%s" placeholder="Name"/>`, esc(c.Name))
		w.rawf(`<input type="number" name="order" value="%d" class="narrow-input"/>`, c.Order)
		w.rawf(`<label class="check"><input type="checkbox" name="active" value="1"%s/> Active</label>`, checked(c.Active))
		label := "Save"
		if isNew {
			label = "Add"
		}
		w.rawf(`<button type="submit" class="btn btn-primary">%s</button></form>`, label)
		if !isNew {
			w.render(deleteButton("/admin/categories/"+c.ID+"/", csrf, "Delete this category? Its projects are kept."))
		}
		w.raw(`</div>`)
	})
}

func adminSettings(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		p := d.Snapshot.Profile
		w.raw(`<h2>Profile Settings</h2>`)
		w.raw(`<form method="post" action="/admin/settings/" class="form">`)
		w.render(csrfField(d.CSRF))
		w.rawf(`<label>Name<input type="text" name="name" value="%s"/></label>`, esc(p.Name))
		w.rawf(`<label>Title<input type="text" name="title" value="%s"/></label>`, esc(p.Title))
		w.rawf(`<label>Avatar URL<input type="text" name="avatar_url" value="%s"/></label>`, esc(p.AvatarURL))
		if src := safeURL(p.AvatarURL); src != "" {
			w.rawf(`<img src="%s" alt="Avatar preview" class="avatar-preview" width="96" height="96"/>`, src)
		}
		w.raw(`<button type="submit" class="btn btn-primary">Save Settings</button></form>`)

		w.raw(`<h2>Uploads</h2>`)
		w.raw(`<form method="post" action="/admin/uploads/" enctype="multipart/form-data" class="form inline-form">`)
		w.render(csrfField(d.CSRF))
		w.raw(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif,image/webp"/>`)
		w.raw(`<button type="submit" class="btn btn-primary">Upload</button></form>`)
		if d.MaxUpload > 0 {
			w.rawf(`<p class="muted">Max %s MB. Large images are resized.</p>`, strconv.FormatInt(d.MaxUpload>>20, 10))
		}
		if len(d.Uploads) == 0 {
			w.raw(`<p class="empty">No uploads yet.</p>`)
			return
		}
		w.raw(`<div class="grid grid-4 uploads">`)
		for _, u := range d.Uploads {
			w.raw(`<figure class="upload">`)
			w.rawf(`<img src="%s" alt="%s" loading="lazy"/>`, esc(u.URL()), esc(u.OriginalName))
			w.rawf(`<figcaption><code>%s</code><span>%d×%d</span></figcaption>`, esc(u.URL()), u.Width, u.Height)
			w.render(deleteButton("/admin/uploads/"+u.Filename+"/", d.CSRF, "Delete this upload?"))
			w.raw(`</figure>`)
		}
		w.raw(`</div>`)
	})
}

func adminAbout(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		p := d.Snapshot.Profile
		if d.About != nil {
			p = *d.About
		}
		w.raw(`<h2>About</h2>`)
		w.raw(`<form method="post" action="/admin/about/draft/" class="form">`)
		w.render(csrfField(d.CSRF))
		w.rawf(`<label>Years of Experience<input type="number" name="experience_years" min="0" value="%d"/></label>`, p.ExperienceYears)
		w.rawf(`<label>Short Bio<textarea name="short_bio" rows="3">%s</textarea></label>`, esc(p.ShortBio))
		w.rawf(`<label>Full Bio<textarea name="full_bio" rows="10">%s</textarea></label>`, esc(p.FullBio))
		w.raw(`<fieldset class="skills-edit"><legend>Skills</legend>`)
		for i, s := range p.Skills {
			w.rawf(`<span class="skill"><input type="hidden" name="skill" value="%s"/>%s`, esc(s), esc(s))
			w.rawf(`<button type="submit" name="action" value="remove_skill:%d" class="skill-remove" aria-label="Remove">×</button></span>`, i)
		}
		w.rawf(`<div class="inline-form"><input type="text" name="new_skill" value="%s" placeholder="New skill"/>`, esc(d.NewSkill))
		w.raw(`<button type="submit" name="action" value="add_skill" class="btn btn-ghost">Add</button></div>`)
		w.raw(`</fieldset>`)
		w.raw(`<button type="submit" name="action" value="save" class="btn btn-primary">Save About</button></form>`)
	})
}

func adminContacts(d AdminData) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<h2>Contacts</h2>`)
		for _, c := range d.Snapshot.Contacts {
			w.render(contactForm(d.CSRF, c, false))
		}
		w.raw(`<h3>Add Contact</h3>`)
		w.render(contactForm(d.CSRF, content.Contact{}, true))
	})
}

func contactForm(csrf string, c content.Contact, isNew bool) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<div class="row-form">`)
		w.raw(`<form method="post" action="/admin/contacts/" class="form inline-form">`)
		w.render(csrfField(csrf))
		w.rawf(`<input type="hidden" name="id" value="%s"/>`, esc(c.ID))
		w.rawf(`<span class="contact-icon icon-%s">%s</span>`, ContactIcon(c.Platform), contactGlyphs[ContactIcon(c.Platform)])
		w.rawf(`<input type="text" name="platform" value="%s" placeholder="Platform"/>`, esc(c.Platform))
		w.rawf(`<input type="text" name="username" value="%s" placeholder="Username"/>`, esc(c.Username))
		w.rawf(`<input type="text" name="link" value="%s" placeholder="Link"/>`, esc(c.Link))
		label := "Save"
		if isNew {
			label = "Add"
		}
		w.rawf(`<button type="submit" class="btn btn-primary">%s</button></form>`, label)
		if !isNew {
			w.render(deleteButton("/admin/contacts/"+c.ID+"/", csrf, "Delete this contact?"))
		}
		w.raw(`</div>`)
	})
}
