package folio

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

// Draft form actions. Buttons post one of these as "action"; the remove
// actions carry the item after a colon.
const (
	actionSave        = "save"
	actionAddMedia    = "add_media"
	actionRemoveMedia = "remove_media:"
	actionAddSkill    = "add_skill"
	actionRemoveSkill = "remove_skill:"
)

func formValue(form url.Values, key string, i int) string {
	vals := form[key]
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

// projectDraftFromForm rebuilds the project draft posted by the admin form.
// Media rows arrive as parallel media_* fields; the "main" radio names the
// main item by id.
func projectDraftFromForm(form url.Values) views.ProjectDraft {
	p := content.Project{
		ID:                  strings.TrimSpace(form.Get("id")),
		Title:               strings.TrimSpace(form.Get("title")),
		CategoryID:          form.Get("category_id"),
		Description:         strings.TrimSpace(form.Get("description")),
		DescriptionDetailed: strings.TrimRight(form.Get("description_detailed"), " \r\n\t"),
		Featured:            form.Get("featured") != "",
		CreatedAt:           form.Get("created_at"),
	}
	main := form.Get("main")
	for i, id := range form["media_id"] {
		p.Media = append(p.Media, content.ProjectMedia{
			ID:          id,
			URL:         strings.TrimSpace(formValue(form, "media_url", i)),
			Type:        content.ParseMediaType(formValue(form, "media_type", i)),
			Description: strings.TrimSpace(formValue(form, "media_desc", i)),
		})
	}
	if main != "" {
		p.Media = content.SetMain(p.Media, main)
	}
	return views.ProjectDraft{
		Project:      p,
		IsNew:        form.Get("is_new") != "",
		NewMediaURL:  strings.TrimSpace(form.Get("new_media_url")),
		NewMediaType: content.ParseMediaType(form.Get("new_media_type")),
		NewMediaDesc: strings.TrimSpace(form.Get("new_media_desc")),
	}
}

// applyProjectAction edits the draft in place for the add and remove media
// buttons. It returns a validation message when the action was refused.
func applyProjectAction(d *views.ProjectDraft, action string) string {
	switch {
	case action == actionAddMedia:
		if d.NewMediaURL == "" {
			return "Media URL is required."
		}
		d.Project.Media = append(d.Project.Media, content.ProjectMedia{
			ID:          content.NewID(),
			URL:         d.NewMediaURL,
			Type:        d.NewMediaType,
			Description: d.NewMediaDesc,
			IsMain:      len(d.Project.Media) == 0,
		})
		d.NewMediaURL, d.NewMediaType, d.NewMediaDesc = "", content.MediaImage, ""
	case strings.HasPrefix(action, actionRemoveMedia):
		id := strings.TrimPrefix(action, actionRemoveMedia)
		d.Project.Media = slices.DeleteFunc(d.Project.Media, func(m content.ProjectMedia) bool {
			return m.ID == id
		})
	}
	return ""
}

// newProjectDraft is the empty form. The category defaults to the first one
// in display order.
func newProjectDraft(cats []content.Category) views.ProjectDraft {
	p := content.Project{}
	if sorted := content.SortCategories(cats); len(sorted) > 0 {
		p.CategoryID = sorted[0].ID
	}
	return views.ProjectDraft{Project: p, IsNew: true, NewMediaType: content.MediaImage}
}

// aboutDraftFromForm overlays the posted about fields on base.
func aboutDraftFromForm(form url.Values, base content.Profile) (content.Profile, string) {
	p := base
	p.ExperienceYears = max(formInt(form.Get("experience_years"), base.ExperienceYears), 0)
	p.ShortBio = strings.TrimSpace(form.Get("short_bio"))
	p.FullBio = strings.TrimRight(form.Get("full_bio"), " \r\n\t")
	p.Skills = FilterEmpty(form["skill"])
	return p, strings.TrimSpace(form.Get("new_skill"))
}

// applyAboutAction adds or removes a skill. It reports whether newSkill was
// consumed.
func applyAboutAction(p *content.Profile, action, newSkill string) bool {
	switch {
	case action == actionAddSkill:
		if newSkill == "" || slices.Contains(p.Skills, newSkill) {
			return false
		}
		p.Skills = append(p.Skills, newSkill)
		return true
	case strings.HasPrefix(action, actionRemoveSkill):
		i, err := strconv.Atoi(strings.TrimPrefix(action, actionRemoveSkill))
		if err == nil && i >= 0 && i < len(p.Skills) {
			p.Skills = slices.Delete(slices.Clone(p.Skills), i, i+1)
		}
	}
	return false
}

// categoryFromForm reads the category form. A blank or malformed order keeps
// the stored order of an existing category and appends a new one at the end.
func categoryFromForm(form url.Values, cats []content.Category) content.Category {
	id := strings.TrimSpace(form.Get("id"))
	fallback := len(cats) + 1
	if cur, ok := content.Lookup(cats, id); ok && id != "" {
		fallback = cur.Order
	}
	return content.Category{
		ID:     id,
		Name:   strings.TrimSpace(form.Get("name")),
		Icon:   strings.TrimSpace(form.Get("icon")),
		Active: form.Get("active") != "",
		Order:  formInt(form.Get("order"), fallback),
	}
}

func contactFromForm(form url.Values) content.Contact {
	return content.Contact{
		ID:       strings.TrimSpace(form.Get("id")),
		Platform: strings.TrimSpace(form.Get("platform")),
		Username: strings.TrimSpace(form.Get("username")),
		Link:     strings.TrimSpace(form.Get("link")),
	}
}
