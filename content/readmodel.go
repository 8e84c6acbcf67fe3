package content

import (
	"sort"
)

// SortCategories returns a copy of cats ordered by Order. Ties keep their
// original relative position.
func SortCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// ActiveCategories returns the active categories in display order.
func ActiveCategories(cats []Category) []Category {
	var out []Category
	for _, c := range SortCategories(cats) {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a category by id. The bool is false for dangling references.
func Lookup(cats []Category, id string) (Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryName returns the name of the project's category, or "" when the
// category does not exist.
func CategoryName(cats []Category, p Project) string {
	c, ok := Lookup(cats, p.CategoryID)
	if !ok {
		return ""
	}
	return c.Name
}

// Cover returns the media item shown as a project's thumbnail: the item marked
// main, else the first one.
func Cover(p Project) (ProjectMedia, bool) {
	for _, m := range p.Media {
		if m.IsMain {
			return m, true
		}
	}
	if len(p.Media) > 0 {
		return p.Media[0], true
	}
	return ProjectMedia{}, false
}

// SortedMedia returns the gallery order: main items first, otherwise stored
// order.
func SortedMedia(p Project) []ProjectMedia {
	out := make([]ProjectMedia, len(p.Media))
	copy(out, p.Media)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsMain && !out[j].IsMain
	})
	return out
}

// MainImageURL returns the first image of the gallery order, for social
// previews.
func MainImageURL(p Project) string {
	for _, m := range SortedMedia(p) {
		if m.Type == MediaImage {
			return m.URL
		}
	}
	return ""
}

// NormalizeMedia keeps the first item claiming IsMain and clears the flag on
// the others. Missing media ids are generated.
func NormalizeMedia(media []ProjectMedia) []ProjectMedia {
	out := make([]ProjectMedia, len(media))
	seenMain := false
	for i, m := range media {
		if m.ID == "" {
			m.ID = NewID()
		}
		if m.Type == "" {
			m.Type = MediaImage
		}
		if m.IsMain {
			if seenMain {
				m.IsMain = false
			}
			seenMain = true
		}
		out[i] = m
	}
	return out
}

// SetMain marks the item with id as main and clears every sibling.
func SetMain(media []ProjectMedia, id string) []ProjectMedia {
	out := make([]ProjectMedia, len(media))
	for i, m := range media {
		m.IsMain = m.ID == id
		out[i] = m
	}
	return out
}

// FindProject returns the project with id.
func FindProject(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Featured returns featured projects in stored order.
func Featured(projects []Project) []Project {
	var out []Project
	for _, p := range projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// InCategory returns the projects referencing categoryID in stored order.
func InCategory(projects []Project, categoryID string) []Project {
	var out []Project
	for _, p := range projects {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// NewestInCategory returns up to limit projects of a category, newest first.
func NewestInCategory(projects []Project, categoryID string, limit int) []Project {
	out := InCategory(projects, categoryID)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created().After(out[j].Created())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Uncategorized returns the projects whose category does not exist.
func Uncategorized(projects []Project, cats []Category) []Project {
	var out []Project
	for _, p := range projects {
		if _, ok := Lookup(cats, p.CategoryID); !ok {
			out = append(out, p)
		}
	}
	return out
}

// Stats are the admin dashboard counters.
type Stats struct {
	TotalProjects    int
	ActiveCategories int
	FeaturedProjects int
}

// ComputeStats counts the dashboard figures.
func ComputeStats(projects []Project, cats []Category) Stats {
	return Stats{
		TotalProjects:    len(projects),
		ActiveCategories: len(ActiveCategories(cats)),
		FeaturedProjects: len(Featured(projects)),
	}
}
