package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

// projectCard is the thumbnail tile used on home and portfolio. The category
// label is omitted when empty.
func projectCard(p content.Project, categoryName string) templ.Component {
	return component(func(w *htmlWriter) {
		w.rawf(`<a href="%s" class="project-card">`, esc(ProjectPath(p.ID)))
		w.raw(`<div class="card-thumb">`)
		if p.Featured {
			w.raw(`<span class="badge badge-featured">★ Featured</span>`)
		}
		cover, ok := content.Cover(p)
		if src := safeURL(cover.URL); ok && src != "" {
			w.rawf(`<img src="%s" alt="%s" loading="lazy"/>`, src, esc(p.Title))
		} else {
			w.raw(`<div class="card-empty">No Media</div>`)
		}
		if ok && cover.Type == content.MediaVideo {
			w.raw(`<span class="card-kind">▶</span>`)
		}
		w.raw(`<span class="card-overlay">View Details</span></div>`)
		w.raw(`<div class="card-body">`)
		if categoryName != "" {
			w.rawf(`<span class="card-category">%s</span>`, esc(categoryName))
		}
		w.rawf(`<h3 class="card-title">%s</h3>`, esc(p.Title))
		w.rawf(`<p class="card-desc">%s</p>`, esc(p.Description))
		w.raw(`</div></a>`)
	})
}

// Home renders the hero, featured projects and the newest four projects of
// every active category.
func Home(page Page, profile content.Profile, cats []content.Category, projects []content.Project) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<section class="hero"><div class="hero-inner">`)
		w.raw(`<div class="hero-status">Available for Hire</div>`)
		if src := safeURL(profile.AvatarURL); src != "" {
			w.rawf(`<img class="hero-avatar" src="%s" alt="%s" width="120" height="120"/>`, src, esc(profile.Name))
		}
		w.rawf(`<h1 class="hero-title">%s</h1>`, esc(profile.Name))
		w.rawf(`<h2 class="hero-subtitle">%s</h2>`, esc(profile.Title))
		w.rawf(`<p class="hero-bio">%s</p>`, esc(profile.ShortBio))
		w.raw(`<div class="hero-actions"><a href="/portfolio/" class="btn btn-primary">View Portfolio →</a><a href="/about/" class="btn btn-ghost">About Me</a></div>`)
		w.raw(`</div></section>`)

		if featured := content.Featured(projects); len(featured) > 0 {
			w.raw(`<section class="container section"><div class="section-head"><h2>Featured Projects</h2><div class="rule"></div></div><div class="grid grid-3">`)
			for _, p := range featured {
				w.render(projectCard(p, content.CategoryName(cats, p)))
			}
			w.raw(`</div></section>`)
		}

		for _, c := range content.ActiveCategories(cats) {
			newest := content.NewestInCategory(projects, c.ID, 4)
			if len(newest) == 0 {
				continue
			}
			w.rawf(`<section class="container section" id="cat-%s">`, esc(c.ID))
			w.rawf(`<div class="category-head"><h2><span>%s</span> %s</h2><div class="bar"></div></div>`, esc(c.Icon), esc(c.Name))
			w.raw(`<div class="grid grid-4">`)
			for _, p := range newest {
				w.render(projectCard(p, ""))
			}
			w.raw(`</div>`)
			w.rawf(`<div class="section-more"><a href="%s" class="pill-link">View all %s projects →</a></div>`, esc(PortfolioPath(c.ID)), esc(c.Name))
			w.raw(`</section>`)
		}
	})
	return Layout(page, body)
}

// Portfolio lists every active category with its projects, or only the
// filtered category when filterID is set. Projects whose category no longer
// exists are collected under "Uncategorized".
func Portfolio(page Page, cats []content.Category, projects []content.Project, filterID string) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container page-pad"><div class="page-head">`)
		w.raw(`<h1>My Portfolio</h1><p>Explore a collection of my best work across VFX, animation, and programming.</p>`)
		w.raw(`</div>`)

		active := content.ActiveCategories(cats)
		if len(active) > 1 {
			w.raw(`<div class="filter-bar">`)
			w.rawf(`<a href="/portfolio/" class="%s">All</a>`, filterClass(filterID == ""))
			for _, c := range active {
				w.rawf(`<a href="%s" class="%s">%s %s</a>`, esc(PortfolioPath(c.ID)), filterClass(filterID == c.ID), esc(c.Icon), esc(c.Name))
			}
			w.raw(`</div>`)
		}

		shown := 0
		for _, c := range active {
			if filterID != "" && c.ID != filterID {
				continue
			}
			inCat := content.InCategory(projects, c.ID)
			if len(inCat) == 0 {
				continue
			}
			shown++
			w.rawf(`<section class="portfolio-section" id="cat-%s">`, esc(c.ID))
			w.rawf(`<div class="portfolio-head"><span class="icon">%s</span><h2>%s</h2></div>`, esc(c.Icon), esc(c.Name))
			w.raw(`<div class="grid grid-4">`)
			for _, p := range inCat {
				w.render(projectCard(p, ""))
			}
			w.raw(`</div></section>`)
		}

		if filterID == "" {
			if orphans := content.Uncategorized(projects, cats); len(orphans) > 0 {
				shown++
				w.raw(`<section class="portfolio-section" id="cat-uncategorized">`)
				w.raw(`<div class="portfolio-head"><span class="icon">•</span><h2>Uncategorized</h2></div>`)
				w.raw(`<div class="grid grid-4">`)
				for _, p := range orphans {
					w.render(projectCard(p, ""))
				}
				w.raw(`</div></section>`)
			}
		}

		if shown == 0 {
			w.raw(`<p class="empty">No projects to show yet.</p>`)
		}
		w.raw(`</div>`)
	})
	return Layout(page, body)
}

func filterClass(active bool) string {
	if active {
		return "filter active"
	}
	return "filter"
}

// ProjectDetails renders one project with its gallery, main media first.
func ProjectDetails(page Page, p content.Project, cat content.Category, hasCategory bool) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container narrow page-pad">`)
		w.raw(`<a href="/portfolio/" class="back-link">← Back</a>`)
		w.raw(`<div class="panel project-header"><div class="project-meta">`)
		if hasCategory {
			w.rawf(`<span class="badge badge-category">%s %s</span>`, esc(cat.Icon), esc(cat.Name))
		}
		if d := FormatDate(p.CreatedAt); d != "" {
			w.rawf(`<time datetime="%s" class="project-date">%s</time>`, esc(p.CreatedAt), esc(d))
		}
		w.raw(`</div>`)
		w.rawf(`<h1>%s</h1>`, esc(p.Title))
		w.rawf(`<p class="lead">%s</p>`, esc(p.Description))
		if p.DescriptionDetailed != "" {
			w.raw(`<div class="project-detail"><h3>About the Project</h3>`)
			w.render(RichText(p.DescriptionDetailed))
			w.raw(`</div>`)
		}
		w.raw(`</div>`)

		w.raw(`<h3 class="gallery-title">Gallery</h3><div class="gallery">`)
		for _, m := range content.SortedMedia(p) {
			w.rawf(`<figure class="gallery-item" data-media-id="%s"><div class="media-frame">`, esc(m.ID))
			w.render(mediaElement(m, p.Title))
			w.raw(`</div>`)
			if m.Description != "" {
				w.rawf(`<figcaption>%s</figcaption>`, esc(m.Description))
			}
			w.raw(`</figure>`)
		}
		w.raw(`</div></div>`)
	})
	return Layout(page, body)
}

func mediaElement(m content.ProjectMedia, title string) templ.Component {
	return component(func(w *htmlWriter) {
		if m.Type == content.MediaVideo {
			if embed, ok := EmbedURL(m.URL); ok {
				w.rawf(`<iframe src="%s" title="Video player" allowfullscreen loading="lazy"></iframe>`, esc(embed))
				return
			}
			if src := safeURL(m.URL); src != "" {
				w.rawf(`<video controls><source src="%s"/>Your browser does not support video.</video>`, src)
			}
			return
		}
		src := safeURL(m.URL)
		if src == "" {
			return
		}
		alt := m.Description
		if alt == "" {
			alt = title
		}
		w.rawf(`<img src="%s" alt="%s"/>`, src, esc(alt))
	})
}

// About renders the full bio, experience and skills.
func About(page Page, profile content.Profile) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container narrow page-pad"><h1 class="center">About Me</h1><div class="bar center"></div>`)
		w.raw(`<div class="panel">`)
		w.raw(`<section class="about-block"><h2>Biography</h2>`)
		w.render(RichText(profile.FullBio))
		w.raw(`</section>`)
		w.raw(`<section class="about-block"><h2>Experience</h2>`)
		w.rawf(`<p>%s years of experience</p>`, strconv.Itoa(profile.ExperienceYears))
		w.raw(`</section>`)
		w.raw(`<section class="about-block"><h2>Skills</h2><div class="skills">`)
		for _, s := range profile.Skills {
			w.rawf(`<span class="skill">%s</span>`, esc(s))
		}
		w.raw(`</div></section></div></div>`)
	})
	return Layout(page, body)
}

// Contact renders one card per contact in store order.
func Contact(page Page, contacts []content.Contact) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container narrow page-pad center"><h1>Get in Touch</h1><p class="lead">Let's create something amazing together!</p>`)
		w.raw(`<div class="grid grid-2 contacts">`)
		for _, c := range contacts {
			icon := ContactIcon(c.Platform)
			href := safeURL(c.Link)
			if href == "" {
				href = "#"
			}
			w.rawf(`<a href="%s" target="_blank" rel="noopener noreferrer" class="contact-card" data-icon="%s">`, href, icon)
			w.rawf(`<span class="contact-icon icon-%s">%s</span>`, icon, contactGlyphs[icon])
			w.rawf(`<span class="contact-text"><strong>%s</strong><span>%s</span></span>`, esc(c.Platform), esc(c.Username))
			w.raw(`<span class="contact-out">↗</span></a>`)
		}
		w.raw(`</div></div>`)
	})
	return Layout(page, body)
}

// ProjectNotFound is the 404 body for an unknown project id.
func ProjectNotFound(page Page) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container center page-pad error-page"><h2>Project not found</h2>`)
		w.raw(`<a href="/portfolio/" class="btn btn-primary">Back to Portfolio</a></div>`)
	})
	return Layout(page, body)
}

// NotFound is the generic 404 page.
func NotFound(page Page) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container center page-pad error-page"><h1>404</h1><p>This page does not exist.</p>`)
		w.raw(`<a href="/" class="btn btn-primary">Go home</a></div>`)
	})
	return Layout(page, body)
}

// ServerError is the generic 5xx page.
func ServerError(page Page) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<div class="container center page-pad error-page"><h1>Something went wrong</h1><p>Please try again in a moment.</p>`)
		w.raw(`<a href="/" class="btn btn-primary">Go home</a></div>`)
	})
	return Layout(page, body)
}
