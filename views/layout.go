package views

import (
	"strings"

	"github.com/a-h/templ"
)

var navLinks = []struct {
	Name string
	Path string
}{
	{"Home", "/"},
	{"Portfolio", "/portfolio/"},
	{"About", "/about/"},
	{"Contact", "/contact/"},
}

func pageTitle(p Page) string {
	if p.Meta.Title == "" {
		return p.Site.Name
	}
	return p.Meta.Title + " | " + p.Site.Name
}

// Layout wraps body in the document shell: head metadata, navbar, the
// decorative background and the footer.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(w *htmlWriter) {
		title := pageTitle(p)
		desc := p.Meta.Description
		if desc == "" {
			desc = p.Site.Description
		}
		canonical := p.Meta.URL
		if canonical == "" {
			canonical = buildURL(p.Site.URL)
		}
		ogType := p.Meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		image := p.Meta.Image
		if image == "" {
			image = p.Site.Image
		}

		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		w.rawf(`<title>%s</title>`, esc(title))
		w.rawf(`<meta name="description" content="%s"/>`, esc(desc))
		if p.Meta.NoIndex {
			w.raw(`<meta name="robots" content="noindex, nofollow"/>`)
		}
		w.rawf(`<link rel="canonical" href="%s"/>`, esc(canonical))
		w.rawf(`<meta property="og:type" content="%s"/>`, esc(ogType))
		w.rawf(`<meta property="og:url" content="%s"/>`, esc(canonical))
		w.rawf(`<meta property="og:title" content="%s"/>`, esc(title))
		w.rawf(`<meta property="og:description" content="%s"/>`, esc(desc))
		w.raw(`<meta name="twitter:card" content="summary_large_image"/>`)
		w.rawf(`<meta name="twitter:url" content="%s"/>`, esc(canonical))
		w.rawf(`<meta name="twitter:title" content="%s"/>`, esc(title))
		w.rawf(`<meta name="twitter:description" content="%s"/>`, esc(desc))
		if image != "" {
			w.rawf(`<meta property="og:image" content="%s"/>`, esc(image))
			w.rawf(`<meta name="twitter:image" content="%s"/>`, esc(image))
		}
		w.raw(`<link rel="alternate" type="application/rss+xml" title="Projects" href="/feed.xml"/>`)
		w.raw(`<link rel="stylesheet" href="/public/folio.css"/>`)
		for _, ld := range p.JSONLD {
			w.rawf(`<script type="application/ld+json">%s</script>`, ld)
		}
		if p.Live {
			w.raw(`<script src="/public/live.js" defer></script>`)
		}
		w.raw(`</head><body>`)
		w.raw(`<div class="bg-layer" aria-hidden="true"><div class="bg-glow"></div><div class="bg-grid"></div></div>`)
		w.render(navbar(p))
		w.raw(`<main class="page">`)
		w.render(body)
		w.raw(`</main>`)
		w.render(footer(p))
		w.raw(`</body></html>`)
	})
}

func navbar(p Page) templ.Component {
	return component(func(w *htmlWriter) {
		name := p.Profile.Name
		if name == "" {
			name = p.Site.Name
		}
		initial := ""
		if r := []rune(name); len(r) > 0 {
			initial = strings.ToUpper(string(r[0]))
		}
		w.raw(`<nav class="navbar"><div class="container nav-inner">`)
		w.rawf(`<a href="/" class="brand"><span class="brand-mark">%s</span><span class="brand-name">%s</span></a>`, esc(initial), esc(name))
		w.raw(`<input type="checkbox" id="nav-toggle" class="nav-toggle" aria-label="Menu"/><label for="nav-toggle" class="nav-burger">☰</label>`)
		w.raw(`<div class="nav-links">`)
		for _, l := range navLinks {
			class := "nav-link"
			if l.Path == p.Path {
				class += " active"
			}
			w.rawf(`<a href="%s" class="%s">%s</a>`, l.Path, class, esc(l.Name))
		}
		w.raw(`<a href="/admin/" class="nav-link nav-admin" title="Admin Panel">Admin</a>`)
		w.raw(`</div></div></nav>`)
	})
}

func footer(p Page) templ.Component {
	return component(func(w *htmlWriter) {
		name := p.Profile.Name
		if name == "" {
			name = p.Site.Name
		}
		w.raw(`<footer class="footer"><div class="container">`)
		w.rawf(`<p>%s · %s</p>`, esc(name), esc(p.Profile.Title))
		w.raw(`<p class="footer-links"><a href="/feed.xml">RSS</a> · <a href="/sitemap.xml">Sitemap</a></p>`)
		w.raw(`</div></footer>`)
	})
}
