package views

import "github.com/eringen/folio/content"

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Portfolio")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
	Image       string // default og:image
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	NoIndex     bool
}

// Page is everything the shell needs around a page body.
type Page struct {
	Site    SiteConfig
	Meta    PageMeta
	Path    string // request path, marks the active nav link
	Profile content.Profile
	JSONLD  []string
	Live    bool // include the live-reload script
}

// Flash is a one-line status message shown above admin forms.
type Flash struct {
	Message string
	Error   bool
}
