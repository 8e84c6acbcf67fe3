package views

import (
	"encoding/json"
	"html"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/folio/content"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// ProjectPath is the public path of a project detail page.
func ProjectPath(id string) string {
	return "/project/" + url.PathEscape(id) + "/"
}

// PortfolioPath is the portfolio path, filtered to one category when id is set.
func PortfolioPath(categoryID string) string {
	if categoryID == "" {
		return "/portfolio/"
	}
	return "/portfolio/?cat=" + url.QueryEscape(categoryID)
}

// ContactIcon picks the icon for a platform label by case-insensitive match.
func ContactIcon(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	switch {
	case strings.Contains(p, "instagram"):
		return "instagram"
	case strings.Contains(p, "twitter"), p == "x":
		return "twitter"
	case strings.Contains(p, "discord"):
		return "discord"
	case strings.Contains(p, "whatsapp"), strings.Contains(p, "phone"):
		return "phone"
	case strings.Contains(p, "mail"):
		return "mail"
	default:
		return "link"
	}
}

var contactGlyphs = map[string]string{
	"instagram": "◎",
	"twitter":   "𝕏",
	"discord":   "☏",
	"phone":     "✆",
	"mail":      "✉",
	"link":      "↗",
}

// EmbedURL rewrites a YouTube or Vimeo page URL into its embeddable player
// URL. It reports false for any other video.
func EmbedURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch {
	case host == "youtube.com" || host == "m.youtube.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			return u.String(), true
		}
		if v := u.Query().Get("v"); v != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(v), true
		}
	case host == "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id), true
		}
	case host == "vimeo.com":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://player.vimeo.com/video/" + url.PathEscape(id), true
		}
	case host == "player.vimeo.com":
		return u.String(), true
	}
	return "", false
}

// FormatDate renders an RFC 3339 timestamp as a short date.
func FormatDate(createdAt string) string {
	t := content.Project{CreatedAt: createdAt}.Created()
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// PersonJsonLD describes the artist behind the site.
func PersonJsonLD(cfg SiteConfig, p content.Profile) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Person",
		"name":        p.Name,
		"jobTitle":    p.Title,
		"description": p.ShortBio,
		"url":         buildURL(cfg.URL, "about"),
	}
	if p.AvatarURL != "" {
		data["image"] = p.AvatarURL
	}
	if len(p.Skills) > 0 {
		data["knowsAbout"] = p.Skills
	}
	return marshalJsonLD(data)
}

// ProjectJsonLD produces a Schema.org CreativeWork block for a project.
func ProjectJsonLD(cfg SiteConfig, p content.Project, category string) string {
	pageURL := buildURL(cfg.URL, "project", p.ID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "CreativeWork",
		"name":        p.Title,
		"description": p.Description,
		"url":         pageURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   pageURL,
		},
	}
	if p.CreatedAt != "" {
		data["dateCreated"] = p.CreatedAt
	}
	if img := content.MainImageURL(p); img != "" {
		data["image"] = img
	}
	if category != "" {
		data["genre"] = category
	}
	if cfg.Author != "" {
		data["creator"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// safeURL returns the escaped URL when it is relative or uses a web scheme,
// and "" otherwise.
func safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
