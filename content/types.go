// Package content holds the portfolio's domain records and the pure helpers
// the pages use to read them: ordering, cover selection, category lookups and
// the default seed bundle.
package content

import (
	"time"

	"github.com/google/uuid"
)

// MediaType is the kind of a project media item.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// ParseMediaType maps a form value to a MediaType, defaulting to image.
func ParseMediaType(s string) MediaType {
	switch MediaType(s) {
	case MediaVideo:
		return MediaVideo
	case MediaGIF:
		return MediaGIF
	default:
		return MediaImage
	}
}

// Category groups projects on the public pages.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
	Order  int    `json:"order"`
}

// ProjectMedia is one gallery item of a project.
type ProjectMedia struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Type        MediaType `json:"type"`
	Description string    `json:"description"`
	IsMain      bool      `json:"isMain"`
}

// Project is a portfolio entry. CategoryID may reference a category that no
// longer exists.
type Project struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	CategoryID          string         `json:"categoryId"`
	Description         string         `json:"description"`
	DescriptionDetailed string         `json:"descriptionDetailed"`
	Featured            bool           `json:"featured"`
	CreatedAt           string         `json:"createdAt"`
	Media               []ProjectMedia `json:"media"`
}

// Created parses CreatedAt. Unparseable values sort as the zero time.
func (p Project) Created() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Profile is the singleton artist profile.
type Profile struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	ShortBio        string   `json:"shortBio"`
	FullBio         string   `json:"fullBio"`
	AvatarURL       string   `json:"avatarUrl"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experienceYears"`
}

// Contact is a link to one of the artist's channels.
type Contact struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

// Upload records an image uploaded through the admin panel.
type Upload struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}

// URL is the public path of the uploaded file.
func (u Upload) URL() string {
	return "/public/uploads/" + u.Filename
}

// NewID returns a fresh opaque id for a new entity.
func NewID() string {
	return uuid.NewString()
}

// Collection and document names used in the document store.
const (
	CollectionProjects   = "projects"
	CollectionCategories = "categories"
	CollectionContacts   = "contacts"
	CollectionSettings   = "settings"
	CollectionUploads    = "uploads"

	ProfileDocID = "profile"
)
