package folio

import (
	"bytes"
	"encoding/xml"
	"sort"
	"time"

	"github.com/eringen/folio/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Category    string        `xml:"category,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// buildRSS renders the projects newest first.
func (a *App) buildRSS(projects []content.Project, cats []content.Category) ([]byte, error) {
	base := a.Config.URL
	sorted := append([]content.Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created().After(sorted[j].Created())
	})
	items := make([]rssItem, 0, len(sorted))
	for _, p := range sorted {
		pubDate := ""
		if t := p.Created(); !t.IsZero() {
			pubDate = t.Format(time.RFC1123Z)
		}
		projectURL := BuildURL(base, "project", p.ID)
		item := rssItem{
			Title:       p.Title,
			Link:        projectURL,
			Description: p.Description,
			Category:    content.CategoryName(cats, p),
			PubDate:     pubDate,
			GUID:        projectURL,
		}
		if img := content.MainImageURL(p); img != "" {
			item.Enclosure = &rssEnclosure{URL: absoluteURL(base, img), Type: "image/jpeg"}
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(feed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
