package views

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reLink = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// RichText renders long-form project and bio text: blank lines separate
// paragraphs, single newlines are kept as line breaks, and lines starting with
// "- " become a bullet list. **bold** and [text](url) are recognised inline.
func RichText(text string) templ.Component {
	return component(func(w *htmlWriter) {
		var buf bytes.Buffer
		renderRichText(&buf, text)
		w.raw(buf.String())
	})
}

func renderRichText(buf *bytes.Buffer, text string) {
	inList := false
	inPara := false

	flushPara := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
	}
	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushPara()
			flushList()
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "• "):
			if !inList {
				flushPara()
				buf.WriteString(`<ul class="rich-list">`)
				inList = true
			}
			item := strings.TrimSpace(strings.TrimLeft(trimmed, "-• "))
			buf.WriteString("<li>")
			buf.WriteString(formatInline(item))
			buf.WriteString("</li>")
		default:
			if !inPara {
				flushList()
				buf.WriteString("<p>")
				inPara = true
			} else {
				buf.WriteString("<br/>")
			}
			buf.WriteString(formatInline(trimmed))
		}
	}
	flushPara()
	flushList()
}

func formatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		if len(match) < 3 {
			return m
		}
		href := safeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + match[1] + `</a>`
	})
	return applyOutsideTags(escaped, func(seg string) string {
		return reBold.ReplaceAllString(seg, "<strong>$1</strong>")
	})
}

// applyOutsideTags applies fn only to text between tags so hrefs are left
// untouched.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}
