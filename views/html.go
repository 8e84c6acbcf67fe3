package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and keeps the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (w *htmlWriter) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// rawf formats into markup. String arguments are written as is; escape them
// with esc first.
func (w *htmlWriter) rawf(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

func (w *htmlWriter) text(s string) {
	w.raw(html.EscapeString(s))
}

func (w *htmlWriter) render(c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(w.ctx, w.w)
}

func component(fn func(w *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &htmlWriter{ctx: ctx, w: out}
		fn(w)
		return w.err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

func checked(b bool) string {
	if b {
		return " checked"
	}
	return ""
}

func selected(b bool) string {
	if b {
		return " selected"
	}
	return ""
}
