package folio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/docstore"
	"github.com/eringen/folio/views"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 85
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, downsizes it to maxImageWidth and
// encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string, now time.Time) (content.Upload, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return content.Upload{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return content.Upload{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	base := slugifyFilename(originalName)
	if base == "" {
		base = "image"
	}

	return content.Upload{
		Filename:     base + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   now.UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	return Slugify(base)
}

func uploadRef(filename string) docstore.Ref {
	return docstore.Doc(content.CollectionUploads, filename)
}

// ensureUniqueFilename appends a counter while the name is taken on disk or
// in the uploads collection.
func (a *App) ensureUniqueFilename(ctx context.Context, up *content.Upload) {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(up.Filename, ".jpg")
	candidate := up.Filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		doc, _ := a.Docs.Get(ctx, uploadRef(candidate))
		if statErr != nil && !doc.Exists {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	up.Filename = candidate
}

// listUploads returns the upload records, newest first.
func (a *App) listUploads(ctx context.Context) ([]content.Upload, error) {
	snap, err := a.Docs.List(ctx, docstore.Collection(content.CollectionUploads).OrderBy("uploadedAt"))
	if err != nil {
		return nil, errors.Wrap(err, "list uploads")
	}
	uploads := make([]content.Upload, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var up content.Upload
		if err := doc.DataTo(&up); err != nil {
			a.Log.Warn().Err(err).Str("id", doc.ID).Msg("skip malformed upload")
			continue
		}
		if up.Filename == "" {
			up.Filename = doc.ID
		}
		uploads = append(uploads, up)
	}
	slices.Reverse(uploads)
	return uploads, nil
}

func (a *App) handleUploadCreate(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "No image file provided.", true))
	}
	if file.Size > maxUploadSize {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "File too large (max 10MB).", true))
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	up, data, err := processImage(src, file.Filename, a.now())
	if err != nil {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "Invalid image.", true))
	}

	ctx := c.Request().Context()
	a.ensureUniqueFilename(ctx, &up)

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, up.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Docs.Set(ctx, uploadRef(up.Filename), up); err != nil {
		return err
	}

	a.Log.Info().Str("file", up.Filename).Int("width", up.Width).Int("height", up.Height).Msg("image uploaded")
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "Uploaded "+up.URL(), false))
}

func (a *App) handleUploadDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	path := filepath.Join(a.staticDir, uploadsSubdir, filename)
	_ = os.Remove(path) // ignore error if file already gone

	if err := a.Docs.Delete(c.Request().Context(), uploadRef(filename)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabSettings, "Upload deleted.", false))
}
