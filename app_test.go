package folio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/live"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "hunter2"
)

func setupTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	a := New(SiteConfig{
		Name:          "Folio",
		URL:           "https://example.com",
		DatabasePath:  filepath.Join(dir, "folio.db"),
		StaticDir:     filepath.Join(dir, "public"),
		AdminEmail:    testEmail,
		AdminPassword: testPassword,
		SessionSecret: "test-secret-0123456789abcdef",
	}, WithLogger(zerolog.Nop()))
	if err := a.Init(); err != nil {
		t.Fatalf("init app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	waitSnapshot(t, a, func(s live.Snapshot) bool {
		return len(s.Categories) == 5 && len(s.Projects) == 3 && len(s.Contacts) == 3
	})
	return a
}

func waitSnapshot(t *testing.T, a *App, cond func(live.Snapshot) bool) live.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := a.Layer.Snapshot(); cond(s) {
			return s
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
	return live.Snapshot{}
}

// browser keeps cookies between requests against the app's Echo handler.
type browser struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, a *App) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.send(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) csrf() string {
	b.t.Helper()
	if _, ok := b.cookies["_csrf"]; !ok {
		b.get("/admin/")
	}
	c, ok := b.cookies["_csrf"]
	if !ok {
		b.t.Fatalf("no csrf cookie issued")
	}
	return c.Value
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", b.csrf())
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) login() {
	b.t.Helper()
	rec := b.post("/admin/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	if rec.Code != http.StatusSeeOther {
		b.t.Fatalf("login: expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPublicPages(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)

	tests := []struct {
		path string
		code int
		want string
	}{
		{"/", http.StatusOK, "GaloDev"},
		{"/portfolio/", http.StatusOK, "Fire Magic System"},
		{"/portfolio/?cat=c4", http.StatusOK, "Boss Fight Animation"},
		{"/project/p1/", http.StatusOK, "Main spell cast effect"},
		{"/about/", http.StatusOK, "Particle Systems"},
		{"/contact/", http.StatusOK, "@galodev_vfx"},
		{"/project/nope/", http.StatusNotFound, "Project not found"},
		{"/does-not-exist/", http.StatusNotFound, "404"},
	}
	for _, tt := range tests {
		rec := b.get(tt.path)
		if rec.Code != tt.code {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.code, rec.Code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s: body missing %q", tt.path, tt.want)
		}
	}
}

func TestPortfolioFilterHidesOtherCategories(t *testing.T) {
	a := setupTestApp(t)
	body := newBrowser(t, a).get("/portfolio/?cat=c4").Body.String()
	if strings.Contains(body, "Fire Magic System") {
		t.Fatalf("filtered portfolio should not list projects from other categories")
	}
}

func TestLoginFlow(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)

	if body := b.get("/admin/").Body.String(); !strings.Contains(body, "Admin Login") {
		t.Fatalf("expected login form")
	}
	// The login form is shown for every tab.
	if body := b.get("/admin/?tab=projects").Body.String(); !strings.Contains(body, "Admin Login") {
		t.Fatalf("expected login form on projects tab")
	}

	rec := b.post("/admin/login/", url.Values{"email": {""}, "password": {""}})
	if !strings.Contains(rec.Body.String(), "Enter email and password.") {
		t.Fatalf("expected blank-field message")
	}
	rec = b.post("/admin/login/", url.Values{"email": {testEmail}, "password": {"wrong"}})
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Fatalf("expected invalid credentials message")
	}

	b.login()
	body := b.get("/admin/").Body.String()
	if !strings.Contains(body, "Admin Panel") || !strings.Contains(body, "Total Projects") {
		t.Fatalf("expected dashboard after login")
	}
	if !strings.Contains(body, testEmail) {
		t.Fatalf("expected signed-in email on dashboard")
	}

	rec = b.post("/admin/logout/", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout: expected 303, got %d", rec.Code)
	}
	if body := b.get("/admin/").Body.String(); !strings.Contains(body, "Admin Login") {
		t.Fatalf("expected login form after logout")
	}
}

func TestAdminWritesRequireLogin(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	rec := b.post("/admin/categories/", url.Values{"name": {"Sneaky"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	_ = a.Layer.Flush(context.Background())
	for _, c := range a.Layer.Snapshot().Categories {
		if c.Name == "Sneaky" {
			t.Fatalf("unauthenticated write went through")
		}
	}
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	a := setupTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("email=a&password=b&_csrf=bogus"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateProjectEndToEnd(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	if body := b.get("/admin/?tab=projects&new=1").Body.String(); !strings.Contains(body, "New Project") {
		t.Fatalf("expected new project form")
	}

	// Adding the first media item makes it main.
	rec := b.post("/admin/projects/draft/", url.Values{
		"is_new":         {"1"},
		"title":          {"Test VFX"},
		"category_id":    {"c1"},
		"new_media_url":  {"https://example.com/first.jpg"},
		"new_media_type": {"image"},
		"action":         {"add_media"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add media: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="https://example.com/first.jpg"`) {
		t.Fatalf("draft should keep the added media")
	}
	if !strings.Contains(rec.Body.String(), " checked/> Main") {
		t.Fatalf("first media should be marked main")
	}

	rec = b.post("/admin/projects/draft/", url.Values{
		"is_new":      {"1"},
		"title":       {"Test VFX"},
		"category_id": {"c1"},
		"description": {"Smoke and sparks"},
		"media_id":    {"ma", "mb"},
		"media_url":   {"https://example.com/a.jpg", "https://example.com/b.jpg"},
		"media_type":  {"image", "image"},
		"media_desc":  {"", ""},
		"main":        {"mb"},
		"action":      {"save"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save: expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	snap := waitSnapshot(t, a, func(s live.Snapshot) bool {
		for _, p := range s.Projects {
			if p.Title == "Test VFX" {
				return true
			}
		}
		return false
	})
	var created content.Project
	for _, p := range snap.Projects {
		if p.Title == "Test VFX" {
			created = p
		}
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("expected generated id and createdAt, got %+v", created)
	}

	if body := b.get("/portfolio/").Body.String(); !strings.Contains(body, "Test VFX") {
		t.Fatalf("new project missing from portfolio")
	}
	body := b.get("/project/" + created.ID + "/").Body.String()
	ia := strings.Index(body, `data-media-id="ma"`)
	ib := strings.Index(body, `data-media-id="mb"`)
	if ia < 0 || ib < 0 || ib > ia {
		t.Fatalf("main media should be first in gallery: ma=%d mb=%d", ia, ib)
	}
}

func TestSaveProjectRequiresTitle(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	rec := b.post("/admin/projects/draft/", url.Values{
		"is_new":      {"1"},
		"title":       {"  "},
		"category_id": {"c1"},
		"action":      {"save"},
	})
	if !strings.Contains(rec.Body.String(), "Title is required.") {
		t.Fatalf("expected title validation message")
	}
	_ = a.Layer.Flush(context.Background())
	if n := len(a.Layer.Snapshot().Projects); n != 3 {
		t.Fatalf("expected no project written, have %d", n)
	}
}

func TestEditAndDeleteProject(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	if body := b.get("/admin/?tab=projects&edit=p2").Body.String(); !strings.Contains(body, "Cyberpunk City UI") {
		t.Fatalf("expected edit form for p2")
	}
	rec := b.post("/admin/projects/draft/", url.Values{
		"id":          {"p2"},
		"title":       {"Cyberpunk City HUD"},
		"category_id": {"c2"},
		"media_id":    {"m3"},
		"media_url":   {"https://picsum.photos/id/3/800/450"},
		"media_type":  {"image"},
		"main":        {"m3"},
		"action":      {"save"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save: expected 303, got %d", rec.Code)
	}
	waitSnapshot(t, a, func(s live.Snapshot) bool {
		p, ok := content.FindProject(s.Projects, "p2")
		return ok && p.Title == "Cyberpunk City HUD"
	})
	// The form posted an empty detailed description, which clears it.
	if body := b.get("/project/p2/").Body.String(); strings.Contains(body, "Roact framework") {
		t.Fatalf("cleared detailed description still rendered")
	}

	rec = b.post("/admin/projects/p2/", url.Values{"_method": {"DELETE"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete: expected 303, got %d", rec.Code)
	}
	waitSnapshot(t, a, func(s live.Snapshot) bool {
		_, ok := content.FindProject(s.Projects, "p2")
		return !ok
	})
	if rec := b.get("/project/p2/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted project, got %d", rec.Code)
	}
}

func TestCategorySaveAndDelete(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	rec := b.post("/admin/categories/", url.Values{"name": {""}})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "err=") {
		t.Fatalf("expected validation redirect, got %q", loc)
	}

	b.post("/admin/categories/", url.Values{"name": {"Compositing"}, "icon": {"🎞"}, "active": {"1"}})
	snap := waitSnapshot(t, a, func(s live.Snapshot) bool { return len(s.Categories) == 6 })
	var added content.Category
	for _, c := range snap.Categories {
		if c.Name == "Compositing" {
			added = c
		}
	}
	if added.ID == "" || added.Order != 6 || !added.Active {
		t.Fatalf("unexpected category %+v", added)
	}

	b.post("/admin/categories/"+added.ID+"/", url.Values{"_method": {"DELETE"}})
	waitSnapshot(t, a, func(s live.Snapshot) bool { return len(s.Categories) == 5 })
}

func TestDeletingCategoryMovesProjectsToUncategorized(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	b.post("/admin/categories/c4/", url.Values{"_method": {"DELETE"}})
	waitSnapshot(t, a, func(s live.Snapshot) bool { return len(s.Categories) == 4 })

	body := b.get("/portfolio/").Body.String()
	if !strings.Contains(body, "Uncategorized") || !strings.Contains(body, "Boss Fight Animation") {
		t.Fatalf("expected orphaned project under Uncategorized")
	}
}

func TestContactRequiresPlatform(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	rec := b.post("/admin/contacts/", url.Values{"username": {"someone"}})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "err=Platform") {
		t.Fatalf("expected platform validation redirect, got %q", loc)
	}

	b.post("/admin/contacts/", url.Values{"platform": {"Email"}, "username": {"me@example.com"}, "link": {"mailto:me@example.com"}})
	waitSnapshot(t, a, func(s live.Snapshot) bool { return len(s.Contacts) == 4 })
	if body := b.get("/contact/").Body.String(); !strings.Contains(body, `data-icon="mail"`) {
		t.Fatalf("expected mail icon for the new contact")
	}
}

func TestAboutDraftAndSave(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	profile := a.Layer.Snapshot().Profile
	form := url.Values{
		"experience_years": {"7"},
		"short_bio":        {profile.ShortBio},
		"full_bio":         {profile.FullBio},
		"skill":            profile.Skills,
		"new_skill":        {"Houdini"},
		"action":           {"add_skill"},
	}
	rec := b.post("/admin/about/draft/", form)
	if !strings.Contains(rec.Body.String(), `name="skill" value="Houdini"`) {
		t.Fatalf("draft should contain the new skill")
	}
	if a.Layer.Snapshot().Profile.ExperienceYears == 7 {
		t.Fatalf("draft actions must not write")
	}

	form.Set("action", "save")
	form["skill"] = append(append([]string(nil), profile.Skills...), "Houdini")
	b.post("/admin/about/draft/", form)
	snap := waitSnapshot(t, a, func(s live.Snapshot) bool { return s.Profile.ExperienceYears == 7 })
	if got := snap.Profile.Skills[len(snap.Profile.Skills)-1]; got != "Houdini" {
		t.Fatalf("expected Houdini as last skill, got %q", got)
	}
	if snap.Profile.Name != profile.Name {
		t.Fatalf("about save should keep the name")
	}
}

func TestSettingsSave(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	b.post("/admin/settings/", url.Values{"name": {"Nova"}, "title": {"Compositor"}, "avatar_url": {"/public/uploads/me.jpg"}})
	waitSnapshot(t, a, func(s live.Snapshot) bool { return s.Profile.Name == "Nova" })
	if body := b.get("/").Body.String(); !strings.Contains(body, "Nova") || !strings.Contains(body, "Compositor") {
		t.Fatalf("home should show the new profile")
	}
}

func TestSitemapFeedAndRobots(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)

	if body := b.get("/sitemap.xml").Body.String(); !strings.Contains(body, "https://example.com/project/p1/") {
		t.Fatalf("sitemap missing project url")
	}
	feed := b.get("/feed.xml")
	if ct := feed.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Fatalf("unexpected feed content type %q", ct)
	}
	if !strings.Contains(feed.Body.String(), "<title>Fire Magic System</title>") {
		t.Fatalf("feed missing project")
	}
	if body := b.get("/robots.txt").Body.String(); !strings.Contains(body, "Disallow: /admin/") {
		t.Fatalf("robots should disallow admin")
	}
}

func TestFeedRefreshesAfterChange(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.get("/feed.xml")

	a.Layer.AddProject(context.Background(), content.Project{Title: "Fresh Render", CategoryID: "c1"})
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(b.get("/feed.xml").Body.String(), "Fresh Render") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("feed never picked up the new project")
}

func TestUploadResizesAndRecords(t *testing.T) {
	a := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	img := image.NewRGBA(image.Rect(0, 0, 2000, 100))
	for x := 0; x < 2000; x++ {
		img.Set(x, 50, color.RGBA{R: 255, A: 255})
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("_csrf", b.csrf())
	fw, err := mw.CreateFormFile("image", "Big Shot.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(pngBuf.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := b.send(req)
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "msg=") {
		t.Fatalf("upload: expected success redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	uploads, err := a.listUploads(context.Background())
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(uploads) != 1 || uploads[0].Filename != "big-shot.jpg" {
		t.Fatalf("unexpected uploads %+v", uploads)
	}
	if uploads[0].Width != maxImageWidth || uploads[0].Height != 80 {
		t.Fatalf("expected resize to %dx80, got %dx%d", maxImageWidth, uploads[0].Width, uploads[0].Height)
	}
	if _, err := os.Stat(filepath.Join(a.staticDir, uploadsSubdir, "big-shot.jpg")); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}

	rec = b.post("/admin/uploads/big-shot.jpg/", url.Values{"_method": {"DELETE"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete upload: expected 303, got %d", rec.Code)
	}
	if uploads, _ := a.listUploads(context.Background()); len(uploads) != 0 {
		t.Fatalf("expected upload record removed")
	}
}

func TestInitRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")}, WithLogger(zerolog.Nop()))
	if err := a.Init(); err == nil {
		t.Fatalf("expected error without session secret")
	}
}
