package folio

import (
	"net/url"
	"slices"
	"testing"

	"github.com/eringen/folio/content"
)

func TestProjectDraftFromForm(t *testing.T) {
	form := url.Values{
		"id":          {"p9"},
		"title":       {"  Smoke Trails "},
		"category_id": {"c2"},
		"featured":    {"1"},
		"media_id":    {"a", "b"},
		"media_url":   {"https://example.com/a.jpg", "https://youtu.be/xyz"},
		"media_type":  {"image", "video"},
		"media_desc":  {"first"},
		"main":        {"b"},
	}
	d := projectDraftFromForm(form)
	if d.IsNew {
		t.Fatalf("draft with id should not be new")
	}
	p := d.Project
	if p.ID != "p9" || p.Title != "Smoke Trails" || !p.Featured || p.CategoryID != "c2" {
		t.Fatalf("unexpected project %+v", p)
	}
	if len(p.Media) != 2 {
		t.Fatalf("expected 2 media, got %d", len(p.Media))
	}
	if p.Media[0].IsMain || !p.Media[1].IsMain {
		t.Fatalf("main radio should select b: %+v", p.Media)
	}
	if p.Media[1].Type != content.MediaVideo || p.Media[1].Description != "" {
		t.Fatalf("unexpected second media %+v", p.Media[1])
	}
}

func TestApplyProjectAction(t *testing.T) {
	d := newProjectDraft([]content.Category{{ID: "b", Order: 2}, {ID: "a", Order: 1}})
	if d.Project.CategoryID != "a" || !d.IsNew {
		t.Fatalf("new draft should default to first category, got %+v", d)
	}

	if msg := applyProjectAction(&d, actionAddMedia); msg == "" {
		t.Fatalf("blank media url should be refused")
	}

	d.NewMediaURL = "https://example.com/1.jpg"
	applyProjectAction(&d, actionAddMedia)
	d.NewMediaURL = "https://example.com/2.jpg"
	applyProjectAction(&d, actionAddMedia)
	if len(d.Project.Media) != 2 {
		t.Fatalf("expected 2 media, got %d", len(d.Project.Media))
	}
	if !d.Project.Media[0].IsMain || d.Project.Media[1].IsMain {
		t.Fatalf("only the first added media should be main: %+v", d.Project.Media)
	}
	if d.NewMediaURL != "" {
		t.Fatalf("new media fields should reset")
	}

	first := d.Project.Media[0].ID
	applyProjectAction(&d, actionRemoveMedia+first)
	if len(d.Project.Media) != 1 || d.Project.Media[0].ID == first {
		t.Fatalf("remove did not drop %s: %+v", first, d.Project.Media)
	}
}

func TestAboutDraft(t *testing.T) {
	base := content.DefaultProfile()
	form := url.Values{
		"experience_years": {"-3"},
		"short_bio":        {" Hi "},
		"skill":            {"VFX", " ", "Blender"},
		"new_skill":        {" Houdini "},
	}
	p, newSkill := aboutDraftFromForm(form, base)
	if p.ExperienceYears != 0 || p.ShortBio != "Hi" || newSkill != "Houdini" {
		t.Fatalf("unexpected draft %+v %q", p, newSkill)
	}
	if !slices.Equal(p.Skills, []string{"VFX", "Blender"}) {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
	if p.Name != base.Name {
		t.Fatalf("name should carry over from base")
	}

	if !applyAboutAction(&p, actionAddSkill, newSkill) {
		t.Fatalf("expected skill to be added")
	}
	if applyAboutAction(&p, actionAddSkill, "VFX") {
		t.Fatalf("duplicate skill should be refused")
	}
	applyAboutAction(&p, actionRemoveSkill+"0", "")
	if !slices.Equal(p.Skills, []string{"Blender", "Houdini"}) {
		t.Fatalf("unexpected skills after remove %v", p.Skills)
	}
	applyAboutAction(&p, actionRemoveSkill+"9", "")
	if len(p.Skills) != 2 {
		t.Fatalf("out of range remove should be ignored")
	}
}

func TestCategoryFromForm(t *testing.T) {
	cats := []content.Category{{ID: "c1", Order: 1}, {ID: "c2", Order: 7}, {ID: "c3", Order: 3}}

	c := categoryFromForm(url.Values{"name": {" Lighting "}, "order": {"x"}}, cats)
	if c.Name != "Lighting" || c.Order != 4 || c.Active {
		t.Fatalf("new category should append, got %+v", c)
	}

	c = categoryFromForm(url.Values{"id": {"c2"}, "name": {"UI"}, "order": {""}}, cats)
	if c.Order != 7 {
		t.Fatalf("blank order should keep the stored order, got %d", c.Order)
	}

	c = categoryFromForm(url.Values{"id": {"c2"}, "name": {"UI"}, "order": {"2"}}, cats)
	if c.Order != 2 {
		t.Fatalf("explicit order should win, got %d", c.Order)
	}
}

func TestProjectDraftWithoutMainSelection(t *testing.T) {
	d := projectDraftFromForm(url.Values{
		"media_id":  {"a", "b"},
		"media_url": {"/a.jpg", "/b.jpg"},
	})
	for _, m := range d.Project.Media {
		if m.IsMain {
			t.Fatalf("no radio selected, yet %s is main", m.ID)
		}
	}
}
