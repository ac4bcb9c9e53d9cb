package service

import (
	"errors"
	"testing"
	"time"

	"github.com/badlog/internal/db"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Getting Started with React in 2024", want: "getting-started-with-react-2024"},
		{in: "  Crème Brûlée!  ", want: "creme-brulee"},
		{in: "State Management: A Guide", want: "state-management-a-guide"},
		{in: "中文 標題", want: "中文-標題"},
		{in: "---", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPostDraft(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	draft := NewPostDraft(now)

	if err := draft.Validate(); !errors.Is(err, ErrPostTitleRequired) {
		t.Fatalf("expected ErrPostTitleRequired, got %v", err)
	}

	draft.SetTitle("Hello World")
	if draft.Slug() != "hello-world" {
		t.Fatalf("expected auto slug, got %q", draft.Slug())
	}
	draft.SetSlug("Custom Slug")
	draft.SetTitle("Changed")
	if draft.Slug() != "custom-slug" {
		t.Fatalf("manual slug must survive title edits, got %q", draft.Slug())
	}
	draft.SetSlug("")
	if draft.Slug() != "changed" {
		t.Fatalf("empty slug should restore auto slug, got %q", draft.Slug())
	}

	if err := draft.Validate(); !errors.Is(err, ErrPostContentRequired) {
		t.Fatalf("expected ErrPostContentRequired, got %v", err)
	}
	if err := draft.SetContent("body", "rtf"); !errors.Is(err, ErrContentFormatInvalid) {
		t.Fatalf("expected ErrContentFormatInvalid, got %v", err)
	}
	if err := draft.SetContent("<p>body</p>", db.ContentFormatHTML); err != nil {
		t.Fatalf("set content: %v", err)
	}

	draft.AddTag("go")
	draft.AddTag(" go ")
	draft.AddTag("web")
	draft.AddTag("")
	draft.RemoveTag("go")
	if tags := draft.Tags(); len(tags) != 1 || tags[0] != "web" {
		t.Fatalf("unexpected tags %v", tags)
	}

	if err := draft.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	input := draft.Input()
	if input.ContentFormat != db.ContentFormatHTML || !input.PublishedDate.Equal(now) {
		t.Fatalf("unexpected input %+v", input)
	}

	patch := draft.Patch()
	updates := patch.updates()
	if updates["title"] != "Changed" || updates["content_format"] != db.ContentFormatHTML {
		t.Fatalf("unexpected updates %+v", updates)
	}
}

func TestDraftFromPostKeepsSlug(t *testing.T) {
	draft := DraftFromPost(db.Post{Title: "Old", Slug: "old-slug", Tags: []string{"a"}})
	draft.SetTitle("New Title")
	if draft.Slug() != "old-slug" {
		t.Fatalf("existing slug should be kept, got %q", draft.Slug())
	}
	draft.AddTag("b")
	if len(draft.Tags()) != 2 {
		t.Fatalf("unexpected tags %v", draft.Tags())
	}
}

func TestGalleryDraft(t *testing.T) {
	draft := NewGalleryDraft()
	draft.SetTitle("Poster")
	if err := draft.Validate(); !errors.Is(err, ErrGalleryImageMissing) {
		t.Fatalf("expected ErrGalleryImageMissing, got %v", err)
	}
	draft.SetImage("https://example.com/a.png", 800, -1)
	draft.SetDate("2024-03")
	if err := draft.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	item := draft.Item()
	if item.ImageWidth != 800 || item.ImageHeight != 0 || item.Date != "2024-03" {
		t.Fatalf("unexpected item %+v", item)
	}

	updates := GalleryDraftFromItem(item).Patch().updates()
	if updates["image_url"] != "https://example.com/a.png" || updates["image_width"] != 800 {
		t.Fatalf("unexpected updates %+v", updates)
	}
}

func TestGalleryServiceCRUD(t *testing.T) {
	ctx := t.Context()
	content := testSeed(t)
	svc := NewGalleryService(setupServiceTestDB(t), NewBackendMode(false), content)

	if got := svc.ListAll(ctx); len(got) != len(content.Gallery()) {
		t.Fatalf("empty backend should serve seed gallery, got %d", len(got))
	}
	if got := svc.Get(ctx, "g1"); got == nil {
		t.Fatalf("expected seed gallery lookup")
	}

	draft := NewGalleryDraft()
	draft.SetTitle("Old")
	draft.SetImage("https://example.com/old.png", 0, 0)
	draft.SetDate("2023-01")
	oldID, ok := svc.Add(ctx, draft.Item())
	if !ok {
		t.Fatalf("add failed")
	}
	draft.SetTitle("New")
	draft.SetDate("2024-06")
	newID, ok := svc.Add(ctx, draft.Item())
	if !ok {
		t.Fatalf("add failed")
	}

	list := svc.ListAll(ctx)
	if len(list) != 2 || list[0].ID != newID || list[1].ID != oldID {
		t.Fatalf("expected date desc, got %+v", list)
	}

	if !svc.Update(ctx, oldID, GalleryPatch{Category: strPtr("設計")}) {
		t.Fatalf("update failed")
	}
	if got := svc.Get(ctx, oldID); got == nil || got.Category != "設計" || got.Title != "Old" {
		t.Fatalf("unexpected item %+v", got)
	}
	if !svc.Delete(ctx, oldID) {
		t.Fatalf("delete failed")
	}
}
