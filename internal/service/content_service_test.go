package service

import (
	"context"
	"testing"

	"github.com/badlog/internal/db"
)

func TestExperienceService(t *testing.T) {
	ctx := context.Background()
	content := testSeed(t)
	svc := NewExperienceService(setupServiceTestDB(t), NewBackendMode(false), content)

	if got := svc.ListAll(ctx); len(got) != len(content.Experiences()) {
		t.Fatalf("empty backend should serve seed experiences, got %d", len(got))
	}

	second, ok := svc.Add(ctx, db.Experience{Title: "Second", Type: "WORK", Order: 2})
	if !ok {
		t.Fatalf("add failed")
	}
	first, ok := svc.Add(ctx, db.Experience{Title: "First", Type: "unknown", Order: 1})
	if !ok {
		t.Fatalf("add failed")
	}

	list := svc.ListAll(ctx)
	if len(list) != 2 || list[0].ID != first || list[1].ID != second {
		t.Fatalf("expected order asc, got %+v", list)
	}
	if list[0].Type != db.ExperienceTypeEducation || list[1].Type != db.ExperienceTypeWork {
		t.Fatalf("unexpected types %q %q", list[0].Type, list[1].Type)
	}

	order := 3
	if !svc.Update(ctx, first, ExperiencePatch{Order: &order}) {
		t.Fatalf("update failed")
	}
	if list = svc.ListAll(ctx); list[0].ID != second {
		t.Fatalf("expected reorder, got %+v", list)
	}

	if !svc.Delete(ctx, first) || !svc.Delete(ctx, second) {
		t.Fatalf("delete failed")
	}
}

func TestSkillService_SaveMerges(t *testing.T) {
	ctx := context.Background()
	svc := NewSkillService(setupServiceTestDB(t), NewBackendMode(false), testSeed(t))

	id, ok := svc.Save(ctx, db.SkillCategory{Category: "Languages", Items: []string{"Go", "Go", "Rust"}, Color: "red", Order: 1})
	if !ok || id == "" {
		t.Fatalf("save new failed: %q %v", id, ok)
	}

	if _, ok := svc.Save(ctx, db.SkillCategory{ID: id, Category: "Languages", Items: []string{"Go"}, Color: "blue", Order: 1}); !ok {
		t.Fatalf("save existing failed")
	}
	if _, ok := svc.Save(ctx, db.SkillCategory{ID: "fixed-id", Category: "Tools", Order: 2}); !ok {
		t.Fatalf("save with new id failed")
	}

	list := svc.ListAll(ctx)
	if len(list) != 2 {
		t.Fatalf("expected two categories, got %+v", list)
	}
	if list[0].ID != id || list[0].Color != "blue" || len(list[0].Items) != 1 {
		t.Fatalf("expected merged category, got %+v", list[0])
	}
	if list[1].ID != "fixed-id" {
		t.Fatalf("expected upsert by id, got %+v", list[1])
	}

	if !svc.Delete(ctx, "fixed-id") {
		t.Fatalf("delete failed")
	}
}

func TestHomeInfoService(t *testing.T) {
	ctx := context.Background()
	gdb := setupServiceTestDB(t)
	svc := NewHomeInfoService(gdb, NewBackendMode(false), testSeed(t))

	if err := svc.InitializeDefaults(ctx); err != nil {
		t.Fatalf("initialize defaults: %v", err)
	}
	if err := svc.InitializeDefaults(ctx); err != nil {
		t.Fatalf("initialize defaults twice: %v", err)
	}

	list := svc.ListAll(ctx)
	if len(list) != 3 || list[0].ID != "what-i-do" || list[1].ID != "about-me" || list[2].ID != "vision" {
		t.Fatalf("unexpected defaults %+v", list)
	}

	title := "What I Build"
	if !svc.Upsert(ctx, "what-i-do", HomeInfoPatch{Title: &title}) {
		t.Fatalf("upsert existing failed")
	}
	list = svc.ListAll(ctx)
	if list[0].Title != title || list[0].AccentColor != "emerald" {
		t.Fatalf("expected merge to keep other fields, got %+v", list[0])
	}

	order := 4
	if !svc.Upsert(ctx, "contact", HomeInfoPatch{Title: strPtr("Contact"), Order: &order}) {
		t.Fatalf("upsert new failed")
	}
	list = svc.ListAll(ctx)
	if len(list) != 4 || list[3].ID != "contact" {
		t.Fatalf("expected new block last, got %+v", list)
	}
}

func TestContentServices_LocalModeServesSeed(t *testing.T) {
	ctx := context.Background()
	gdb := setupServiceTestDB(t)
	content := testSeed(t)
	mode := NewBackendMode(true)

	skills := NewSkillService(gdb, mode, content)
	if id, ok := skills.Save(ctx, db.SkillCategory{Category: "x"}); !ok || id == "" {
		t.Fatalf("local save should look successful, got %q %v", id, ok)
	}
	if got := skills.ListAll(ctx); len(got) != len(content.Skills()) {
		t.Fatalf("local mode should serve seed skills, got %d", len(got))
	}

	home := NewHomeInfoService(gdb, mode, content)
	if err := home.InitializeDefaults(ctx); err != nil {
		t.Fatalf("local defaults: %v", err)
	}
	var total int64
	gdb.Model(&db.HomeInfo{}).Count(&total)
	if total != 0 {
		t.Fatalf("local mode must not write defaults, found %d", total)
	}
}
