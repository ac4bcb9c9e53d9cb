package seed

import (
	"strings"
	"testing"
	"time"
)

func TestLoadPostsInFixedOrder(t *testing.T) {
	content, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	posts := content.Posts()
	if len(posts) != 5 {
		t.Fatalf("expected 5 seed posts, got %d", len(posts))
	}
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		if posts[i].ID != want {
			t.Fatalf("post %d: expected id %q, got %q", i, want, posts[i].ID)
		}
	}

	first := posts[0]
	if first.Title != "Getting Started with React in 2024" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if !first.PublishedDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", first.PublishedDate)
	}
	if first.Category != "React" || !first.HasTag("JavaScript") {
		t.Fatalf("unexpected taxonomy %q %v", first.Category, first.Tags)
	}
	if !strings.HasPrefix(first.Content, "# Getting Started") {
		t.Fatalf("front matter leaked into body: %q", first.Content[:40])
	}
	if posts[3].Title != "State Management in React: A Comprehensive Guide" {
		t.Fatalf("unexpected title %q", posts[3].Title)
	}
}

func TestPostsReturnsCopies(t *testing.T) {
	content := MustLoad()

	posts := content.Posts()
	posts[0].Title = "mutated"
	posts[0].Tags[0] = "mutated"

	again := content.Posts()
	if again[0].Title == "mutated" || again[0].Tags[0] == "mutated" {
		t.Fatalf("seed content was mutated through a returned slice")
	}

	skills := content.Skills()
	skills[0].Items[0] = "mutated"
	if content.Skills()[0].Items[0] == "mutated" {
		t.Fatalf("skill items were mutated through a returned slice")
	}
}

func TestPostLookup(t *testing.T) {
	content := MustLoad()

	post, ok := content.Post("3")
	if !ok || post.Slug != "building-blog-react-tailwind" {
		t.Fatalf("unexpected lookup result %v %+v", ok, post)
	}
	if _, ok := content.Post("99"); ok {
		t.Fatalf("expected missing post")
	}
}

func TestContentFile(t *testing.T) {
	content := MustLoad()

	home := content.HomeInfo()
	if len(home) != 3 || home[0].ID != "what-i-do" || home[2].ID != "vision" {
		t.Fatalf("unexpected home info %+v", home)
	}
	if len(content.Gallery()) == 0 || len(content.Experiences()) == 0 || len(content.Skills()) == 0 {
		t.Fatalf("expected gallery, experiences and skills seeds")
	}
	if content.Subscribers() != nil || content.Comments() != nil {
		t.Fatalf("subscribers and comments have no seed")
	}
}
