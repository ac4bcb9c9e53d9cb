package view

import (
	"testing"

	"github.com/badlog/internal/db"
)

func TestFilterGallery(t *testing.T) {
	items := []db.GalleryItem{
		{ID: "1", Title: "Poster", Description: "Concert poster", Category: "設計"},
		{ID: "2", Title: "Viewer", Description: "EEG signal viewer", Category: "研究"},
		{ID: "3", Title: "Album cover", Description: "piano", Category: "設計"},
	}

	tests := []struct {
		name  string
		query GalleryQuery
		want  []string
	}{
		{name: "all category", query: GalleryQuery{Category: AllCategories}, want: []string{"1", "2", "3"}},
		{name: "empty category", query: GalleryQuery{}, want: []string{"1", "2", "3"}},
		{name: "category", query: GalleryQuery{Category: "設計"}, want: []string{"1", "3"}},
		{name: "search description", query: GalleryQuery{Search: "eeg"}, want: []string{"2"}},
		{name: "search and category", query: GalleryQuery{Search: "POSTER", Category: "研究"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterGallery(items, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("expected %v, got %+v", tt.want, got)
				}
			}
		})
	}

	cats := GalleryCategories(items)
	if len(cats) != 3 || cats[0] != AllCategories || cats[1] != "設計" || cats[2] != "研究" {
		t.Fatalf("unexpected categories %v", cats)
	}
}
