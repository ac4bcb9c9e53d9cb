package view

import (
	"strings"

	"github.com/badlog/internal/db"
)

// AllCategories 是作品集“全部”分类的标签。
const AllCategories = "全部"

// GalleryQuery 是作品集页面的筛选条件。
type GalleryQuery struct {
	Search   string
	Category string
}

// FilterGallery 按分类与搜索词筛选作品，搜索匹配标题与描述。
func FilterGallery(items []db.GalleryItem, q GalleryQuery) []db.GalleryItem {
	search := fold(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	if category == AllCategories {
		category = ""
	}

	out := make([]db.GalleryItem, 0, len(items))
	for _, item := range items {
		if category != "" && item.Category != category {
			continue
		}
		if search != "" && !containsFold(item.Title, search) && !containsFold(item.Description, search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// GalleryCategories 返回以“全部”开头的分类列表。
func GalleryCategories(items []db.GalleryItem) []string {
	out := []string{AllCategories}
	seen := map[string]struct{}{AllCategories: {}}
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
