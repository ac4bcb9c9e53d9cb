// Package view 包含从已获取的实体列表推导页面数据的纯函数，不做任何 I/O。
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/badlog/internal/db"
)

// PostQuery 是文章列表页的筛选条件。Category 为空表示不筛选分类。
type PostQuery struct {
	Search   string
	Category string
}

// fold 做 Unicode 大小写折叠。Caser 有内部状态，不能在 goroutine 间共享，每次新建。
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), needle)
}

// FilterPosts 返回未归档且匹配搜索词与分类的文章，保持输入顺序。
// 搜索词不区分大小写，匹配标题、摘要或分类。
func FilterPosts(posts []db.Post, q PostQuery) []db.Post {
	search := fold(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]db.Post, 0, len(posts))
	for _, p := range posts {
		if p.Archived {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !containsFold(p.Title, search) && !containsFold(p.Excerpt, search) && !containsFold(p.Category, search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories 返回非空分类，按首次出现顺序去重。
func Categories(posts []db.Post) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range posts {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// ResolveFeatured 在列表中查找精选指针指向的文章。
func ResolveFeatured(posts []db.Post, pointer *db.FeaturedPointer) *db.Post {
	if pointer == nil || pointer.PostID == nil {
		return nil
	}
	for i := range posts {
		if posts[i].ID == *pointer.PostID {
			p := posts[i]
			return &p
		}
	}
	return nil
}

// RelatedPosts 返回最多 limit 篇与 ref 同分类或至少共享一个标签的其他文章，按列表顺序。
func RelatedPosts(ref db.Post, posts []db.Post, limit int) []db.Post {
	if limit <= 0 {
		limit = 3
	}
	var out []db.Post
	for _, p := range posts {
		if len(out) == limit {
			break
		}
		if p.ID == ref.ID {
			continue
		}
		if (ref.Category != "" && p.Category == ref.Category) || sharesTag(ref, p) {
			out = append(out, p)
		}
	}
	return out
}

func sharesTag(a, b db.Post) bool {
	for _, tag := range a.Tags {
		if b.HasTag(tag) {
			return true
		}
	}
	return false
}

// NextInSeries 返回同分类中发布时间严格晚于 ref 的最早一篇，没有则返回 nil。
func NextInSeries(ref db.Post, posts []db.Post) *db.Post {
	if ref.Category == "" {
		return nil
	}
	series := make([]db.Post, 0, len(posts))
	for _, p := range posts {
		if p.Category == ref.Category {
			series = append(series, p)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].PublishedDate.Before(series[j].PublishedDate)
	})
	for i := range series {
		if series[i].PublishedDate.After(ref.PublishedDate) {
			p := series[i]
			return &p
		}
	}
	return nil
}

// RecentPosts 按发布时间倒序返回前 n 篇，排除 excludeID 以及混入列表的精选指针记录。
func RecentPosts(posts []db.Post, excludeID string, n int) []db.Post {
	sorted := make([]db.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID == db.FeaturedPointerID || (excludeID != "" && p.ID == excludeID) {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedDate.After(sorted[j].PublishedDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ReadingTime 按每分钟 400 字估算阅读时长，非空内容至少 1 分钟。
func ReadingTime(content string) int {
	count := len([]rune(strings.TrimSpace(content)))
	if count == 0 {
		return 0
	}
	minutes := (count + 399) / 400
	return max(minutes, 1)
}
