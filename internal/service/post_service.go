package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/view"
)

const postModule = "posts"

// PostService 是文章仓储。后端不可用时读操作回退到种子文章，写操作变为无副作用的成功。
type PostService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	ContentFormat string
	PublishedDate time.Time
	Category      string
	Tags          []string
	CoverImage    string
	Archived      bool
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *PostService {
	return &PostService{db: gdb, mode: mode, seed: content}
}

// ListAll 按发布时间倒序返回全部文章。后端为空时返回种子，保证新站点不会空白。
func (s *PostService) ListAll(ctx context.Context) []db.Post {
	return readAll(ctx, s.db, s.mode, postModule, s.seed.Posts, func(q *gorm.DB) ([]db.Post, error) {
		var posts []db.Post
		err := q.Order("published_date desc").Find(&posts).Error
		return posts, err
	})
}

// Get 按 ID 查找文章，后端与种子中都不存在时返回 nil。
func (s *PostService) Get(ctx context.Context, id string) *db.Post {
	return readOne(ctx, s.db, s.mode, postModule, id, s.seed.Post)
}

// Stored 报告文章是否存在于后端。只存在于种子里的文章无法被修改。
func (s *PostService) Stored(ctx context.Context, id string) (bool, error) {
	return stored(ctx, s.db, s.mode, postModule, &db.Post{}, id, func(id string) bool {
		_, ok := s.seed.Post(id)
		return ok
	})
}

// ListByCategory returns the posts of one category, newest first.
func (s *PostService) ListByCategory(ctx context.Context, category string) []db.Post {
	fromSeed := func() []db.Post {
		var out []db.Post
		for _, p := range s.seed.Posts() {
			if p.Category == category {
				out = append(out, p)
			}
		}
		return out
	}
	return readFiltered(ctx, s.db, s.mode, postModule, "list_by_category", fromSeed, func(q *gorm.DB) ([]db.Post, error) {
		var posts []db.Post
		err := q.Where("category = ?", category).Order("published_date desc").Find(&posts).Error
		return posts, err
	})
}

// ListRecent returns at most limit posts, newest first.
func (s *PostService) ListRecent(ctx context.Context, limit int) []db.Post {
	if limit <= 0 {
		limit = 3
	}
	fromSeed := func() []db.Post {
		return view.RecentPosts(s.seed.Posts(), "", limit)
	}
	return readFiltered(ctx, s.db, s.mode, postModule, "list_recent", fromSeed, func(q *gorm.DB) ([]db.Post, error) {
		var posts []db.Post
		err := q.Order("published_date desc").Limit(limit).Find(&posts).Error
		return posts, err
	})
}

// Categories 返回出现过的分类，按首次出现顺序。
func (s *PostService) Categories(ctx context.Context) []string {
	return view.Categories(s.ListAll(ctx))
}

// Add 创建文章并返回新 ID。
func (s *PostService) Add(ctx context.Context, input PostInput) (string, bool) {
	post := buildPost(input)
	return writeAdd(ctx, s.db, s.mode, postModule, func(q *gorm.DB) (string, error) {
		if err := q.Create(&post).Error; err != nil {
			return "", err
		}
		return post.ID, nil
	})
}

// Update 对文章做部分更新，只写入 patch 中非 nil 的字段。
func (s *PostService) Update(ctx context.Context, id string, patch PostPatch) bool {
	return writeOp(ctx, s.db, s.mode, postModule, "update", id, func(q *gorm.DB) error {
		return applyPatch(q, &db.Post{}, id, patch.updates())
	})
}

// Delete 永久删除文章。
func (s *PostService) Delete(ctx context.Context, id string) bool {
	return writeOp(ctx, s.db, s.mode, postModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.Post{}).Error
	})
}

// ToggleArchived 翻转文章的归档状态并返回新状态。
func (s *PostService) ToggleArchived(ctx context.Context, id string) (bool, bool) {
	post := s.Get(ctx, id)
	if post == nil {
		return false, false
	}
	archived := !post.Archived
	return archived, s.Update(ctx, id, PostPatch{Archived: &archived})
}

// GetFeatured 读取精选指针。不存在、本地模式或出错时返回 nil。
func (s *PostService) GetFeatured(ctx context.Context) *db.FeaturedPointer {
	if s.mode.Local() || s.db == nil {
		return nil
	}
	var pointer db.FeaturedPointer
	err := s.db.WithContext(ctx).Where("id = ?", db.FeaturedPointerID).First(&pointer).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !cancelled(ctx, err) {
			logx.Error(postModule, "get_featured", "%v", err)
		}
		return nil
	}
	return &pointer
}

// SetFeatured 替换精选指针，postID 为 nil 表示取消精选。文章本身不会被修改。
func (s *PostService) SetFeatured(ctx context.Context, postID *string) bool {
	return writeOp(ctx, s.db, s.mode, postModule, "set_featured", db.FeaturedPointerID, func(q *gorm.DB) error {
		pointer := db.FeaturedPointer{ID: db.FeaturedPointerID, PostID: postID, UpdatedAt: time.Now()}
		return q.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"post_id", "updated_at"}),
		}).Create(&pointer).Error
	})
}

// ToggleFeatured 把文章设为精选；若它已经是精选则取消。返回操作后的精选状态。
func (s *PostService) ToggleFeatured(ctx context.Context, postID string) (bool, bool) {
	current := s.GetFeatured(ctx)
	if current != nil && current.PostID != nil && *current.PostID == postID {
		return false, s.SetFeatured(ctx, nil)
	}
	id := postID
	return true, s.SetFeatured(ctx, &id)
}

// FeaturedPost 在已获取的文章列表中解析精选指针。
func (s *PostService) FeaturedPost(ctx context.Context) *db.Post {
	return view.ResolveFeatured(s.ListAll(ctx), s.GetFeatured(ctx))
}

// Count 返回后端中真实的文章数量，不经过种子回退。
func (s *PostService) Count(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errNoDatabase
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.Post{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func buildPost(input PostInput) db.Post {
	title := strings.TrimSpace(input.Title)
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	format := input.ContentFormat
	if format == "" {
		format = db.ContentFormatMarkdown
	}
	published := input.PublishedDate
	if published.IsZero() {
		published = time.Now()
	}

	return db.Post{
		Title:         title,
		Slug:          slug,
		Excerpt:       strings.TrimSpace(input.Excerpt),
		Content:       input.Content,
		ContentFormat: format,
		PublishedDate: published,
		Category:      strings.TrimSpace(input.Category),
		Tags:          normalizeTags(input.Tags),
		CoverImage:    strings.TrimSpace(input.CoverImage),
		Archived:      input.Archived,
	}
}

// applyPatch 更新一条记录；记录不存在时返回 gorm.ErrRecordNotFound。
func applyPatch(q *gorm.DB, model any, id string, updates map[string]any) error {
	if len(updates) == 0 {
		var total int64
		if err := q.Model(model).Where("id = ?", id).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	result := q.Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
