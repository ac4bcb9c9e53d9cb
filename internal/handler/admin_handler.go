package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/service"
)

type postRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	ContentFormat string   `json:"contentFormat"`
	PublishedDate string   `json:"publishedDate"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	CoverImage    string   `json:"coverImage"`
	Archived      bool     `json:"archived"`
}

// postPatchRequest 的字段均为可选，缺省字段保持不变。
type postPatchRequest struct {
	Title         *string   `json:"title"`
	Slug          *string   `json:"slug"`
	Excerpt       *string   `json:"excerpt"`
	Content       *string   `json:"content"`
	ContentFormat *string   `json:"contentFormat"`
	PublishedDate *string   `json:"publishedDate"`
	Category      *string   `json:"category"`
	Tags          *[]string `json:"tags"`
	CoverImage    *string   `json:"coverImage"`
	Archived      *bool     `json:"archived"`
}

// requireStored 确认记录存在于后端；不存在时返回 404，查询失败时返回 500。
func requireStored(c *gin.Context, exists func(context.Context, string) (bool, error), id, notFound string) bool {
	ok, err := exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "操作失败，请稍后再试")
		return false
	}
	if !ok {
		respondError(c, http.StatusNotFound, notFound)
		return false
	}
	return true
}

type featuredRequest struct {
	PostID *string `json:"postId"`
}

// AdminListPosts 返回全部文章（包括已归档）以及当前精选文章 ID。
func (a *API) AdminListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	var featuredID *string
	if pointer := a.posts.GetFeatured(ctx); pointer != nil {
		featuredID = pointer.PostID
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":      a.posts.ListAll(ctx),
		"featuredId": featuredID,
	})
}

// AdminGetPost 返回单篇文章的原始数据，供编辑器使用。
func (a *API) AdminGetPost(c *gin.Context) {
	post := a.posts.Get(c.Request.Context(), c.Param("id"))
	if post == nil {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建文章。slug 为空时由标题生成。
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "文章数据格式错误") {
		return
	}

	published, ok := parseDate(req.PublishedDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "发布日期格式错误")
		return
	}

	draft := service.NewPostDraft(time.Now())
	draft.SetTitle(req.Title)
	if strings.TrimSpace(req.Slug) != "" {
		draft.SetSlug(req.Slug)
	}
	draft.SetExcerpt(req.Excerpt)
	if err := draft.SetContent(req.Content, req.ContentFormat); err != nil {
		respondDraftError(c, err)
		return
	}
	draft.SetPublishedDate(published)
	draft.SetCategory(req.Category)
	for _, tag := range req.Tags {
		draft.AddTag(tag)
	}
	draft.SetCoverImage(req.CoverImage)
	draft.SetArchived(req.Archived)

	if err := draft.Validate(); err != nil {
		respondDraftError(c, err)
		return
	}

	id, ok := a.posts.Add(c.Request.Context(), draft.Input())
	if !ok {
		respondError(c, http.StatusInternalServerError, "保存文章失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "slug": draft.Slug(), "success": true})
}

// UpdatePost 部分更新文章。
func (a *API) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if !requireStored(c, a.posts.Stored, id, "文章不存在") {
		return
	}

	var req postPatchRequest
	if !bindJSON(c, &req, "文章数据格式错误") {
		return
	}

	patch := service.PostPatch{
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		Category:   req.Category,
		Tags:       req.Tags,
		CoverImage: req.CoverImage,
		Archived:   req.Archived,
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		respondDraftError(c, service.ErrPostTitleRequired)
		return
	}
	if req.Slug != nil {
		slug := service.Slugify(*req.Slug)
		if slug == "" && req.Title != nil {
			slug = service.Slugify(*req.Title)
		}
		patch.Slug = &slug
	}
	if req.ContentFormat != nil {
		format := *req.ContentFormat
		if format != db.ContentFormatMarkdown && format != db.ContentFormatHTML {
			respondDraftError(c, service.ErrContentFormatInvalid)
			return
		}
		patch.ContentFormat = &format
	}
	if req.PublishedDate != nil {
		published, ok := parseDate(*req.PublishedDate)
		if !ok || published.IsZero() {
			respondError(c, http.StatusBadRequest, "发布日期格式错误")
			return
		}
		patch.PublishedDate = &published
	}

	respondWrite(c, a.posts.Update(ctx, id, patch), gin.H{"id": id})
}

// DeletePost 永久删除文章。
func (a *API) DeletePost(c *gin.Context) {
	respondWrite(c, a.posts.Delete(c.Request.Context(), c.Param("id")), nil)
}

// ToggleArchivePost 翻转文章的归档状态。
func (a *API) ToggleArchivePost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if !requireStored(c, a.posts.Stored, id, "文章不存在") {
		return
	}
	archived, ok := a.posts.ToggleArchived(ctx, id)
	respondWrite(c, ok, gin.H{"archived": archived})
}

// ToggleFeaturedPost 把文章设为精选；已是精选时取消。
func (a *API) ToggleFeaturedPost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if !requireStored(c, a.posts.Stored, id, "文章不存在") {
		return
	}
	featured, ok := a.posts.ToggleFeatured(ctx, id)
	respondWrite(c, ok, gin.H{"featured": featured})
}

// SetFeatured 直接替换精选指针，postId 为 null 时取消精选。
func (a *API) SetFeatured(c *gin.Context) {
	var req featuredRequest
	if !bindJSON(c, &req, "精选数据格式错误") {
		return
	}
	if req.PostID != nil && strings.TrimSpace(*req.PostID) == "" {
		req.PostID = nil
	}
	respondWrite(c, a.posts.SetFeatured(c.Request.Context(), req.PostID), gin.H{"postId": req.PostID})
}

func respondDraftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostTitleRequired):
		respondError(c, http.StatusBadRequest, "标题不能为空")
	case errors.Is(err, service.ErrPostContentRequired):
		respondError(c, http.StatusBadRequest, "内容不能为空")
	case errors.Is(err, service.ErrContentFormatInvalid):
		respondError(c, http.StatusBadRequest, "内容格式无效")
	case errors.Is(err, service.ErrGalleryTitleRequired):
		respondError(c, http.StatusBadRequest, "作品标题不能为空")
	case errors.Is(err, service.ErrGalleryImageMissing):
		respondError(c, http.StatusBadRequest, "请先上传作品图片")
	default:
		respondError(c, http.StatusBadRequest, err.Error())
	}
}
