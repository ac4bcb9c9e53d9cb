package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/service"
	"github.com/badlog/internal/view"
)

const (
	relatedPostLimit = 3
	recentPostLimit  = 3
)

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type postDetail struct {
	Post        db.Post   `json:"post"`
	HTML        string    `json:"html"`
	ReadingTime int       `json:"readingTime"`
	Related     []db.Post `json:"related"`
	Next        *db.Post  `json:"next"`
}

// ListPosts 返回按搜索词与分类筛选后的文章列表，已归档的文章不出现。
func (a *API) ListPosts(c *gin.Context) {
	all := a.posts.ListAll(c.Request.Context())
	query := view.PostQuery{Search: c.Query("search"), Category: c.Query("category")}

	c.JSON(http.StatusOK, gin.H{
		"posts":      view.FilterPosts(all, query),
		"categories": view.Categories(view.FilterPosts(all, view.PostQuery{})),
	})
}

// GetPost 返回文章详情、渲染后的正文、相关文章与系列中的下一篇。
func (a *API) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	post := a.posts.Get(ctx, c.Param("id"))
	if post == nil {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}

	visible := view.FilterPosts(a.posts.ListAll(ctx), view.PostQuery{})
	c.JSON(http.StatusOK, postDetail{
		Post:        *post,
		HTML:        renderContent(*post),
		ReadingTime: view.ReadingTime(post.Content),
		Related:     view.RelatedPosts(*post, visible, relatedPostLimit),
		Next:        view.NextInSeries(*post, visible),
	})
}

// Home 返回首页数据：精选文章、最新文章与首页区块。
func (a *API) Home(c *gin.Context) {
	ctx := c.Request.Context()
	visible := view.FilterPosts(a.posts.ListAll(ctx), view.PostQuery{})
	featured := view.ResolveFeatured(visible, a.posts.GetFeatured(ctx))

	excludeID := ""
	if featured != nil {
		excludeID = featured.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"featured": featured,
		"recent":   view.RecentPosts(visible, excludeID, recentPostLimit),
		"homeInfo": a.homeInfo.ListAll(ctx),
	})
}

// Gallery 返回作品集，支持 category 与 search 参数。
func (a *API) Gallery(c *gin.Context) {
	items := a.gallery.ListAll(c.Request.Context())
	query := view.GalleryQuery{Search: c.Query("search"), Category: c.Query("category")}

	c.JSON(http.StatusOK, gin.H{
		"items":      view.FilterGallery(items, query),
		"categories": view.GalleryCategories(items),
	})
}

// About 返回经历与技能。
func (a *API) About(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"experiences": a.experiences.ListAll(ctx),
		"skills":      a.skills.ListAll(ctx),
	})
}

// Subscribe 登记电子报订阅。重复订阅返回 200 与 success=false。
func (a *API) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bindJSON(c, &req, "請輸入有效的電子郵件地址") {
		return
	}
	c.JSON(http.StatusOK, a.subscribers.Subscribe(c.Request.Context(), req.Email))
}

// ListComments 返回文章评论，按时间正序。
func (a *API) ListComments(c *gin.Context) {
	comments := a.comments.ListByPost(c.Request.Context(), c.Param("id"))
	if comments == nil {
		comments = []db.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// AddComment 以当前登录用户身份发表评论。
func (a *API) AddComment(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}
	var req commentRequest
	if !bindJSON(c, &req, "评论内容不能为空") {
		return
	}

	ctx := c.Request.Context()
	postID := c.Param("id")
	if a.posts.Get(ctx, postID) == nil {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}

	comment, err := a.comments.Add(ctx, service.CommentInput{
		PostID:     postID,
		UserID:     user.UID,
		UserName:   user.DisplayName,
		UserAvatar: user.PhotoURL,
		Content:    req.Content,
	})
	if err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment 删除评论，仅作者或管理员可操作。
func (a *API) DeleteComment(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	err := a.comments.Delete(c.Request.Context(), c.Param("id"), service.Actor{UserID: user.UID, IsAdmin: user.IsAdmin})
	if err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommentEmpty):
		respondError(c, http.StatusBadRequest, "评论内容不能为空")
	case errors.Is(err, service.ErrCommentNotFound):
		respondError(c, http.StatusNotFound, "评论不存在")
	case errors.Is(err, service.ErrCommentForbidden):
		respondError(c, http.StatusForbidden, "只能删除自己的评论")
	default:
		respondError(c, http.StatusInternalServerError, "评论操作失败，请稍后再试")
	}
}

// Healthz 报告后端连接状态与当前模式。
func (a *API) Healthz(c *gin.Context) {
	connected := a.probe.CheckConnection(c.Request.Context())
	mode := "backend"
	if a.mode.Local() {
		mode = "local"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"connected": connected,
		"mode":      mode,
	})
}

func trimmedParam(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Param(key))
}
