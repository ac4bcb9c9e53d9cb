package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/service"
)

type galleryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	URL         string `json:"url"`
}

type galleryPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ImageWidth  *int    `json:"imageWidth"`
	ImageHeight *int    `json:"imageHeight"`
	Category    *string `json:"category"`
	Date        *string `json:"date"`
	URL         *string `json:"url"`
}

type experienceRequest struct {
	Title        string `json:"title" binding:"required"`
	Organization string `json:"organization"`
	Duration     string `json:"duration"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Order        int    `json:"order"`
	Color        string `json:"color"`
}

type experiencePatchRequest struct {
	Title        *string `json:"title"`
	Organization *string `json:"organization"`
	Duration     *string `json:"duration"`
	Description  *string `json:"description"`
	Type         *string `json:"type"`
	Order        *int    `json:"order"`
	Color        *string `json:"color"`
}

type skillRequest struct {
	ID       string   `json:"id"`
	Category string   `json:"category" binding:"required"`
	Items    []string `json:"items"`
	Color    string   `json:"color"`
	Order    int      `json:"order"`
}

type homeInfoRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	AccentColor *string `json:"accentColor"`
	Order       *int    `json:"order"`
}

type subscriberStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AdminListGallery 返回全部作品。
func (a *API) AdminListGallery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.gallery.ListAll(c.Request.Context())})
}

// CreateGalleryItem 新增作品，必须已有图片地址。
func (a *API) CreateGalleryItem(c *gin.Context) {
	var req galleryRequest
	if !bindJSON(c, &req, "作品数据格式错误") {
		return
	}

	draft := service.NewGalleryDraft()
	draft.SetTitle(req.Title)
	draft.SetDescription(req.Description)
	draft.SetImage(req.ImageURL, req.ImageWidth, req.ImageHeight)
	draft.SetCategory(req.Category)
	draft.SetDate(req.Date)
	draft.SetURL(req.URL)
	if err := draft.Validate(); err != nil {
		respondDraftError(c, err)
		return
	}

	id, ok := a.gallery.Add(c.Request.Context(), draft.Item())
	if !ok {
		respondError(c, http.StatusInternalServerError, "保存作品失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "success": true})
}

// UpdateGalleryItem 部分更新作品。
func (a *API) UpdateGalleryItem(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if !requireStored(c, a.gallery.Stored, id, "作品不存在") {
		return
	}
	existing := a.gallery.Get(ctx, id)
	if existing == nil {
		respondError(c, http.StatusNotFound, "作品不存在")
		return
	}

	var req galleryPatchRequest
	if !bindJSON(c, &req, "作品数据格式错误") {
		return
	}

	// 用合并后的草稿校验，避免把标题或图片清空
	draft := service.GalleryDraftFromItem(*existing)
	if req.Title != nil {
		draft.SetTitle(*req.Title)
	}
	if req.ImageURL != nil {
		draft.SetImage(*req.ImageURL, 0, 0)
	}
	if err := draft.Validate(); err != nil {
		respondDraftError(c, err)
		return
	}

	patch := service.GalleryPatch{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageWidth:  req.ImageWidth,
		ImageHeight: req.ImageHeight,
		Category:    req.Category,
		Date:        req.Date,
		URL:         req.URL,
	}
	respondWrite(c, a.gallery.Update(ctx, id, patch), gin.H{"id": id})
}

// DeleteGalleryItem 删除作品。
func (a *API) DeleteGalleryItem(c *gin.Context) {
	respondWrite(c, a.gallery.Delete(c.Request.Context(), c.Param("id")), nil)
}

// AdminListExperiences 返回全部经历，按 order 排序。
func (a *API) AdminListExperiences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"experiences": a.experiences.ListAll(c.Request.Context())})
}

// CreateExperience 新增经历。
func (a *API) CreateExperience(c *gin.Context) {
	var req experienceRequest
	if !bindJSON(c, &req, "经历数据格式错误") {
		return
	}
	id, ok := a.experiences.Add(c.Request.Context(), db.Experience{
		Title:        req.Title,
		Organization: req.Organization,
		Duration:     req.Duration,
		Description:  req.Description,
		Type:         req.Type,
		Order:        req.Order,
		Color:        req.Color,
	})
	if !ok {
		respondError(c, http.StatusInternalServerError, "保存经历失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "success": true})
}

// UpdateExperience 部分更新经历。
func (a *API) UpdateExperience(c *gin.Context) {
	var req experiencePatchRequest
	if !bindJSON(c, &req, "经历数据格式错误") {
		return
	}
	id := c.Param("id")
	patch := service.ExperiencePatch{
		Title:        req.Title,
		Organization: req.Organization,
		Duration:     req.Duration,
		Description:  req.Description,
		Type:         req.Type,
		Order:        req.Order,
		Color:        req.Color,
	}
	respondWrite(c, a.experiences.Update(c.Request.Context(), id, patch), gin.H{"id": id})
}

// DeleteExperience 删除经历。
func (a *API) DeleteExperience(c *gin.Context) {
	respondWrite(c, a.experiences.Delete(c.Request.Context(), c.Param("id")), nil)
}

// SaveSkill 新增或覆盖技能分类，请求中带 id 时按 id 合并写入。
func (a *API) SaveSkill(c *gin.Context) {
	var req skillRequest
	if !bindJSON(c, &req, "技能数据格式错误") {
		return
	}
	if id := trimmedParam(c, "id"); id != "" {
		req.ID = id
	}
	id, ok := a.skills.Save(c.Request.Context(), db.SkillCategory{
		ID:       req.ID,
		Category: req.Category,
		Items:    datatypes.JSONSlice[string](req.Items),
		Color:    req.Color,
		Order:    req.Order,
	})
	respondWrite(c, ok, gin.H{"id": id})
}

// DeleteSkill 删除技能分类。
func (a *API) DeleteSkill(c *gin.Context) {
	respondWrite(c, a.skills.Delete(c.Request.Context(), c.Param("id")), nil)
}

// UpsertHomeInfo 合并写入首页区块，不存在时创建。
func (a *API) UpsertHomeInfo(c *gin.Context) {
	var req homeInfoRequest
	if !bindJSON(c, &req, "首页区块数据格式错误") {
		return
	}
	id := trimmedParam(c, "id")
	if id == "" {
		respondError(c, http.StatusBadRequest, "缺少区块 ID")
		return
	}
	patch := service.HomeInfoPatch{
		Title:       req.Title,
		Content:     req.Content,
		AccentColor: req.AccentColor,
		Order:       req.Order,
	}
	respondWrite(c, a.homeInfo.Upsert(c.Request.Context(), id, patch), gin.H{"id": id})
}

// InitializeHomeInfo 在首页区块为空时写入默认内容。
func (a *API) InitializeHomeInfo(c *gin.Context) {
	if err := a.homeInfo.InitializeDefaults(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "初始化首页区块失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "homeInfo": a.homeInfo.ListAll(c.Request.Context())})
}

// ListSubscribers 返回全部订阅者，最新的在前。
func (a *API) ListSubscribers(c *gin.Context) {
	subscribers := a.subscribers.ListAll(c.Request.Context())
	if subscribers == nil {
		subscribers = []db.Subscriber{}
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers})
}

// SetSubscriberStatus 启用或停用订阅者。
func (a *API) SetSubscriberStatus(c *gin.Context) {
	var req subscriberStatusRequest
	if !bindJSON(c, &req, "订阅状态格式错误") {
		return
	}
	id := c.Param("id")
	respondWrite(c, a.subscribers.SetActive(c.Request.Context(), id, *req.Active), gin.H{"id": id, "active": *req.Active})
}

// DeleteSubscriber 删除订阅者。
func (a *API) DeleteSubscriber(c *gin.Context) {
	respondWrite(c, a.subscribers.Delete(c.Request.Context(), c.Param("id")), nil)
}

// ExportSubscribers 下载活跃订阅者 CSV。
func (a *API) ExportSubscribers(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := a.subscribers.ExportActiveCSV(c.Request.Context(), &buf); err != nil {
		if errors.Is(err, service.ErrNoActiveSubscribers) {
			respondError(c, http.StatusNotFound, "沒有活躍的訂閱者可以匯出")
			return
		}
		respondError(c, http.StatusInternalServerError, "匯出失敗")
		return
	}

	filename := fmt.Sprintf("subscribers_%s.csv", time.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
