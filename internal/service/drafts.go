package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/badlog/internal/db"
)

var (
	ErrPostTitleRequired    = errors.New("post title is required")
	ErrPostContentRequired  = errors.New("post content is required")
	ErrContentFormatInvalid = errors.New("content format is invalid")
	ErrGalleryTitleRequired = errors.New("gallery title is required")
	ErrGalleryImageMissing  = errors.New("gallery image is required")
)

// PostPatch 描述文章的部分更新，nil 字段保持不变。
type PostPatch struct {
	Title         *string
	Slug          *string
	Excerpt       *string
	Content       *string
	ContentFormat *string
	PublishedDate *time.Time
	Category      *string
	Tags          *[]string
	CoverImage    *string
	Archived      *bool
}

func (p PostPatch) updates() map[string]any {
	updates := map[string]any{}
	setString(updates, "title", p.Title)
	setString(updates, "slug", p.Slug)
	setString(updates, "excerpt", p.Excerpt)
	if p.Content != nil {
		updates["content"] = *p.Content
	}
	setString(updates, "content_format", p.ContentFormat)
	if p.PublishedDate != nil {
		updates["published_date"] = *p.PublishedDate
	}
	setString(updates, "category", p.Category)
	if p.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](normalizeTags(*p.Tags))
	}
	setString(updates, "cover_image", p.CoverImage)
	if p.Archived != nil {
		updates["archived"] = *p.Archived
	}
	return updates
}

// GalleryPatch 描述作品的部分更新。
type GalleryPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	ImageWidth  *int
	ImageHeight *int
	Category    *string
	Date        *string
	URL         *string
}

func (p GalleryPatch) updates() map[string]any {
	updates := map[string]any{}
	setString(updates, "title", p.Title)
	setString(updates, "description", p.Description)
	setString(updates, "image_url", p.ImageURL)
	if p.ImageWidth != nil {
		updates["image_width"] = *p.ImageWidth
	}
	if p.ImageHeight != nil {
		updates["image_height"] = *p.ImageHeight
	}
	setString(updates, "category", p.Category)
	setString(updates, "date", p.Date)
	setString(updates, "url", p.URL)
	return updates
}

// ExperiencePatch 描述经历的部分更新。
type ExperiencePatch struct {
	Title        *string
	Organization *string
	Duration     *string
	Description  *string
	Type         *string
	Order        *int
	Color        *string
}

func (p ExperiencePatch) updates() map[string]any {
	updates := map[string]any{}
	setString(updates, "title", p.Title)
	setString(updates, "organization", p.Organization)
	setString(updates, "duration", p.Duration)
	setString(updates, "description", p.Description)
	setString(updates, "type", p.Type)
	if p.Order != nil {
		updates["sort_order"] = *p.Order
	}
	setString(updates, "color", p.Color)
	return updates
}

// HomeInfoPatch 描述首页区块的合并写入。
type HomeInfoPatch struct {
	Title       *string
	Content     *string
	AccentColor *string
	Order       *int
}

func (p HomeInfoPatch) updates() map[string]any {
	updates := map[string]any{}
	setString(updates, "title", p.Title)
	if p.Content != nil {
		updates["content"] = *p.Content
	}
	setString(updates, "accent_color", p.AccentColor)
	if p.Order != nil {
		updates["sort_order"] = *p.Order
	}
	return updates
}

func setString(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}

// PostDraft 是后台文章表单的状态。字段只能通过方法修改，以保证标题与 slug 等派生字段一致。
type PostDraft struct {
	title         string
	slug          string
	slugEdited    bool
	excerpt       string
	content       string
	contentFormat string
	publishedDate time.Time
	category      string
	tags          []string
	coverImage    string
	archived      bool
}

// NewPostDraft 返回一个空白草稿，默认 Markdown 格式、发布时间为 now。
func NewPostDraft(now time.Time) *PostDraft {
	return &PostDraft{contentFormat: db.ContentFormatMarkdown, publishedDate: now}
}

// DraftFromPost 用已有文章初始化草稿，编辑标题不会再改写 slug。
func DraftFromPost(post db.Post) *PostDraft {
	return &PostDraft{
		title:         post.Title,
		slug:          post.Slug,
		slugEdited:    post.Slug != "",
		excerpt:       post.Excerpt,
		content:       post.Content,
		contentFormat: post.ContentFormat,
		publishedDate: post.PublishedDate,
		category:      post.Category,
		tags:          append([]string(nil), post.Tags...),
		coverImage:    post.CoverImage,
		archived:      post.Archived,
	}
}

// SetTitle 更新标题；slug 未被手动编辑时同步生成。
func (d *PostDraft) SetTitle(title string) {
	d.title = strings.TrimSpace(title)
	if !d.slugEdited {
		d.slug = Slugify(d.title)
	}
}

// SetSlug 手动设置 slug，空字符串恢复自动生成。
func (d *PostDraft) SetSlug(slug string) {
	slug = Slugify(slug)
	if slug == "" {
		d.slugEdited = false
		d.slug = Slugify(d.title)
		return
	}
	d.slugEdited = true
	d.slug = slug
}

// SetExcerpt sets the summary shown in post lists.
func (d *PostDraft) SetExcerpt(excerpt string) {
	d.excerpt = strings.TrimSpace(excerpt)
}

// SetContent 设置正文及其格式，format 为空时沿用当前格式。
func (d *PostDraft) SetContent(content, format string) error {
	if format != "" {
		if format != db.ContentFormatMarkdown && format != db.ContentFormatHTML {
			return ErrContentFormatInvalid
		}
		d.contentFormat = format
	}
	d.content = content
	return nil
}

// SetPublishedDate sets the publish date; the zero value keeps the current one.
func (d *PostDraft) SetPublishedDate(date time.Time) {
	if !date.IsZero() {
		d.publishedDate = date
	}
}

// SetCategory sets the post category.
func (d *PostDraft) SetCategory(category string) {
	d.category = strings.TrimSpace(category)
}

// AddTag 追加标签，重复或空白标签被忽略。
func (d *PostDraft) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, existing := range d.tags {
		if existing == tag {
			return
		}
	}
	d.tags = append(d.tags, tag)
}

// RemoveTag drops a tag if present.
func (d *PostDraft) RemoveTag(tag string) {
	out := d.tags[:0]
	for _, existing := range d.tags {
		if existing != tag {
			out = append(out, existing)
		}
	}
	d.tags = out
}

// SetCoverImage sets the cover image URL.
func (d *PostDraft) SetCoverImage(url string) {
	d.coverImage = strings.TrimSpace(url)
}

// SetArchived marks the post as archived.
func (d *PostDraft) SetArchived(archived bool) {
	d.archived = archived
}

// Title returns the current title.
func (d *PostDraft) Title() string { return d.title }
// Slug returns the current slug.
func (d *PostDraft) Slug() string  { return d.slug }
// Tags returns a copy of the current tags.
func (d *PostDraft) Tags() []string {
	return append([]string(nil), d.tags...)
}

// Validate 检查提交前的必填项。
func (d *PostDraft) Validate() error {
	if d.title == "" {
		return ErrPostTitleRequired
	}
	if strings.TrimSpace(d.content) == "" {
		return ErrPostContentRequired
	}
	return nil
}

// Input 转换为创建参数。
func (d *PostDraft) Input() PostInput {
	return PostInput{
		Title:         d.title,
		Slug:          d.slug,
		Excerpt:       d.excerpt,
		Content:       d.content,
		ContentFormat: d.contentFormat,
		PublishedDate: d.publishedDate,
		Category:      d.category,
		Tags:          d.Tags(),
		CoverImage:    d.coverImage,
		Archived:      d.archived,
	}
}

// Patch 转换为覆盖全部可编辑字段的更新。
func (d *PostDraft) Patch() PostPatch {
	in := d.Input()
	return PostPatch{
		Title:         &in.Title,
		Slug:          &in.Slug,
		Excerpt:       &in.Excerpt,
		Content:       &in.Content,
		ContentFormat: &in.ContentFormat,
		PublishedDate: &in.PublishedDate,
		Category:      &in.Category,
		Tags:          &in.Tags,
		CoverImage:    &in.CoverImage,
		Archived:      &in.Archived,
	}
}

// GalleryDraft 是后台作品表单的状态。
type GalleryDraft struct {
	title       string
	description string
	imageURL    string
	imageWidth  int
	imageHeight int
	category    string
	date        string
	url         string
}

// NewGalleryDraft 创建空白的作品草稿。
func NewGalleryDraft() *GalleryDraft {
	return &GalleryDraft{}
}

// GalleryDraftFromItem 以已有作品为初始值创建草稿，用于编辑。
func GalleryDraftFromItem(item db.GalleryItem) *GalleryDraft {
	return &GalleryDraft{
		title:       item.Title,
		description: item.Description,
		imageURL:    item.ImageURL,
		imageWidth:  item.ImageWidth,
		imageHeight: item.ImageHeight,
		category:    item.Category,
		date:        item.Date,
		url:         item.URL,
	}
}

// SetTitle sets the item title.
func (d *GalleryDraft) SetTitle(title string) {
	d.title = strings.TrimSpace(title)
}

// SetDescription sets the item description.
func (d *GalleryDraft) SetDescription(description string) {
	d.description = strings.TrimSpace(description)
}

// SetImage 设置图片地址，尺寸未知时传 0。
func (d *GalleryDraft) SetImage(url string, width, height int) {
	d.imageURL = strings.TrimSpace(url)
	d.imageWidth = max(width, 0)
	d.imageHeight = max(height, 0)
}

// SetCategory sets the gallery category.
func (d *GalleryDraft) SetCategory(category string) {
	d.category = strings.TrimSpace(category)
}

// SetDate sets the display date.
func (d *GalleryDraft) SetDate(date string) {
	d.date = strings.TrimSpace(date)
}

// SetURL sets the external project link.
func (d *GalleryDraft) SetURL(url string) {
	d.url = strings.TrimSpace(url)
}

// Validate 检查标题与图片是否已填写。
func (d *GalleryDraft) Validate() error {
	if d.title == "" {
		return ErrGalleryTitleRequired
	}
	if d.imageURL == "" {
		return ErrGalleryImageMissing
	}
	return nil
}

// Item 返回可写入后端的作品。
func (d *GalleryDraft) Item() db.GalleryItem {
	return db.GalleryItem{
		Title:       d.title,
		Description: d.description,
		ImageURL:    d.imageURL,
		ImageWidth:  d.imageWidth,
		ImageHeight: d.imageHeight,
		Category:    d.category,
		Date:        d.date,
		URL:         d.url,
	}
}

// Patch 返回包含全部可编辑字段的更新。
func (d *GalleryDraft) Patch() GalleryPatch {
	item := d.Item()
	return GalleryPatch{
		Title:       &item.Title,
		Description: &item.Description,
		ImageURL:    &item.ImageURL,
		ImageWidth:  &item.ImageWidth,
		ImageHeight: &item.ImageHeight,
		Category:    &item.Category,
		Date:        &item.Date,
		URL:         &item.URL,
	}
}
