// Package seed 提供随二进制一同发布的静态内容，在后端不可用或为空时作为只读备份。
package seed

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/badlog/internal/db"
)

//go:embed posts/*.md content.yaml
var files embed.FS

const dateLayout = "2006-01-02"

type postMatter struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Slug          string   `yaml:"slug"`
	Excerpt       string   `yaml:"excerpt"`
	PublishedDate string   `yaml:"publishedDate"`
	Category      string   `yaml:"category"`
	Tags          []string `yaml:"tags"`
	CoverImage    string   `yaml:"coverImage"`
	Archived      bool     `yaml:"archived"`
}

type contentFile struct {
	Gallery     []db.GalleryItem   `yaml:"gallery"`
	Experiences []db.Experience    `yaml:"experiences"`
	Skills      []db.SkillCategory `yaml:"skills"`
	HomeInfo    []db.HomeInfo      `yaml:"homeInfo"`
}

// Content 是解析后的种子数据。所有访问方法都返回副本，调用方无法修改种子本身。
type Content struct {
	posts       []db.Post
	gallery     []db.GalleryItem
	experiences []db.Experience
	skills      []db.SkillCategory
	homeInfo    []db.HomeInfo
}

var (
	loadOnce sync.Once
	loaded   *Content
	loadErr  error
)

// Load 解析内嵌的种子文件，结果在进程内缓存。
func Load() (*Content, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(files)
	})
	return loaded, loadErr
}

// MustLoad 与 Load 相同，但解析失败时 panic。内嵌文件在编译期固定，失败只可能是打包错误。
func MustLoad() *Content {
	content, err := Load()
	if err != nil {
		panic(err)
	}
	return content
}

func parse(fsys fs.FS) (*Content, error) {
	posts, err := parsePosts(fsys)
	if err != nil {
		return nil, err
	}

	raw, err := fs.ReadFile(fsys, "content.yaml")
	if err != nil {
		return nil, fmt.Errorf("read seed content: %w", err)
	}
	var cf contentFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("parse seed content: %w", err)
	}

	return &Content{
		posts:       posts,
		gallery:     cf.Gallery,
		experiences: cf.Experiences,
		skills:      cf.Skills,
		homeInfo:    cf.HomeInfo,
	}, nil
}

func parsePosts(fsys fs.FS) ([]db.Post, error) {
	names, err := fs.Glob(fsys, "posts/*.md")
	if err != nil {
		return nil, err
	}
	// 文件名前缀决定固定顺序
	sort.Strings(names)

	posts := make([]db.Post, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		var matter postMatter
		body, err := frontmatter.Parse(bytes.NewReader(raw), &matter)
		if err != nil {
			return nil, fmt.Errorf("parse front matter of %s: %w", name, err)
		}
		if matter.ID == "" {
			return nil, fmt.Errorf("seed post %s has no id", name)
		}

		published, err := time.Parse(dateLayout, matter.PublishedDate)
		if err != nil {
			return nil, fmt.Errorf("parse published date of %s: %w", name, err)
		}

		posts = append(posts, db.Post{
			ID:            matter.ID,
			Title:         matter.Title,
			Slug:          matter.Slug,
			Excerpt:       matter.Excerpt,
			Content:       strings.TrimSpace(string(body)),
			ContentFormat: db.ContentFormatMarkdown,
			PublishedDate: published.UTC(),
			Category:      matter.Category,
			Tags:          append([]string(nil), matter.Tags...),
			CoverImage:    matter.CoverImage,
			Archived:      matter.Archived,
		})
	}
	return posts, nil
}

// Posts 按固定顺序返回种子文章。
func (c *Content) Posts() []db.Post {
	out := make([]db.Post, len(c.posts))
	for i, p := range c.posts {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}

// Post 按 ID 查找种子文章。
func (c *Content) Post(id string) (db.Post, bool) {
	for _, p := range c.posts {
		if p.ID == id {
			p.Tags = append([]string(nil), p.Tags...)
			return p, true
		}
	}
	return db.Post{}, false
}

// Gallery 返回种子作品的副本。
func (c *Content) Gallery() []db.GalleryItem {
	return append([]db.GalleryItem(nil), c.gallery...)
}

// Experiences 返回种子经历的副本。
func (c *Content) Experiences() []db.Experience {
	return append([]db.Experience(nil), c.experiences...)
}

// Skills 返回种子技能分类的副本，Items 也会被复制。
func (c *Content) Skills() []db.SkillCategory {
	out := make([]db.SkillCategory, len(c.skills))
	for i, s := range c.skills {
		s.Items = append([]string(nil), s.Items...)
		out[i] = s
	}
	return out
}

// HomeInfo 返回默认的首页区块。
func (c *Content) HomeInfo() []db.HomeInfo {
	return append([]db.HomeInfo(nil), c.homeInfo...)
}

// Subscribers 没有种子数据。
func (c *Content) Subscribers() []db.Subscriber {
	return nil
}

// Comments 没有种子数据。
func (c *Content) Comments() []db.Comment {
	return nil
}
