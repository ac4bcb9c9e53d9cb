package handler

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderContent 把文章正文转换为安全的 HTML。HTML 格式的正文只做清洗，不再解析。
func renderContent(post db.Post) string {
	if post.ContentFormat == db.ContentFormatHTML {
		return sanitizer.Sanitize(post.Content)
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(post.Content), &buf); err != nil {
		logx.Warn("render", "markdown", "post %s: %v", post.ID, err)
		return sanitizer.Sanitize(post.Content)
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}
