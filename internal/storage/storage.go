// Package storage 保存上传的图片并返回可公开访问的地址。
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/badlog/internal/logx"
)

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrInvalidName = errors.New("file name is invalid")
)

// ProgressFunc 接收 0 到 100 的上传进度。
type ProgressFunc func(percent float64)

// ObjectStorage 是对象存储的抽象。
type ObjectStorage interface {
	Upload(ctx context.Context, folder, name string, r io.Reader, size int64, progress ProgressFunc) (string, error)
}

// ModeReporter 报告当前是否应跳过真实上传，由 BackendMode 实现。
type ModeReporter interface {
	Local() bool
}

// LocalStorage 把文件写到本地目录，通过静态路由对外提供。
type LocalStorage struct {
	dir     string
	baseURL string
	mode    ModeReporter
	now     func() time.Time
}

// NewLocalStorage creates a LocalStorage rooted at dir and served under baseURL.
func NewLocalStorage(dir, baseURL string, mode ModeReporter) *LocalStorage {
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		mode:    mode,
		now:     time.Now,
	}
}

// MockURL 是本地模式下返回的占位地址。
func MockURL(name string) string {
	return "https://example.com/mock-image/" + name
}

// Upload 写入 folder/<unixmilli>_<name> 并返回其 URL。本地模式下不写文件，只返回占位地址。
func (s *LocalStorage) Upload(ctx context.Context, folder, name string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	name = sanitizeName(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if s.mode != nil && s.mode.Local() {
		logx.Info("storage", "upload", "local mode, upload of %s skipped", name)
		if progress != nil {
			progress(100)
		}
		return MockURL(name), nil
	}

	folder = sanitizeFolder(folder)
	dir := filepath.Join(s.dir, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("%d_%s", s.now().UnixMilli(), name)
	target := filepath.Join(dir, filename)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, &progressReader{ctx: ctx, r: r, total: size, report: progress})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = ErrEmptyFile
	}
	if err != nil {
		os.Remove(target)
		return "", err
	}
	if progress != nil {
		progress(100)
	}

	return s.baseURL + "/" + path.Join(folder, filename), nil
}

// ImageSize 解析图片头部得到宽高，支持 png、jpeg、gif 与 webp。
func ImageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.ReplaceAll(name, " ", "_")
}

func sanitizeFolder(folder string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(folder))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "images"
	}
	return cleaned
}

type progressReader struct {
	ctx    context.Context
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.report != nil && p.total > 0 && n > 0 {
		p.report(min(float64(p.read)/float64(p.total)*100, 100))
	}
	return n, err
}
