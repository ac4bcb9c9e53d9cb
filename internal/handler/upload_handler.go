package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/storage"
)

const maxUploadSize = 10 << 20

// UploadImage 处理图片上传请求，folder 参数决定存放目录（如 blog-images、gallery）。
func (a *API) UploadImage(c *gin.Context) {
	// 获取上传的文件
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片", "success": 0})
		return
	}

	// 检查文件类型
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件", "success": 0})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "图片不能超过 10MB", "success": 0})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败", "success": 0})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败", "success": 0})
		return
	}

	width, height, err := storage.ImageSize(data)
	if err != nil {
		// SVG 等格式无法解码尺寸，仍然允许上传
		logx.Warn("upload", "image_size", "%s: %v", file.Filename, err)
	}

	folder := c.DefaultPostForm("folder", "blog-images")
	var progress float64
	url, err := a.storage.Upload(c.Request.Context(), folder, file.Filename, bytes.NewReader(data), int64(len(data)), func(p float64) {
		progress = p
	})
	if err != nil {
		logx.Error("upload", "save", "%s: %v", file.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "上传成功",
		"data": gin.H{
			"url":      url,
			"width":    width,
			"height":   height,
			"progress": progress,
		},
	})
}
