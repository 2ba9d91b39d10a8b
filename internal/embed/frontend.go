package embed

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

//go:embed ui/*
var embeddedFiles embed.FS

// GetFrontendFS 获取内嵌的评分面板文件系统
func GetFrontendFS() fs.FS {
	return embeddedFiles
}

// SetupRouter 设置评分面板静态路由
func SetupRouter(r *gin.Engine) {
	r.Use(gzip.Gzip(gzip.BestCompression))

	frontendFS := GetFrontendFS()

	r.NoRoute(func(c *gin.Context) {
		// API 请求返回 404
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		indexHTML, err := fs.ReadFile(frontendFS, "ui/index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
}
