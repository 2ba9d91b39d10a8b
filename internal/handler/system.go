package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service"
)

// LearningStatsProvider 学习统计来源
type LearningStatsProvider interface {
	Stats() agents.LearningStats
}

// SystemHandler 缓存、学习统计与健康检查
type SystemHandler struct {
	grader   *service.GraderService
	learning LearningStatsProvider
}

func NewSystemHandler(grader *service.GraderService, learning LearningStatsProvider) *SystemHandler {
	return &SystemHandler{grader: grader, learning: learning}
}

func (h *SystemHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.grader.CacheStats())
}

func (h *SystemHandler) ClearCache(c *gin.Context) {
	h.grader.ClearCache()
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}

func (h *SystemHandler) LearningStats(c *gin.Context) {
	if h.learning == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "learning agent not registered"})
		return
	}
	c.JSON(http.StatusOK, h.learning.Stats())
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
