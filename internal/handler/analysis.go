package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/repository"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service"
)

type AnalysisHandler struct {
	grader *service.GraderService
	repo   repository.AnalysisRepository
}

func NewAnalysisHandler(grader *service.GraderService, repo repository.AnalysisRepository) *AnalysisHandler {
	return &AnalysisHandler{grader: grader, repo: repo}
}

// Create 评分远程仓库；仓库取数失败时返回 502 与失败报告
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req service.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
		return
	}

	report, err := h.grader.Grade(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "error_type": "canceled"})
		default:
			klog.Errorf("评分请求失败: repo=%s, error=%v", req.RepoURL, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "error_type": "analysis"})
		}
		return
	}

	if report.Failed() {
		c.JSON(http.StatusBadGateway, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

// List 列出历史报告，可按 repo 过滤
func (h *AnalysisHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	repoURL := c.Query("repo")

	var (
		reports []*domain.Report
		err     error
	)
	if repoURL != "" {
		reports, err = h.listByRepo(repoURL, limit)
	} else {
		reports, err = h.listRecent(limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	record, err := h.repo.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	report, err := record.ToReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) listRecent(limit int) ([]*domain.Report, error) {
	records, err := h.repo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return toReports(records)
}

func (h *AnalysisHandler) listByRepo(repoURL string, limit int) ([]*domain.Report, error) {
	records, err := h.repo.ListByRepo(repoURL, limit)
	if err != nil {
		return nil, err
	}
	return toReports(records)
}
