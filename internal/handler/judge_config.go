package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/judgeconfig"
)

type JudgeConfigHandler struct {
	store *judgeconfig.Store
	bus   *eventbus.JudgeConfigEventBus
}

func NewJudgeConfigHandler(store *judgeconfig.Store, bus *eventbus.JudgeConfigEventBus) *JudgeConfigHandler {
	return &JudgeConfigHandler{store: store, bus: bus}
}

// UpdateWeightsRequest 更新权重请求
type UpdateWeightsRequest struct {
	Weights map[string]int `json:"weights" binding:"required"`
}

// Get 返回当前权重、类别名与可用预设
func (h *JudgeConfigHandler) Get(c *gin.Context) {
	criteria := make(map[string]string, len(agents.AllIDs))
	for _, id := range agents.AllIDs {
		criteria[id] = agents.CategoryName(id)
	}
	c.JSON(http.StatusOK, gin.H{
		"config":   h.store.Document(),
		"criteria": criteria,
		"presets":  judgeconfig.PresetNames(),
	})
}

func (h *JudgeConfigHandler) Update(c *gin.Context) {
	var req UpdateWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetWeights(req.Weights); err != nil {
		h.writeError(c, err)
		return
	}
	h.publish(c, "")
	c.JSON(http.StatusOK, h.store.Document())
}

func (h *JudgeConfigHandler) ApplyPreset(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.ApplyPreset(name); err != nil {
		h.writeError(c, err)
		return
	}
	h.publish(c, name)
	c.JSON(http.StatusOK, h.store.Document())
}

func (h *JudgeConfigHandler) ListPresets(c *gin.Context) {
	out := make(map[string]map[string]int)
	for _, name := range judgeconfig.PresetNames() {
		weights, _ := judgeconfig.Preset(name)
		out[name] = weights
	}
	c.JSON(http.StatusOK, out)
}

func (h *JudgeConfigHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, judgeconfig.ErrInvalidWeights):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, judgeconfig.ErrPresetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *JudgeConfigHandler) publish(c *gin.Context, preset string) {
	if h.bus == nil {
		return
	}
	event := eventbus.JudgeConfigEvent{Type: eventbus.JudgeWeightsUpdated, Preset: preset, Weights: h.store.Weights()}
	if err := h.bus.Publish(c.Request.Context(), event); err != nil {
		klog.Warningf("权重变更事件处理失败: %v", err)
	}
}
