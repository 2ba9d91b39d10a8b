package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

var agentDescriptions = map[string]string{
	agents.IDCode:          "Analyzes code quality and patterns",
	agents.IDArchitecture:  "Evaluates design patterns and structure",
	agents.IDUIUX:          "Assesses interface quality and usability",
	agents.IDSecurity:      "Checks security practices and compliance",
	agents.IDInnovation:    "Evaluates novelty and creative use of technology",
	agents.IDFunctionality: "Assesses working features and completeness",
	agents.IDTechnical:     "Analyzes technical difficulty and architecture",
	agents.IDUIUXPolish:    "Evaluates visual design and user experience",
	agents.IDLearning:      "Applies patterns from past analyses",
}

// AgentInfo Agent 列表条目
type AgentInfo struct {
	Alias       string `json:"alias"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AgentHandler struct {
	registry agents.Registry
}

func NewAgentHandler(registry agents.Registry) *AgentHandler {
	return &AgentHandler{registry: registry}
}

// List 按注册顺序列出可用 Agent
func (h *AgentHandler) List(c *gin.Context) {
	list := h.registry.List()
	out := make([]AgentInfo, 0, len(list))
	for _, a := range list {
		out = append(out, AgentInfo{
			Alias:       agents.Alias(a.ID()),
			ID:          a.ID(),
			Name:        a.Name(),
			Description: agentDescriptions[a.ID()],
		})
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}
