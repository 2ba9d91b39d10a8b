package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// Agent 标识
const (
	IDCode          = "code_analysis"
	IDArchitecture  = "architecture"
	IDUIUX          = "ui_ux"
	IDSecurity      = "security"
	IDInnovation    = "innovation"
	IDFunctionality = "functionality"
	IDTechnical     = "technical"
	IDUIUXPolish    = "ui_ux_polish"
	IDLearning      = "learning"
)

// AllIDs 所有 Agent 标识，按默认执行顺序排列
var AllIDs = []string{
	IDCode,
	IDArchitecture,
	IDUIUX,
	IDSecurity,
	IDInnovation,
	IDFunctionality,
	IDTechnical,
	IDUIUXPolish,
	IDLearning,
}

// numericAliases 兼容旧前端使用的数字编号
var numericAliases = map[string]string{
	"1": IDCode,
	"2": IDArchitecture,
	"3": IDUIUX,
	"4": IDSecurity,
	"5": IDInnovation,
	"6": IDFunctionality,
	"7": IDTechnical,
	"8": IDUIUXPolish,
	"9": IDLearning,
}

// categoryNames 展示用类别名
var categoryNames = map[string]string{
	IDCode:          "Code Quality",
	IDArchitecture:  "Architecture",
	IDUIUX:          "UI/UX",
	IDSecurity:      "Security",
	IDInnovation:    "Innovation",
	IDFunctionality: "Functionality",
	IDTechnical:     "Technical Complexity",
	IDUIUXPolish:    "UI/UX Polish",
	IDLearning:      "Learning",
}

// ScoringAgent 评分 Agent 统一接口。
// Analyze 不得修改 ec；数据缺失时返回低分与低置信度而不是错误。
type ScoringAgent interface {
	ID() string
	Name() string
	Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error)
}

// CategoryName 返回 Agent 对应的类别名
func CategoryName(id string) string {
	if name, ok := categoryNames[id]; ok {
		return name
	}
	return id
}

// Alias 返回 Agent 的数字别名，没有别名时返回空串
func Alias(id string) string {
	for alias, target := range numericAliases {
		if target == id {
			return alias
		}
	}
	return ""
}

// CanonicalID 将数字别名或大小写变体规范化为标准 ID
func CanonicalID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := numericAliases[id]; ok {
		return alias, nil
	}
	if _, ok := categoryNames[id]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrAgentNotFound, raw)
}

// NormalizeSelection 规范化 Agent 选择：nil 表示全部；空切片视为无效输入。
// 返回去重并排序后的 ID 列表。
func NormalizeSelection(selected []string) ([]string, error) {
	if selected == nil {
		out := append([]string(nil), AllIDs...)
		sort.Strings(out)
		return out, nil
	}
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	seen := make(map[string]bool, len(selected))
	out := make([]string, 0, len(selected))
	for _, raw := range selected {
		id, err := CanonicalID(raw)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// NewDefaultAgents 创建全部九个 Agent，learning 使用传入的 store
func NewDefaultAgents(store LearningStore) []ScoringAgent {
	return []ScoringAgent{
		NewCodeAgent(),
		NewArchitectureAgent(),
		NewUIUXAgent(),
		NewSecurityAgent(),
		NewInnovationAgent(),
		NewFunctionalityAgent(),
		NewTechnicalAgent(),
		NewUIUXPolishAgent(),
		NewLearningAgent(store),
	}
}
