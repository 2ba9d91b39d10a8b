package domain

import (
	"maps"
	"slices"
	"time"
)

// AgentResult 单个 Agent 的评分结果，每次调用新建，由调用方独占
type AgentResult struct {
	AgentID         string         `json:"agent_id"`
	AgentName       string         `json:"agent_name"`
	Score           int            `json:"score"`
	Confidence      float64        `json:"confidence"`
	Evidence        []string       `json:"evidence"`
	Recommendations []string       `json:"recommendations"`
	Insights        []string       `json:"insights"`
	Risks           []string       `json:"risks"`
	Comment         string         `json:"comment"`
	Metrics         map[string]int `json:"metrics,omitempty"`
	Failed          bool           `json:"failed,omitempty"`
}

// Finding 带来源 Agent 的证据/建议/风险条目
type Finding struct {
	SourceAgent string `json:"source_agent"`
	Text        string `json:"text"`
}

// CategoryBreakdown 单个评分类别的展示明细
type CategoryBreakdown struct {
	AgentID    string   `json:"agent_id"`
	Score      int      `json:"score"`
	Weight     float64  `json:"weight"`
	Evidence   []string `json:"evidence"`
	Comment    string   `json:"comment"`
	Confidence float64  `json:"confidence"`
}

// PassFail 总分三态结论
type PassFail string

const (
	Pass       PassFail = "pass"
	Borderline PassFail = "borderline"
	Fail       PassFail = "fail"
)

// PassFailFor 根据总分计算结论：>=7 pass，>=5 borderline，否则 fail
func PassFailFor(total int) PassFail {
	switch {
	case total >= 7:
		return Pass
	case total >= 5:
		return Borderline
	default:
		return Fail
	}
}

// Verdict 聚合后的评分结论。
// TotalScore 是权威总分（置信度加权平均）；WeightedTotal 与 Calculation 仅用于展示。
type Verdict struct {
	TotalScore      int                          `json:"total_score"`
	PassFail        PassFail                     `json:"pass_fail"`
	Confidence      float64                      `json:"confidence"`
	Breakdown       map[string]CategoryBreakdown `json:"breakdown"`
	Evidence        []Finding                    `json:"evidence"`
	Recommendations []Finding                    `json:"recommendations"`
	Insights        []Finding                    `json:"insights"`
	Risks           []Finding                    `json:"risks"`
	AgentResults    []AgentResult                `json:"agent_results"`
	WeightedTotal   float64                      `json:"weighted_total"`
	Calculation     string                       `json:"calculation"`
	AgentsUsed      []string                     `json:"agents_used"`
	GeneratedAt     time.Time                    `json:"generated_at"`
}

// QualityBucket 分数对应的定性描述
func QualityBucket(score int) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 6:
		return "Good"
	case score >= 4:
		return "Fair"
	default:
		return "Poor"
	}
}

// Clone 深拷贝结果，切片与指标互不共享
func (r AgentResult) Clone() AgentResult {
	r.Evidence = slices.Clone(r.Evidence)
	r.Recommendations = slices.Clone(r.Recommendations)
	r.Insights = slices.Clone(r.Insights)
	r.Risks = slices.Clone(r.Risks)
	r.Metrics = maps.Clone(r.Metrics)
	return r
}

// Clone 深拷贝结论
func (v *Verdict) Clone() *Verdict {
	if v == nil {
		return nil
	}
	out := *v
	if v.Breakdown != nil {
		out.Breakdown = make(map[string]CategoryBreakdown, len(v.Breakdown))
		for k, b := range v.Breakdown {
			b.Evidence = slices.Clone(b.Evidence)
			out.Breakdown[k] = b
		}
	}
	out.Evidence = slices.Clone(v.Evidence)
	out.Recommendations = slices.Clone(v.Recommendations)
	out.Insights = slices.Clone(v.Insights)
	out.Risks = slices.Clone(v.Risks)
	out.AgentsUsed = slices.Clone(v.AgentsUsed)
	if v.AgentResults != nil {
		out.AgentResults = make([]AgentResult, len(v.AgentResults))
		for i, r := range v.AgentResults {
			out.AgentResults[i] = r.Clone()
		}
	}
	return &out
}
