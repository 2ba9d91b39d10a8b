package domain

import (
	"slices"
	"time"
)

// Report 一次评分请求的完整报告
type Report struct {
	ID               string    `json:"id"`
	RepoURL          string    `json:"repo_url"`
	Branch           string    `json:"branch"`
	Agents           []string  `json:"agents"`
	Status           string    `json:"status"`
	Verdict          *Verdict  `json:"verdict"`
	MissingArtifacts []string  `json:"missing_artifacts"`
	Cached           bool      `json:"cached"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Failed 报告是否因协作方失败而没有评分
func (r *Report) Failed() bool {
	return r != nil && r.Error != ""
}

// Clone 深拷贝报告，副本与原报告不共享 Verdict 及切片
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Agents = slices.Clone(r.Agents)
	out.MissingArtifacts = slices.Clone(r.MissingArtifacts)
	out.Verdict = r.Verdict.Clone()
	return &out
}

// FailedVerdict 仓库获取失败时的顶层结论，总分为 0
func FailedVerdict(agents []string, now time.Time) *Verdict {
	return &Verdict{
		TotalScore:      0,
		PassFail:        Fail,
		Breakdown:       map[string]CategoryBreakdown{},
		Evidence:        []Finding{},
		Recommendations: []Finding{},
		Insights:        []Finding{},
		Risks:           []Finding{},
		AgentResults:    []AgentResult{},
		AgentsUsed:      append([]string(nil), agents...),
		GeneratedAt:     now,
	}
}
