package agents

import (
	"fmt"
	"math"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

const (
	minScore = 0
	maxScore = 10
)

// tally 累积各子分析的加减分与证据
type tally struct {
	score           int
	quality         int
	evidence        []string
	recommendations []string
	insights        []string
	risks           []string
	credits         []string
	deductions      []string
	metrics         map[string]int

	seenRisk map[string]bool
	seenRec  map[string]bool
}

func newTally() *tally {
	return &tally{
		seenRisk: map[string]bool{},
		seenRec:  map[string]bool{},
	}
}

// credit 加分并记录证据，同时计为一个质量信号
func (t *tally) credit(delta int, evidence string) {
	t.score += delta
	t.quality++
	t.evidence = append(t.evidence, evidence)
	t.credits = append(t.credits, fmt.Sprintf("%s (+%d)", evidence, delta))
}

// signal 记录评分表输入字段，计入说明但不直接加分
func (t *tally) signal(evidence string) {
	t.evidence = append(t.evidence, evidence)
	t.credits = append(t.credits, evidence)
}

// observe 记录不影响分数的证据
func (t *tally) observe(evidence string) {
	t.evidence = append(t.evidence, evidence)
}

// deduct 扣分，evidence 可为空，risk 去重后记录
func (t *tally) deduct(delta int, evidence, risk string) {
	t.score -= delta
	if evidence != "" {
		t.evidence = append(t.evidence, evidence)
	}
	label := risk
	if label == "" {
		label = evidence
	}
	t.deductions = append(t.deductions, fmt.Sprintf("%s (-%d)", label, delta))
	t.risk(risk)
}

func (t *tally) risk(r string) {
	if r == "" {
		return
	}
	key := strings.ToLower(r)
	if t.seenRisk[key] {
		return
	}
	t.seenRisk[key] = true
	t.risks = append(t.risks, r)
}

func (t *tally) recommend(r string) {
	if r == "" {
		return
	}
	key := strings.ToLower(r)
	if t.seenRec[key] {
		return
	}
	t.seenRec[key] = true
	t.recommendations = append(t.recommendations, r)
}

func (t *tally) insight(s string) {
	t.insights = append(t.insights, s)
}

func (t *tally) metric(name string, v int) {
	if t.metrics == nil {
		t.metrics = map[string]int{}
	}
	t.metrics[name] = clampScore(v)
}

// result 按累积分数与默认置信度公式生成结果
func (t *tally) result(id string) *domain.AgentResult {
	return t.resultWith(id, t.score, confidence(len(t.evidence), t.quality))
}

// resultWith 使用指定分数与置信度生成结果
func (t *tally) resultWith(id string, score int, conf float64) *domain.AgentResult {
	score = clampScore(score)
	if len(t.evidence) == 0 {
		conf = 0
	}
	conf = clampUnit(conf)
	return &domain.AgentResult{
		AgentID:         id,
		AgentName:       CategoryName(id),
		Score:           score,
		Confidence:      conf,
		Evidence:        nonNil(t.evidence),
		Recommendations: nonNil(t.recommendations),
		Insights:        nonNil(t.insights),
		Risks:           nonNil(t.risks),
		Comment:         explain(score, t.credits, t.deductions),
		Metrics:         t.metrics,
	}
}

// confidence 置信度：min(e/10,1) + min(q/5,0.3)，截断到 [0,1]；无证据时为 0
func confidence(evidenceCount, qualityCount int) float64 {
	if evidenceCount <= 0 {
		return 0
	}
	c := math.Min(float64(evidenceCount)/10, 1) + math.Min(float64(qualityCount)/5, 0.3)
	return clampUnit(c)
}

// explain 生成确定性的评分说明
func explain(score int, credits, deductions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score %d/10 (%s).", score, domain.QualityBucket(score))
	if len(credits) == 0 && len(deductions) == 0 {
		b.WriteString(" No qualifying signals detected.")
		return b.String()
	}
	if len(credits) > 0 {
		b.WriteString(" Credits: ")
		b.WriteString(strings.Join(credits, "; "))
		b.WriteString(".")
	}
	if len(deductions) > 0 {
		b.WriteString(" Deductions: ")
		b.WriteString(strings.Join(deductions, "; "))
		b.WriteString(".")
	}
	return b.String()
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// joinLimited 拼接前 n 项，超出部分以数量提示
func joinLimited(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:n], ", "), len(items)-n)
}
