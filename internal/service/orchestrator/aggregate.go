package orchestrator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// 聚合列表上限
const (
	MaxEvidence          = 20
	MaxRecommendations   = 15
	MaxRisks             = 10
	breakdownEvidenceCap = 10
)

// Aggregate 将各 Agent 结果合并为 Verdict。
// TotalScore = round(Σ score·confidence / Σ confidence)，Σ confidence 为 0 时取 0。
// weights 为 nil 时类别权重按参与 Agent 平均分配；WeightedTotal 只用于展示。
func Aggregate(results []domain.AgentResult, weights map[string]int) *domain.Verdict {
	v := &domain.Verdict{
		Breakdown:       make(map[string]domain.CategoryBreakdown, len(results)),
		Evidence:        []domain.Finding{},
		Recommendations: []domain.Finding{},
		Insights:        []domain.Finding{},
		Risks:           []domain.Finding{},
		AgentResults:    results,
		AgentsUsed:      make([]string, 0, len(results)),
	}

	sumSC, sumC := 0.0, 0.0
	for _, r := range results {
		sumSC += float64(r.Score) * r.Confidence
		sumC += r.Confidence
		v.AgentsUsed = append(v.AgentsUsed, r.AgentID)
	}
	if sumC > 0 {
		v.TotalScore = int(math.Round(sumSC / sumC))
		v.Confidence = sumC / float64(len(results))
	}
	v.PassFail = domain.PassFailFor(v.TotalScore)

	seenRec := map[string]bool{}
	seenRisk := map[string]bool{}
	// 失败 Agent 的风险排在最前，截断后仍然保留
	for _, r := range results {
		if r.Failed {
			v.Risks = appendUnique(v.Risks, seenRisk, r.AgentID, r.Risks)
		}
	}
	for _, r := range results {
		for _, e := range r.Evidence {
			v.Evidence = append(v.Evidence, domain.Finding{SourceAgent: r.AgentID, Text: e})
		}
		for _, in := range r.Insights {
			v.Insights = append(v.Insights, domain.Finding{SourceAgent: r.AgentID, Text: in})
		}
		v.Recommendations = appendUnique(v.Recommendations, seenRec, r.AgentID, r.Recommendations)
		if !r.Failed {
			v.Risks = appendUnique(v.Risks, seenRisk, r.AgentID, r.Risks)
		}
	}
	v.Evidence = capFindings(v.Evidence, MaxEvidence)
	v.Recommendations = capFindings(v.Recommendations, MaxRecommendations)
	v.Risks = capFindings(v.Risks, MaxRisks)

	categoryWeights := resolveWeights(results, weights)
	for _, r := range results {
		ev := r.Evidence
		if len(ev) > breakdownEvidenceCap {
			ev = ev[:breakdownEvidenceCap]
		}
		v.Breakdown[r.AgentName] = domain.CategoryBreakdown{
			AgentID:    r.AgentID,
			Score:      r.Score,
			Weight:     categoryWeights[r.AgentID],
			Evidence:   append([]string{}, ev...),
			Comment:    r.Comment,
			Confidence: r.Confidence,
		}
	}
	v.WeightedTotal, v.Calculation = explainCalculation(results, categoryWeights, v.TotalScore)
	return v
}

// resolveWeights 计算各参与 Agent 的展示权重
func resolveWeights(results []domain.AgentResult, weights map[string]int) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}
	if weights == nil {
		equal := 100 / float64(len(results))
		for _, r := range results {
			out[r.AgentID] = equal
		}
		return out
	}
	for _, r := range results {
		out[r.AgentID] = float64(weights[r.AgentID])
	}
	return out
}

// explainCalculation 生成按类别权重重组的展示总分与算式
func explainCalculation(results []domain.AgentResult, weights map[string]float64, total int) (float64, string) {
	ordered := append([]domain.AgentResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].AgentID < ordered[j].AgentID })

	sumW, sumSW := 0.0, 0.0
	terms := make([]string, 0, len(ordered))
	for _, r := range ordered {
		w := weights[r.AgentID]
		if w <= 0 {
			continue
		}
		sumW += w
		sumSW += float64(r.Score) * w
		terms = append(terms, fmt.Sprintf("%s %d x %.1f%%", r.AgentID, r.Score, w))
	}
	weighted := 0.0
	if sumW > 0 {
		weighted = math.Round(sumSW/sumW*100) / 100
	}
	if len(terms) == 0 {
		return 0, fmt.Sprintf("No weighted categories. Total score %d (confidence-weighted mean).", total)
	}
	return weighted, fmt.Sprintf("Weighted view: %s = %.2f/10. Total score %d (confidence-weighted mean).",
		strings.Join(terms, " + "), weighted, total)
}

// appendUnique 追加不区分大小写去重后的条目，首次出现者保留
func appendUnique(dst []domain.Finding, seen map[string]bool, source string, items []string) []domain.Finding {
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, domain.Finding{SourceAgent: source, Text: it})
	}
	return dst
}

func capFindings(items []domain.Finding, n int) []domain.Finding {
	if len(items) > n {
		return items[:n]
	}
	return items
}
