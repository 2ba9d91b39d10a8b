package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// InnovationAgent 创新性评分，按固定评分表从 README 抽取字段
type InnovationAgent struct{}

// NewInnovationAgent 创建创新性 Agent
func NewInnovationAgent() *InnovationAgent { return &InnovationAgent{} }

func (a *InnovationAgent) ID() string   { return IDInnovation }
func (a *InnovationAgent) Name() string { return CategoryName(IDInnovation) }

// innovationFields 评分表输入字段
type innovationFields struct {
	summary     string
	problem     string
	features    []string
	stack       []string
	comparators []string
	constraints string
}

func (f innovationFields) nonEmpty() int {
	n := 0
	for _, ok := range []bool{f.summary != "", f.problem != "", len(f.features) > 0, len(f.stack) > 0, len(f.comparators) > 0, f.constraints != ""} {
		if ok {
			n++
		}
	}
	return n
}

// Analyze 计算 originality、creative_tech、problem_fit、aha_factor、future_potential 五项子指标
func (a *InnovationAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()
	doc := parseReadme(ec.Readme)

	f := innovationFields{
		summary:     doc.summary(),
		problem:     doc.problem(),
		features:    doc.features(),
		stack:       DetectTechStack(ec.LowerFiles(), ec.ReadmeLower()),
		comparators: doc.comparators(),
		constraints: doc.constraints(),
	}

	if f.summary != "" {
		t.signal("Project summary: " + truncate(f.summary, 100))
	} else {
		t.recommend("Add a clear project summary to the README")
	}
	if f.problem != "" {
		t.signal("Problem statement: " + truncate(f.problem, 100))
	} else {
		t.recommend("State the problem the project solves")
	}
	if len(f.features) > 0 {
		t.signal(fmt.Sprintf("Features described: %d", len(f.features)))
	} else {
		t.recommend("List the key features in the README")
	}
	if len(f.stack) > 0 {
		t.signal("Technology stack: " + joinLimited(f.stack, 6))
	}
	if len(f.comparators) > 0 {
		t.signal("Positions itself against existing solutions")
	} else if f.summary != "" {
		t.recommend("Explain how the project differs from existing solutions")
	}
	if f.constraints != "" {
		t.observe("Constraints or roadmap documented")
	}

	problemFit := 0
	switch {
	case f.summary != "":
		problemFit = 6
		if f.problem != "" {
			problemFit += 2
		}
	case f.nonEmpty() > 0:
		problemFit = 3
	}
	future := min(6, len(f.stack))
	if f.constraints != "" && future > 0 {
		future++
	}
	metrics := map[string]int{
		"originality":      min(7, len(f.stack)+len(f.features)+len(f.comparators)),
		"creative_tech":    min(8, 2*len(f.stack)),
		"problem_fit":      problemFit,
		"aha_factor":       min(7, len(f.features)),
		"future_potential": future,
	}
	names := []string{"originality", "creative_tech", "problem_fit", "aha_factor", "future_potential"}
	sum := 0
	var parts []string
	for _, n := range names {
		t.metric(n, metrics[n])
		sum += metrics[n]
		parts = append(parts, fmt.Sprintf("%s=%d", n, metrics[n]))
	}
	overall := sum / len(names)
	t.insight("Innovation rubric: " + strings.Join(parts, ", "))

	conf := float64(f.nonEmpty()) / 6
	if f.summary != "" && len(f.features) > 0 {
		conf += 0.1
	}
	return t.resultWith(IDInnovation, overall, math.Min(conf, 1)), nil
}
