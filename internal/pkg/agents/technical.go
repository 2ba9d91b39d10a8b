package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// TechnicalAgent 技术复杂度评分
type TechnicalAgent struct{}

// NewTechnicalAgent 创建技术复杂度 Agent
func NewTechnicalAgent() *TechnicalAgent { return &TechnicalAgent{} }

func (a *TechnicalAgent) ID() string   { return IDTechnical }
func (a *TechnicalAgent) Name() string { return CategoryName(IDTechnical) }

// Analyze 以技术栈、架构、数据流、性能、安全、外部集成六个驱动因素评估复杂度
func (a *TechnicalAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()
	paths := ec.LowerPaths()
	joined := strings.Join(paths, "\n")

	stack := DetectTechStack(ec.LowerFiles(), ec.ReadmeLower())
	patterns := MatchedTags(ArchitecturePatterns, paths)
	archNotes := domain.MatchedKeywords(ec.ReadmeLower(), ReadmeArchitectureTerms)
	dataFlows := domain.MatchedKeywords(joined, DataFlowIndicators)
	var perf []string
	if len(ec.PathsContaining(CachingKeywords)) > 0 {
		perf = append(perf, "caching")
	}
	if len(ec.PathsContaining(AsyncKeywords)) > 0 {
		perf = append(perf, "async processing")
	}
	if ec.HasArtifact(domain.ArtifactPerfNotes) {
		perf = append(perf, "performance notes")
	}
	var security []string
	if len(ec.PathsContaining(AuthKeywords)) > 0 {
		security = append(security, "authentication")
	}
	if len(ec.PathsContaining(ValidationKeywords)) > 0 {
		security = append(security, "validation")
	}
	integrations := MatchedTags(IntegrationRules, []string{ec.ReadmeLower()})

	drivers := 0
	fields := 0
	if len(stack) > 0 {
		fields++
		t.signal("Technology stack: " + joinLimited(stack, 6))
		if len(stack) >= 2 {
			drivers++
		}
	}
	if len(patterns) > 0 || len(archNotes) > 0 {
		fields++
		drivers++
		desc := strings.Join(patterns, ", ")
		if desc == "" {
			desc = "documented in README"
		}
		t.signal("Architecture: " + desc)
	}
	if len(dataFlows) >= 2 {
		fields++
		drivers++
		t.signal("Data flow components: " + strings.Join(dataFlows, ", "))
	}
	if len(perf) > 0 {
		fields++
		drivers++
		t.signal("Performance signals: " + strings.Join(perf, ", "))
	}
	if len(security) > 0 {
		fields++
		drivers++
		t.signal("Security signals: " + strings.Join(security, ", "))
	}
	if len(integrations) > 0 {
		fields++
		drivers++
		t.signal("External integrations: " + strings.Join(integrations, ", "))
	}

	extras := 0
	if len(stack) >= 4 {
		extras++
	}
	for _, in := range integrations {
		if in == "Machine Learning" {
			extras++
		}
	}
	score := 2*drivers + extras

	style := architectureStyle(patterns, len(paths))
	if style != "" {
		t.insight("Architecture style: " + style)
	}
	if drivers < 3 && len(paths) > 0 {
		t.recommend("Demonstrate technical depth (data layer, integrations, performance work)")
	}

	t.metric("stack_breadth", 2*len(stack))
	t.metric("architecture_depth", 3*len(patterns)+len(archNotes))
	t.metric("data_complexity", 2*len(dataFlows))
	t.metric("performance", 3*len(perf))
	t.metric("security_depth", 4*len(security))
	t.insight(fmt.Sprintf("Complexity drivers: %d of 6", drivers))

	return t.resultWith(IDTechnical, score, float64(fields)/6), nil
}

func architectureStyle(patterns []string, pathCount int) string {
	for _, p := range patterns {
		switch p {
		case "microservices":
			return "microservices"
		case "hexagonal", "clean_architecture":
			return "ports and adapters"
		case "layered", "mvc":
			return "layered monolith"
		}
	}
	if pathCount > 0 {
		return "monolith"
	}
	return ""
}
