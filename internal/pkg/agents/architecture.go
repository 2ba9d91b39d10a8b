package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// ArchitectureAgent 架构评分
type ArchitectureAgent struct{}

// NewArchitectureAgent 创建架构 Agent
func NewArchitectureAgent() *ArchitectureAgent { return &ArchitectureAgent{} }

func (a *ArchitectureAgent) ID() string   { return IDArchitecture }
func (a *ArchitectureAgent) Name() string { return CategoryName(IDArchitecture) }

// Analyze 评估目录结构、架构模式、分层与可扩展性信号
func (a *ArchitectureAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()
	paths := ec.LowerPaths()

	a.analyzeStructure(t, ec)
	a.analyzePatterns(t, paths)
	a.analyzeLayers(t, paths)
	a.analyzeFlow(t, paths)
	a.analyzeReadme(t, ec)
	a.analyzeScalability(t, ec, paths)
	a.analyzeSecurityLayer(t, ec)

	return t.result(IDArchitecture), nil
}

func (a *ArchitectureAgent) analyzeStructure(t *tally, ec *domain.EvidenceContext) {
	top := map[string]bool{}
	for _, d := range ec.TopLevelDirs() {
		top[d] = true
	}
	var found []string
	for _, d := range GoodDirectories {
		if top[d] {
			found = append(found, d)
		}
	}
	switch {
	case len(found) >= 3:
		t.credit(3, "Good directory structure: "+strings.Join(found, ", "))
	case len(found) == 2:
		t.credit(2, "Organized directory structure: "+strings.Join(found, ", "))
	case len(found) == 1:
		t.credit(1, "Basic directory structure: "+found[0])
	default:
		t.recommend("Organize code into conventional directories (src, tests, docs)")
	}
}

func (a *ArchitectureAgent) analyzePatterns(t *tally, paths []string) {
	patterns := MatchedTags(ArchitecturePatterns, paths)
	if len(patterns) == 0 {
		return
	}
	bonus := 2 * len(patterns)
	if bonus > 4 {
		bonus = 4
	}
	t.credit(bonus, "Architecture patterns detected: "+strings.Join(patterns, ", "))
}

func (a *ArchitectureAgent) analyzeLayers(t *tally, paths []string) {
	layers := MatchedTags(LayerGroups, paths)
	switch {
	case len(layers) >= 3:
		t.credit(2, "Clear layer separation: "+strings.Join(layers, ", "))
	case len(layers) == 2:
		t.credit(1, "Partial layer separation: "+strings.Join(layers, ", "))
	default:
		if len(paths) > 0 {
			t.recommend("Separate presentation, business, and data layers")
		}
	}
}

func (a *ArchitectureAgent) analyzeFlow(t *tally, paths []string) {
	joined := strings.Join(paths, "\n")
	data := domain.MatchedKeywords(joined, DataFlowIndicators)
	if len(data) >= 3 {
		t.credit(1, "Data flow indicators: "+strings.Join(data, ", "))
	}
	control := domain.MatchedKeywords(joined, ControlFlowIndicators)
	if len(control) >= 2 {
		t.credit(1, "Control flow indicators: "+strings.Join(control, ", "))
	}
}

func (a *ArchitectureAgent) analyzeReadme(t *tally, ec *domain.EvidenceContext) {
	terms := domain.MatchedKeywords(ec.ReadmeLower(), ReadmeArchitectureTerms)
	if len(terms) > 0 {
		t.credit(1, "README documents architecture: "+strings.Join(terms, ", "))
	} else if ec.HasReadme() {
		t.recommend("Document the architecture in the README")
	}
}

func (a *ArchitectureAgent) analyzeScalability(t *tally, ec *domain.EvidenceContext, paths []string) {
	if docker := ec.FindBaseName("dockerfile"); docker != "" {
		t.credit(2, fmt.Sprintf("Containerization present (Dockerfile at %s)", docker))
	} else {
		t.recommend("Add a Dockerfile for reproducible deployment")
	}

	ci := ec.PathsContaining(CIMarkers)
	switch {
	case len(ci) > 0:
		t.credit(1, "CI configuration present: "+joinLimited(ci, 2))
	case ec.HasArtifact(domain.ArtifactCIConfigPresent):
		t.credit(1, "CI configuration reported")
	case ec.HasPathSegment(".github"):
		t.credit(1, "GitHub automation directory present (.github)")
	}

	if cfg := ec.PathsContaining(ConfigFileMarkers); len(cfg) > 0 {
		t.credit(1, fmt.Sprintf("Configuration management files: %d", len(cfg)))
	}
	if caching := ec.PathsContaining(CachingKeywords); len(caching) > 0 {
		t.credit(1, "Caching layer detected")
	}
	if async := ec.PathsContaining(AsyncKeywords); len(async) > 0 {
		t.credit(1, "Asynchronous processing detected")
	}
	if ec.HasArtifact(domain.ArtifactPerfNotes) {
		t.credit(1, "Performance notes provided")
	}
	if len(paths) > 0 && !ec.HasReadme() {
		t.insight("Architecture inferred from file layout only")
	}
}

func (a *ArchitectureAgent) analyzeSecurityLayer(t *tally, ec *domain.EvidenceContext) {
	sec := ec.PathsContaining(SecurityLayerKeywords)
	if len(sec) > 0 {
		t.credit(2, "Security layer present: "+joinLimited(sec, 3))
	} else {
		t.risk("No security layer detected in architecture")
		t.recommend("Add authentication/authorization middleware")
	}
	if ec.HasBaseName(".env.example") {
		t.credit(1, "Environment template documents configuration")
	}
}
