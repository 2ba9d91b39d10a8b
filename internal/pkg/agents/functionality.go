package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

var routeFileKeywords = []string{"route", "api/", "endpoint", "controller", "handler"}

// FunctionalityAgent 功能完整度评分
type FunctionalityAgent struct{}

// NewFunctionalityAgent 创建功能 Agent
func NewFunctionalityAgent() *FunctionalityAgent { return &FunctionalityAgent{} }

func (a *FunctionalityAgent) ID() string   { return IDFunctionality }
func (a *FunctionalityAgent) Name() string { return CategoryName(IDFunctionality) }

// Analyze 从 README 与文件树抽取功能、用户流程、接口、测试、演示、限制与部署信息
func (a *FunctionalityAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()
	doc := parseReadme(ec.Readme)
	files := ec.LowerFiles()

	features := doc.features()
	flows := doc.userFlows()
	endpoints := doc.endpoints()
	routeFiles := pathsMatching(ec.FilesWithExt(CodeExtensions), routeFileKeywords)
	var tests []string
	for _, f := range files {
		if isTestPath(f) {
			tests = append(tests, f)
		}
	}
	testReport, hasReport := ec.Artifact(domain.ArtifactTestResults)
	testsPassing := hasReport && strings.Contains(strings.ToLower(testReport), "passed")
	demo := ec.HasArtifact(domain.ArtifactScreenshotsOrDemo) || strings.Contains(ec.ReadmeLower(), "demo")
	limitations := doc.constraints()
	deploy := doc.setup()
	docker := ec.HasBaseName("dockerfile") || ec.HasBaseName("docker-compose.yml")

	filled := 0
	mark := func(ok bool) {
		if ok {
			filled++
		}
	}

	if len(features) > 0 {
		t.signal(fmt.Sprintf("Features listed: %d", len(features)))
	} else {
		t.recommend("Document the implemented features")
	}
	mark(len(features) > 0)

	if len(flows) > 0 {
		t.signal(fmt.Sprintf("User flows described: %d", len(flows)))
	} else if len(features) > 0 {
		t.recommend("Describe the main user flows step by step")
	}
	mark(len(flows) > 0)

	if len(endpoints)+len(routeFiles) > 0 {
		var parts []string
		if len(endpoints) > 0 {
			parts = append(parts, fmt.Sprintf("%d documented endpoints", len(endpoints)))
		}
		if len(routeFiles) > 0 {
			parts = append(parts, fmt.Sprintf("%d route/handler files", len(routeFiles)))
		}
		t.signal("API surface: " + strings.Join(parts, ", "))
	}
	mark(len(endpoints)+len(routeFiles) > 0)

	switch {
	case testsPassing:
		t.signal("Test results report passing tests")
	case len(tests) > 0:
		t.signal(fmt.Sprintf("Test files present: %d", len(tests)))
	default:
		if len(files) > 0 {
			t.recommend("Add tests that exercise the main features")
		}
	}
	mark(len(tests) > 0 || hasReport)

	if demo {
		t.signal("Demo or screenshots available")
	} else {
		t.recommend("Provide a demo link or screenshots")
	}
	mark(demo)

	if limitations != "" {
		t.observe("Known limitations documented")
	}
	mark(limitations != "")

	if deploy != "" || docker {
		t.signal("Setup or deployment instructions available")
	} else if ec.HasReadme() {
		t.recommend("Add setup and deployment instructions")
	}
	mark(deploy != "" || docker)

	testScore := 0
	if len(tests) > 0 {
		testScore += 5
	}
	if testsPassing {
		testScore += 5
	}
	deployScore := 0
	if deploy != "" {
		deployScore += 5
	}
	if docker {
		deployScore += 5
	}
	t.metric("feature_coverage", 2*len(features))
	t.metric("api_surface", 2*(len(endpoints)+len(routeFiles)))
	t.metric("user_flows", 3*len(flows))
	t.metric("test_evidence", testScore)
	t.metric("deployability", deployScore)

	implementation := float64(t.metrics["feature_coverage"]+t.metrics["api_surface"]+
		t.metrics["user_flows"]+t.metrics["deployability"]) / 40
	score := int(math.Round(implementation * 8))
	if len(tests) > 0 {
		score++
	}
	if demo {
		score++
	}
	t.insight(fmt.Sprintf("Implementation ratio %.2f across features, API, flows and deployment", implementation))

	return t.resultWith(IDFunctionality, score, float64(filled)/7), nil
}
