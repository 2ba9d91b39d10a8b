package agents

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// CodeAgent 代码质量评分
type CodeAgent struct{}

// NewCodeAgent 创建代码质量 Agent
func NewCodeAgent() *CodeAgent { return &CodeAgent{} }

func (a *CodeAgent) ID() string   { return IDCode }
func (a *CodeAgent) Name() string { return CategoryName(IDCode) }

// Analyze 基于文件名、lint 与测试报告评估代码质量
func (a *CodeAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()

	codeFiles := ec.FilesWithExt(CodeExtensions)
	a.analyzeCodeFiles(t, codeFiles)
	a.analyzeAntiPatterns(t, ec.LowerFiles())
	a.analyzeLint(t, ec)
	a.analyzeTests(t, ec, codeFiles)
	a.analyzeDocs(t, ec)

	return t.result(IDCode), nil
}

func (a *CodeAgent) analyzeCodeFiles(t *tally, codeFiles []string) {
	if len(codeFiles) == 0 {
		t.recommend("Add source code files to the repository")
		return
	}

	langs := map[string]bool{}
	for _, f := range codeFiles {
		langs[path.Ext(f)] = true
	}
	exts := make([]string, 0, len(langs))
	for e := range langs {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	t.credit(2, fmt.Sprintf("Code files found: %d (%s)", len(codeFiles), joinLimited(exts, 5)))

	good := MatchedTags(CodeGoodPatterns, codeFiles)
	naming := 0
	for _, f := range codeFiles {
		base := path.Base(f)
		if strings.ContainsAny(strings.TrimSuffix(base, path.Ext(base)), "_-") {
			naming++
		}
	}
	if naming > 0 {
		good = append([]string{"naming conventions"}, good...)
	}
	if len(good) > 0 {
		bonus := len(good)
		if bonus > 3 {
			bonus = 3
		}
		t.credit(bonus, fmt.Sprintf("Good code patterns: %s", strings.Join(good, ", ")))
	}

	var sensitive []string
	for _, f := range codeFiles {
		if domain.ContainsAny(path.Base(f), SensitiveKeywords) {
			sensitive = append(sensitive, f)
		}
	}
	if len(sensitive) > 0 {
		t.deduct(2, fmt.Sprintf("Sensitive keyword in code file name: %s", joinLimited(sensitive, 3)),
			"Security vulnerability: credentials may be hard-coded in source files")
		t.recommend("Move secrets into environment variables or a secret manager")
	}

	var perf []string
	for _, f := range codeFiles {
		if domain.ContainsAny(path.Base(f), PerformanceRiskKeywords) {
			perf = append(perf, f)
		}
	}
	if len(perf) > 0 {
		t.deduct(1, fmt.Sprintf("Performance-sensitive code detected: %s", joinLimited(perf, 3)),
			"Performance concern: nested or recursive processing")
	}
}

func (a *CodeAgent) analyzeAntiPatterns(t *tally, files []string) {
	for _, rule := range CodeBadPatterns {
		var hits []string
		for _, f := range files {
			if rule.Matches(path.Base(f)) {
				hits = append(hits, f)
			}
		}
		if len(hits) == 0 {
			continue
		}
		t.deduct(1, fmt.Sprintf("Anti-pattern files (%s): %s", rule.Tag, joinLimited(hits, 3)),
			"Code smell: "+rule.Tag)
		t.recommend("Remove " + rule.Tag + " from version control")
	}
}

func (a *CodeAgent) analyzeLint(t *tally, ec *domain.EvidenceContext) {
	lint, ok := ec.Artifact(domain.ArtifactLintResults)
	if !ok {
		t.recommend("Run a linter and include its report")
		return
	}
	low := strings.ToLower(lint)
	switch {
	case strings.Contains(low, "no issues"):
		t.credit(1, "Lint report shows no issues")
	case strings.Contains(low, "error"):
		t.deduct(1, "Lint report contains errors", "Code smell: lint errors reported")
		t.recommend("Fix reported lint errors")
	default:
		t.observe("Lint report provided")
	}
}

func (a *CodeAgent) analyzeTests(t *tally, ec *domain.EvidenceContext, codeFiles []string) {
	var tests []string
	for _, f := range ec.LowerFiles() {
		if isTestPath(f) {
			tests = append(tests, f)
		}
	}
	if len(tests) > 0 {
		t.credit(2, fmt.Sprintf("Test files found: %d", len(tests)))
	} else if len(codeFiles) > 0 {
		t.recommend("Add automated tests")
	}

	report, ok := ec.Artifact(domain.ArtifactTestResults)
	if !ok {
		if len(tests) > 0 {
			t.recommend("Include test execution results")
		}
		return
	}
	low := strings.ToLower(report)
	if strings.Contains(low, "passed") {
		t.credit(2, "Test suite reports passing tests")
	} else {
		t.observe("Test results provided")
		t.recommend("Make the test suite pass")
	}
	if strings.Contains(low, "coverage") {
		t.credit(1, "Test coverage reported")
	} else {
		t.recommend("Report test coverage")
	}
}

func (a *CodeAgent) analyzeDocs(t *tally, ec *domain.EvidenceContext) {
	if ec.HasReadme() {
		t.credit(1, "README documentation present")
		if strings.Contains(ec.Readme, "```") {
			t.credit(1, "README includes code examples")
		}
	} else {
		t.recommend("Add a README describing the project")
	}

	docs := ec.FilesWithExt(DocExtensions)
	if len(docs) > 1 {
		t.credit(1, fmt.Sprintf("Documentation files: %d", len(docs)))
	}
}
