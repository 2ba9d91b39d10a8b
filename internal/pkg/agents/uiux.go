package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

const (
	// uiRuntimeCap UI 运行时分析最多贡献的分数
	uiRuntimeCap = 5
	// uiFallbackScore UI 执行失败时给予的固定部分分
	uiFallbackScore = 4
)

// UIUXAgent 界面与体验评分
type UIUXAgent struct{}

// NewUIUXAgent 创建 UI/UX Agent
func NewUIUXAgent() *UIUXAgent { return &UIUXAgent{} }

func (a *UIUXAgent) ID() string   { return IDUIUX }
func (a *UIUXAgent) Name() string { return CategoryName(IDUIUX) }

// Analyze 静态分析 UI 文件与框架，并合并外部 UI 执行结果
func (a *UIUXAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()

	a.analyzeStatic(t, ec)
	a.analyzeAccessibility(t, ec)
	a.analyzeDemo(t, ec)
	if ec.UIExecution != nil {
		a.analyzeExecution(t, ec.UIExecution)
	}

	return t.result(IDUIUX), nil
}

func (a *UIUXAgent) analyzeStatic(t *tally, ec *domain.EvidenceContext) {
	files := ec.LowerFiles()
	uiFiles := ec.FilesWithExt(UIExtensions)
	if len(uiFiles) == 0 {
		if len(files) > 0 {
			t.recommend("Add a user interface or document how users interact with the project")
		}
		return
	}
	t.credit(3, fmt.Sprintf("UI files found: %d", len(uiFiles)))

	haystack := append(append([]string(nil), files...), ec.ReadmeLower())
	for _, fw := range MatchedTags(UIFrameworks, haystack) {
		t.credit(2, "Frontend framework: "+fw)
	}

	if comps := ec.PathsContaining([]string{"component"}); len(comps) > 0 {
		t.credit(1, fmt.Sprintf("Component-based UI: %d component files", len(comps)))
	}
	if css := domain.MatchedKeywords(strings.Join(haystack, "\n"), CSSFrameworks); len(css) > 0 {
		t.credit(1, "CSS framework: "+strings.Join(css, ", "))
	}
	if styles := ec.FilesWithExt(StyleExtensions); len(styles) > 0 {
		t.credit(1, fmt.Sprintf("Stylesheets: %d", len(styles)))
	} else {
		t.recommend("Add styling to improve visual presentation")
	}
	if resp := domain.MatchedKeywords(strings.Join(haystack, "\n"), ResponsiveKeywords); len(resp) > 0 {
		t.credit(1, "Responsive design signals: "+strings.Join(resp, ", "))
	} else {
		t.recommend("Make the layout responsive for mobile screens")
	}
}

func (a *UIUXAgent) analyzeAccessibility(t *tally, ec *domain.EvidenceContext) {
	if files := ec.PathsContaining(AccessibilityKeywords); len(files) > 0 {
		t.credit(2, "Accessibility-focused files: "+joinLimited(files, 3))
	}
	if notes, ok := ec.Artifact(domain.ArtifactAccessibilityNotes); ok {
		t.credit(2, "Accessibility notes provided")
		t.insight("Accessibility notes: " + truncate(notes, 120))
	} else if len(ec.FilesWithExt(UIExtensions)) > 0 {
		t.recommend("Document accessibility considerations (contrast, keyboard navigation, ARIA)")
	}
}

func (a *UIUXAgent) analyzeDemo(t *tally, ec *domain.EvidenceContext) {
	if ec.HasArtifact(domain.ArtifactScreenshotsOrDemo) {
		t.credit(2, "Screenshots or demo provided")
	} else if len(ec.FilesWithExt(UIExtensions)) > 0 {
		t.recommend("Provide screenshots or a live demo")
	}
}

// analyzeExecution 合并运行时 UI 子评分；执行失败时给予固定部分分
func (a *UIUXAgent) analyzeExecution(t *tally, exec *domain.UIExecutionResult) {
	if !exec.Success {
		reason := "unknown error"
		if len(exec.Errors) > 0 {
			reason = exec.Errors[0]
		}
		t.credit(uiFallbackScore, "UI execution attempted but failed: "+reason)
		t.insight("Static analysis fallback used; no runtime UI evaluation")
		t.recommend("Ensure the application starts locally with documented setup steps")
		return
	}

	runtime := 0
	dims := []struct {
		label string
		value float64
		rec   string
	}{
		{"visual quality", exec.Analysis.VisualQuality, "Improve visual design and layout"},
		{"accessibility", exec.Analysis.Accessibility, "Enhance accessibility features (contrast, text size, keyboard navigation)"},
		{"responsiveness", exec.Analysis.Responsiveness, "Improve responsive design for different screen sizes"},
		{"interactivity", exec.Analysis.Interactivity, "Add more interactive elements and user feedback"},
	}
	var notes []string
	for _, d := range dims {
		switch {
		case d.value > 7:
			runtime += 2
			notes = append(notes, fmt.Sprintf("excellent %s (%.1f)", d.label, d.value))
		case d.value > 5:
			runtime++
			notes = append(notes, fmt.Sprintf("good %s (%.1f)", d.label, d.value))
		default:
			notes = append(notes, fmt.Sprintf("weak %s (%.1f)", d.label, d.value))
			t.recommend(d.rec)
		}
	}
	if len(exec.Screenshots) > 0 {
		runtime++
		notes = append(notes, fmt.Sprintf("%d screenshots captured", len(exec.Screenshots)))
		t.insight("Runtime UI analysis performed with visual feedback")
	}
	for i, issue := range exec.Analysis.Issues {
		if i >= 3 {
			break
		}
		t.recommend(issue)
	}
	if runtime > uiRuntimeCap {
		runtime = uiRuntimeCap
	}
	if runtime > 0 {
		t.credit(runtime, "Runtime UI evaluation: "+strings.Join(notes, ", "))
	} else {
		t.observe("Runtime UI evaluation: " + strings.Join(notes, ", "))
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
