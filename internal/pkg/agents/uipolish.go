package agents

import (
	"context"
	"fmt"
	"math"
	"path"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// UIUXPolishAgent 界面打磨程度评分
type UIUXPolishAgent struct{}

// NewUIUXPolishAgent 创建 UI/UX Polish Agent
func NewUIUXPolishAgent() *UIUXPolishAgent { return &UIUXPolishAgent{} }

func (a *UIUXPolishAgent) ID() string   { return IDUIUXPolish }
func (a *UIUXPolishAgent) Name() string { return CategoryName(IDUIUXPolish) }

// Analyze 以截图、页面路由、品牌素材、界面文案、排版与布局信号计算五项子指标
func (a *UIUXPolishAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	t := newTally()
	files := ec.LowerFiles()

	var screenshots []string
	for _, f := range files {
		if ImageExtensions[path.Ext(f)] && domain.ContainsAny(f, ScreenshotKeywords) {
			screenshots = append(screenshots, f)
		}
	}
	if ec.UIExecution != nil {
		for _, s := range ec.UIExecution.Screenshots {
			screenshots = append(screenshots, s.Path)
		}
	}
	hasDemo := len(screenshots) > 0 || ec.HasArtifact(domain.ArtifactScreenshotsOrDemo)
	routes := pathsMatching(files, RouteKeywords)
	brand := pathsMatching(files, BrandKeywords)
	copyText := parseReadme(ec.Readme).copyExamples()
	typography := pathsMatching(files, TypographyKeywords)
	layout := pathsMatching(files, LayoutKeywords)
	styles := ec.FilesWithExt(StyleExtensions)

	fields := 0
	if hasDemo {
		fields++
		t.signal(fmt.Sprintf("Visual material available (%d screenshots)", len(screenshots)))
	} else {
		t.recommend("Add screenshots that show the finished interface")
	}
	if len(routes) > 0 {
		fields++
		t.signal(fmt.Sprintf("Pages/routes: %d", len(routes)))
	}
	if len(brand) > 0 {
		fields++
		t.signal("Brand and theme assets: " + joinLimited(brand, 3))
	} else if len(styles) > 0 {
		t.recommend("Define a consistent theme (colors, logo, design tokens)")
	}
	if len(copyText) > 0 {
		fields++
		t.signal(fmt.Sprintf("Interface copy examples: %d", len(copyText)))
	}
	if len(typography)+len(layout) > 0 {
		fields++
		t.signal(fmt.Sprintf("Typography/layout definitions: %d", len(typography)+len(layout)))
	}
	runtimeVisual := 0.0
	if ec.UIExecution != nil && ec.UIExecution.Success {
		fields++
		runtimeVisual = ec.UIExecution.Analysis.VisualQuality
		t.signal(fmt.Sprintf("Runtime visual quality %.1f", runtimeVisual))
	}

	visual := 0
	if hasDemo {
		visual += 4
	}
	if len(styles) > 0 {
		visual += 2
	}
	if runtimeVisual > 0 {
		visual = int(math.Round((float64(visual) + runtimeVisual) / 2))
	}
	spacing := 0
	if len(layout) > 0 {
		spacing += 6
	}
	if len(styles) > 0 {
		spacing += 2
	}
	hierarchy := min(10, 2*len(routes))
	color := 0
	if len(brand) > 0 {
		color += 6
	}
	if ec.HasArtifact(domain.ArtifactAccessibilityNotes) {
		color += 2
	}
	typo := 0
	if len(typography) > 0 {
		typo += 6
	}
	if len(copyText) > 0 {
		typo += 2
	}

	metrics := []struct {
		name  string
		value int
	}{
		{"visual_polish", visual},
		{"spacing_layout", spacing},
		{"hierarchy", hierarchy},
		{"color_contrast", color},
		{"typography", typo},
	}
	sum := 0
	for _, m := range metrics {
		t.metric(m.name, m.value)
		sum += t.metrics[m.name]
	}
	overall := int(math.Round(float64(sum) / float64(len(metrics))))

	return t.resultWith(IDUIUXPolish, overall, float64(fields)/6), nil
}
