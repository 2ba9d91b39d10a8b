package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	verdictStyles = map[domain.PassFail]lipgloss.Style{
		domain.Pass:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950")),
		domain.Borderline: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D29922")),
		domain.Fail:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
	}
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// maxListed 文本报告中每类条目最多展示的数量
const maxListed = 5

// renderReport 以终端友好的文本展示报告
func renderReport(r *domain.Report) string {
	var b strings.Builder

	target := r.RepoURL
	if r.Branch != "" {
		target += " (" + r.Branch + ")"
	}
	b.WriteString(titleStyle.Render("Hackathon grade: "+target) + "\n")

	if r.Failed() {
		b.WriteString(verdictStyles[domain.Fail].Render("Analysis failed: "+r.Error) + "\n")
		return b.String()
	}
	v := r.Verdict
	if v == nil {
		return b.String()
	}

	headline := fmt.Sprintf("%d/10  %s", v.TotalScore, strings.ToUpper(string(v.PassFail)))
	summary := verdictStyles[v.PassFail].Render(headline) +
		labelStyle.Render(fmt.Sprintf("  confidence %.2f", v.Confidence))
	if r.Cached {
		summary += labelStyle.Render("  [cached]")
	}
	b.WriteString(boxStyle.Render(summary) + "\n")

	names := make([]string, 0, len(v.Breakdown))
	for name := range v.Breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := v.Breakdown[name]
		fmt.Fprintf(&b, "  %-22s %2d/10  weight %5.1f%%  conf %.2f\n", name, c.Score, c.Weight, c.Confidence)
	}
	if v.Calculation != "" {
		b.WriteString(labelStyle.Render(v.Calculation) + "\n")
	}

	writeFindings(&b, "Risks", v.Risks)
	writeFindings(&b, "Recommendations", v.Recommendations)
	if len(r.MissingArtifacts) > 0 {
		b.WriteString(labelStyle.Render("Missing artifacts: "+strings.Join(r.MissingArtifacts, ", ")) + "\n")
	}
	return b.String()
}

func writeFindings(b *strings.Builder, title string, items []domain.Finding) {
	if len(items) == 0 {
		return
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	for i, f := range items {
		if i == maxListed {
			fmt.Fprintf(b, "  ... %d more\n", len(items)-maxListed)
			break
		}
		fmt.Fprintf(b, "  - [%s] %s\n", f.SourceAgent, f.Text)
	}
}
