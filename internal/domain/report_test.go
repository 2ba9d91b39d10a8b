package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCloneIsDeep(t *testing.T) {
	src := &Report{
		ID:               "01A",
		Agents:           []string{"security"},
		MissingArtifacts: []string{ArtifactTestResults},
		Verdict: &Verdict{
			TotalScore: 6,
			Breakdown:  map[string]CategoryBreakdown{"Security": {Score: 6, Evidence: []string{"ev"}}},
			Risks:      []Finding{{SourceAgent: "security", Text: "risk"}},
			AgentResults: []AgentResult{
				{AgentID: "security", Evidence: []string{"ev"}, Metrics: map[string]int{"m": 1}},
			},
			GeneratedAt: time.Now(),
		},
	}

	dup := src.Clone()
	require.NotSame(t, src.Verdict, dup.Verdict)
	dup.Agents[0] = "code_analysis"
	dup.MissingArtifacts[0] = "x"
	dup.Verdict.TotalScore = 1
	dup.Verdict.Risks[0].Text = "changed"
	dup.Verdict.Breakdown["Security"].Evidence[0] = "changed"
	dup.Verdict.AgentResults[0].Evidence[0] = "changed"
	dup.Verdict.AgentResults[0].Metrics["m"] = 2

	assert.Equal(t, "security", src.Agents[0])
	assert.Equal(t, ArtifactTestResults, src.MissingArtifacts[0])
	assert.Equal(t, 6, src.Verdict.TotalScore)
	assert.Equal(t, "risk", src.Verdict.Risks[0].Text)
	assert.Equal(t, "ev", src.Verdict.Breakdown["Security"].Evidence[0])
	assert.Equal(t, "ev", src.Verdict.AgentResults[0].Evidence[0])
	assert.Equal(t, 1, src.Verdict.AgentResults[0].Metrics["m"])

	var nilReport *Report
	assert.Nil(t, nilReport.Clone())
}
