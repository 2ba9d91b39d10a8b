package subscriber

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
	"github.com/YashRaythatha/hackathon-code-validation/internal/repository"
)

func openTestRepo(t *testing.T) repository.AnalysisRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.AnalysisRecord{}))
	return repository.NewAnalysisRepository(db)
}

func sampleReport(id string) *domain.Report {
	return &domain.Report{
		ID:               id,
		RepoURL:          "https://github.com/octo/app",
		Branch:           "main",
		Agents:           []string{"code_analysis", "security"},
		MissingArtifacts: []string{"test_results"},
		Verdict: &domain.Verdict{
			TotalScore: 7,
			PassFail:   domain.Pass,
			Confidence: 0.8,
			Breakdown:  map[string]domain.CategoryBreakdown{"Code Quality": {AgentID: "code_analysis", Score: 7}},
		},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnalysisSubscriberPersistsReports(t *testing.T) {
	repo := openTestRepo(t)
	bus := eventbus.NewAnalysisEventBus()
	NewAnalysisEventSubscriber(repo).Register(bus)

	require.NoError(t, bus.Publish(context.Background(), eventbus.AnalysisEvent{Type: eventbus.AnalysisCompleted, Report: sampleReport("01COMPLETED")}))

	failed := sampleReport("01FAILED")
	failed.Error = "fetch failed"
	failed.Verdict = domain.FailedVerdict(failed.Agents, failed.CreatedAt)
	require.NoError(t, bus.Publish(context.Background(), eventbus.AnalysisEvent{Type: eventbus.AnalysisFailed, Report: failed}))

	cached := sampleReport("01CACHED")
	require.NoError(t, bus.Publish(context.Background(), eventbus.AnalysisEvent{Type: eventbus.AnalysisCacheHit, Report: cached}))

	records, err := repo.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, records, 2, "缓存命中不应重复保存")

	record, err := repo.Get("01COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, 7, record.TotalScore)
	assert.Equal(t, "pass", record.PassFail)
	assert.Equal(t, "code_analysis,security", record.Agents)

	report, err := record.ToReport()
	require.NoError(t, err)
	assert.Equal(t, []string{"test_results"}, report.MissingArtifacts)
	require.NotNil(t, report.Verdict)
	assert.Equal(t, 7, report.Verdict.Breakdown["Code Quality"].Score)

	failedRecord, err := repo.Get("01FAILED")
	require.NoError(t, err)
	assert.Equal(t, 0, failedRecord.TotalScore)
	assert.Equal(t, "fail", failedRecord.PassFail)
	assert.Equal(t, "fetch failed", failedRecord.ErrorMsg)
}

func TestAnalysisSubscriberRejectsEmptyReport(t *testing.T) {
	bus := eventbus.NewAnalysisEventBus()
	NewAnalysisEventSubscriber(openTestRepo(t)).Register(bus)
	err := bus.Publish(context.Background(), eventbus.AnalysisEvent{Type: eventbus.AnalysisCompleted})
	assert.Error(t, err)
}

type countingClearer struct{ n int }

func (c *countingClearer) ClearCache() { c.n++ }

func TestJudgeConfigSubscriberClearsCache(t *testing.T) {
	clearer := &countingClearer{}
	bus := eventbus.NewJudgeConfigEventBus()
	NewJudgeConfigEventSubscriber(clearer).Register(bus)

	require.NoError(t, bus.Publish(context.Background(), eventbus.JudgeConfigEvent{Type: eventbus.JudgeWeightsUpdated, Preset: "tech"}))
	assert.Equal(t, 1, clearer.n)
}
