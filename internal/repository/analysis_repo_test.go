package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.AnalysisRecord{}, &model.LearningSnapshot{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func TestAnalysisRepositoryCreateGetList(t *testing.T) {
	repo := NewAnalysisRepository(openTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []model.AnalysisRecord{
		{ID: "01A", RepoURL: "https://github.com/octo/a", Branch: "main", TotalScore: 7, PassFail: "pass", CreatedAt: base},
		{ID: "01B", RepoURL: "https://github.com/octo/b", Branch: "main", TotalScore: 3, PassFail: "fail", CreatedAt: base.Add(time.Minute)},
		{ID: "01C", RepoURL: "https://github.com/octo/a", Branch: "dev", TotalScore: 5, PassFail: "borderline", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range records {
		require.NoError(t, repo.Create(&records[i]))
	}

	got, err := repo.Get("01B")
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalScore)
	assert.Equal(t, "fail", got.PassFail)

	_, err = repo.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := repo.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "01C", recent[0].ID)
	assert.Equal(t, "01B", recent[1].ID)

	byRepo, err := repo.ListByRepo("https://github.com/octo/a", 0)
	require.NoError(t, err)
	require.Len(t, byRepo, 2)
	assert.Equal(t, "dev", byRepo[0].Branch)
}

func TestLearningStateRepositoryRoundTrip(t *testing.T) {
	repo := NewLearningStateRepository(openTestDB(t))
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.PatternWeights)
	assert.Empty(t, empty.History)

	state := agents.NewLearningState()
	state.PatternWeights["has_tests"] = 0.3
	state.History = append(state.History, agents.LearningRecord{ID: "r1", Repository: "octo/a", Score: 8})
	state.TotalAnalyses = 1
	require.NoError(t, repo.Save(ctx, state))

	state.PatternWeights["has_tests"] = 0.4
	state.TotalAnalyses = 2
	require.NoError(t, repo.Save(ctx, state), "重复保存应更新同一行")

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.4, loaded.PatternWeights["has_tests"])
	assert.Equal(t, 2, loaded.TotalAnalyses)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "octo/a", loaded.History[0].Repository)
}

func TestLearningStateRepositoryFeedsAgent(t *testing.T) {
	repo := NewLearningStateRepository(openTestDB(t))
	agent := agents.NewLearningAgent(repo)
	ec := domain.NewEvidenceContext("octo/empty", "main", nil, "", nil)
	for i := 0; i < agents.LearningSaveEvery; i++ {
		_, err := agent.Analyze(context.Background(), ec)
		require.NoError(t, err)
	}

	saved, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agents.LearningSaveEvery, saved.TotalAnalyses)
	assert.Equal(t, -1.0, saved.PatternWeights["no_tests"])
}
