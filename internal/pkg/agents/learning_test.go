package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

func learningSequence() []*domain.EvidenceContext {
	return []*domain.EvidenceContext{
		richContext(),
		emptyContext(),
		domain.NewEvidenceContext("octo/a", "main", files("main.go", "go.mod"), "# A\n\nTiny tool.", nil),
		richContext(),
		domain.NewEvidenceContext("octo/b", "main", files("app.py", "tests/test_app.py", "docs/usage.md", "docs/api.md"), "# B", nil),
		emptyContext(),
	}
}

func TestLearningAgentDeterministic(t *testing.T) {
	replay := func() ([]int, map[string]float64) {
		agent := NewLearningAgent(NewMemoryLearningStore(nil))
		var scores []int
		for _, ec := range learningSequence() {
			res, err := agent.Analyze(context.Background(), ec)
			require.NoError(t, err)
			scores = append(scores, res.Score)
		}
		return scores, agent.Snapshot().PatternWeights
	}

	scoresA, weightsA := replay()
	scoresB, weightsB := replay()
	if diff := cmp.Diff(scoresA, scoresB); diff != "" {
		t.Fatalf("scores differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(weightsA, weightsB); diff != "" {
		t.Fatalf("pattern weights differ (-first +second):\n%s", diff)
	}
}

func TestLearningAgentUpdatesAfterPrediction(t *testing.T) {
	agent := NewLearningAgent(NewMemoryLearningStore(nil))

	first, err := agent.Analyze(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.Equal(t, 0, first.Score)
	assert.Equal(t, 0.0, first.Confidence)

	weights := agent.Snapshot().PatternWeights
	assert.Equal(t, map[string]float64{"no_tests": -0.1, "no_docs": -0.1}, weights, "低分只惩罚缺失类模式")

	_, err = agent.Analyze(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"no_tests": -0.2, "no_docs": -0.2}, agent.Snapshot().PatternWeights)
}

func TestLearningAgentRewardsHighScores(t *testing.T) {
	agent := NewLearningAgent(NewMemoryLearningStore(nil))

	res, err := agent.Analyze(context.Background(), richContext())
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Score, rewardThreshold)
	assert.False(t, insightContaining(res, "Learned pattern adjustments"), "首次预测不使用本次更新")

	weights := agent.Snapshot().PatternWeights
	assert.Equal(t, 0.1, weights["has_tests"])
	assert.Equal(t, 0.1, weights["has_docs"])
	assert.Equal(t, 0.1, weights["tech_python"])
	_, penalized := weights["no_tests"]
	assert.False(t, penalized)

	second, err := agent.Analyze(context.Background(), richContext())
	require.NoError(t, err)
	assert.True(t, insightContaining(second, "Learned pattern adjustments"))
	assert.False(t, evidenceContaining(second, "Learned pattern adjustments"), "学习权重不计入证据")
}

func TestLearningEmptyContextStaysZeroConfidence(t *testing.T) {
	agent := NewLearningAgent(NewMemoryLearningStore(nil))
	for i := 0; i < 3; i++ {
		res, err := agent.Analyze(context.Background(), emptyContext())
		require.NoError(t, err)
		assert.Equal(t, 0, res.Score, "第 %d 次", i+1)
		assert.Equal(t, 0.0, res.Confidence, "第 %d 次：已学习的负权重不应产生置信度", i+1)
		assert.Empty(t, res.Evidence, "第 %d 次", i+1)
	}
	assert.InDelta(t, -0.3, agent.Snapshot().PatternWeights["no_tests"], 1e-9)
}

func insightContaining(r *domain.AgentResult, sub string) bool {
	for _, in := range r.Insights {
		if strings.Contains(in, sub) {
			return true
		}
	}
	return false
}

func TestLearningWeightsClamped(t *testing.T) {
	initial := NewLearningState()
	initial.PatternWeights["no_tests"] = -0.95
	initial.PatternWeights["no_docs"] = -1
	agent := NewLearningAgent(NewMemoryLearningStore(initial))

	for i := 0; i < 3; i++ {
		_, err := agent.Analyze(context.Background(), emptyContext())
		require.NoError(t, err)
	}
	w := agent.Snapshot().PatternWeights
	assert.Equal(t, -1.0, w["no_tests"])
	assert.Equal(t, -1.0, w["no_docs"])
}

func TestLearningHistoryCapped(t *testing.T) {
	initial := NewLearningState()
	for i := 0; i < LearningHistoryCap; i++ {
		initial.History = append(initial.History, LearningRecord{ID: fmt.Sprintf("h%d", i), Score: 5})
	}
	agent := NewLearningAgent(NewMemoryLearningStore(initial))

	_, err := agent.Analyze(context.Background(), emptyContext())
	require.NoError(t, err)

	h := agent.Snapshot().History
	require.Len(t, h, LearningHistoryCap)
	assert.Equal(t, "h1", h[0].ID, "最旧记录应被淘汰")
	assert.Equal(t, "octo/empty", h[len(h)-1].Repository)
}

func TestLearningPeriodicSave(t *testing.T) {
	store := NewMemoryLearningStore(nil)
	agent := NewLearningAgent(store)

	for i := 0; i < LearningSaveEvery-1; i++ {
		_, err := agent.Analyze(context.Background(), emptyContext())
		require.NoError(t, err)
	}
	assert.Equal(t, 0, store.Saves())

	_, err := agent.Analyze(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.Equal(t, 1, store.Saves())

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LearningSaveEvery, saved.TotalAnalyses)

	require.NoError(t, agent.Flush(context.Background()))
	assert.Equal(t, 2, store.Saves())
}

func TestLearningConcurrentAnalyze(t *testing.T) {
	agent := NewLearningAgent(NewMemoryLearningStore(nil))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = agent.Analyze(context.Background(), emptyContext())
		}()
	}
	wg.Wait()

	stats := agent.Stats()
	assert.Equal(t, 20, stats.TotalAnalyses)
	assert.Equal(t, 20, stats.HistorySize)
	assert.InDelta(t, -1.0, agent.Snapshot().PatternWeights["no_tests"], 1e-9)
}

func TestLearningStats(t *testing.T) {
	initial := NewLearningState()
	initial.PatternWeights = map[string]float64{"has_tests": 0.4, "tech_go": 0.2, "no_docs": -0.3, "neutral": 0}
	initial.History = []LearningRecord{{Score: 4}, {Score: 8}}
	initial.TotalAnalyses = 2

	stats := NewLearningAgent(NewMemoryLearningStore(initial)).Stats()
	assert.Equal(t, 2, stats.HistorySize)
	assert.Equal(t, 4, stats.PatternCount)
	assert.InDelta(t, 6.0, stats.AverageScore, 1e-9)
	assert.Equal(t, map[string]float64{"has_tests": 0.4, "tech_go": 0.2}, stats.TopPositive)
	assert.Equal(t, map[string]float64{"no_docs": -0.3}, stats.TopNegative)
}

func TestExtractLearningFeatures(t *testing.T) {
	f := ExtractLearningFeatures(richContext())
	assert.True(t, f.HasReadme)
	assert.True(t, f.HasTests)
	assert.True(t, f.HasDocs)
	assert.True(t, f.HasDockerfile)
	assert.True(t, f.HasCICD)
	assert.Contains(t, f.TechStack, "Python")
	assert.Contains(t, f.ArchPatterns, "mvc")
	assert.Greater(t, f.Complexity, 0.0)
	assert.LessOrEqual(t, f.Complexity, 1.0)

	empty := ExtractLearningFeatures(emptyContext())
	assert.Equal(t, LearningFeatures{TechStack: []string{}}, empty)
}

func TestFileLearningStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning", "state.json")
	store := NewFileLearningStore(path)

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.PatternWeights, "文件不存在时返回空状态")

	agent := NewLearningAgent(store)
	_, err = agent.Analyze(context.Background(), richContext())
	require.NoError(t, err)
	require.NoError(t, agent.Flush(context.Background()))

	reloaded := NewLearningAgent(NewFileLearningStore(path))
	assert.Equal(t, agent.Snapshot().PatternWeights, reloaded.Snapshot().PatternWeights)
	assert.Equal(t, 1, reloaded.Stats().TotalAnalyses)
}
