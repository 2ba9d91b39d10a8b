package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/cache"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/github"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/orchestrator"
)

type fakeFetcher struct {
	tree      []domain.FileEntry
	readme    string
	treeErr   error
	readmeErr error
	delay     time.Duration
	calls     atomic.Int32
}

func (f *fakeFetcher) FetchTree(ctx context.Context, ref github.RepoRef, branch string) ([]domain.FileEntry, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.tree, f.treeErr
}

func (f *fakeFetcher) FetchReadme(ctx context.Context, ref github.RepoRef, branch string) (string, error) {
	return f.readme, f.readmeErr
}

type eventRecorder struct {
	mu     sync.Mutex
	events []eventbus.AnalysisEventType
}

func (r *eventRecorder) handle(ctx context.Context, e eventbus.AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
	return nil
}

func newTestGrader(t *testing.T, fetcher Fetcher) (*GraderService, *eventRecorder) {
	t.Helper()
	reg := agents.NewDefaultRegistry(agents.NewMemoryLearningStore(nil))
	orc, err := orchestrator.NewOrchestrator(reg, orchestrator.Options{})
	require.NoError(t, err)
	t.Cleanup(orc.Stop)

	reportCache, err := cache.New[*domain.Report](10)
	require.NoError(t, err)

	bus := eventbus.NewAnalysisEventBus()
	rec := &eventRecorder{}
	bus.Subscribe(eventbus.AnalysisCompleted, rec.handle)
	bus.Subscribe(eventbus.AnalysisFailed, rec.handle)
	bus.Subscribe(eventbus.AnalysisCacheHit, rec.handle)

	return NewGraderService(orc, fetcher, reportCache, bus, time.Second), rec
}

func sampleTree() []domain.FileEntry {
	return []domain.FileEntry{
		{Path: "src", Kind: domain.KindDirectory},
		{Path: "src/app.py", Kind: domain.KindFile},
		{Path: "tests/test_app.py", Kind: domain.KindFile},
		{Path: "Dockerfile", Kind: domain.KindFile},
		{Path: ".github/workflows/ci.yml", Kind: domain.KindFile},
	}
}

func TestGradeCompletesAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{tree: sampleTree(), readme: "# App\n## Architecture\nlayers"}
	grader, rec := newTestGrader(t, fetcher)
	ctx := context.Background()

	first, err := grader.Grade(ctx, GradeRequest{RepoURL: "https://github.com/Octo/App.git", Agents: []string{"security", "architecture"}})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octo/app", first.RepoURL)
	assert.Equal(t, DefaultBranch, first.Branch)
	assert.Equal(t, []string{"architecture", "security"}, first.Agents)
	assert.Equal(t, "completed", first.Status)
	assert.Len(t, first.ID, 26, "报告 ID 应为 ULID")
	assert.False(t, first.Cached)
	require.NotNil(t, first.Verdict)
	assert.Len(t, first.Verdict.AgentResults, 2)
	assert.Contains(t, first.MissingArtifacts, domain.ArtifactTestResults)

	second, err := grader.Grade(ctx, GradeRequest{RepoURL: "https://github.com/octo/app", Branch: "main", Agents: []string{"architecture", "4"}})
	require.NoError(t, err)
	assert.True(t, second.Cached, "Agent 顺序不同也应命中缓存")
	assert.Equal(t, "cached", second.Status)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, first.Cached, "缓存命中不应修改原报告")
	assert.Equal(t, int32(1), fetcher.calls.Load())

	third, err := grader.Grade(ctx, GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{"architecture"}})
	require.NoError(t, err)
	assert.False(t, third.Cached, "不同 Agent 子集应未命中")

	stats := grader.CacheStats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)

	assert.Equal(t, []eventbus.AnalysisEventType{
		eventbus.AnalysisCompleted, eventbus.AnalysisCacheHit, eventbus.AnalysisCompleted,
	}, rec.events)

	grader.ClearCache()
	assert.Equal(t, 0, grader.CacheStats().Size)
}

func TestGradeCachedReportsAreIndependent(t *testing.T) {
	fetcher := &fakeFetcher{tree: sampleTree(), readme: "# App"}
	grader, _ := newTestGrader(t, fetcher)
	ctx := context.Background()
	req := GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{"security"}}

	first, err := grader.Grade(ctx, req)
	require.NoError(t, err)
	wantScore := first.Verdict.TotalScore
	wantRisks := len(first.Verdict.Risks)

	// 修改首次返回的报告不影响缓存
	first.Verdict.TotalScore = 99
	first.Verdict.Risks = append(first.Verdict.Risks, domain.Finding{Text: "injected"})

	hit, err := grader.Grade(ctx, req)
	require.NoError(t, err)
	require.True(t, hit.Cached)
	assert.Equal(t, wantScore, hit.Verdict.TotalScore)
	assert.Len(t, hit.Verdict.Risks, wantRisks)

	// 修改命中副本同样不影响缓存
	hit.Verdict.TotalScore = 42
	hit.Verdict.AgentResults[0].Evidence = append(hit.Verdict.AgentResults[0].Evidence, "injected")
	again, err := grader.Grade(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, wantScore, again.Verdict.TotalScore)
	assert.NotContains(t, again.Verdict.AgentResults[0].Evidence, "injected")
}

func TestGradeSkipCache(t *testing.T) {
	fetcher := &fakeFetcher{tree: sampleTree()}
	grader, _ := newTestGrader(t, fetcher)
	req := GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{"code_analysis"}}

	_, err := grader.Grade(context.Background(), req)
	require.NoError(t, err)
	req.SkipCache = true
	report, err := grader.Grade(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, report.Cached)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestGradeFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{treeErr: errors.New("rate limited")}
	grader, rec := newTestGrader(t, fetcher)

	report, err := grader.Grade(context.Background(), GradeRequest{RepoURL: "https://github.com/octo/app"})
	require.NoError(t, err, "取数失败应返回失败报告而不是 error")
	assert.True(t, report.Failed())
	assert.Equal(t, "failed", report.Status)
	assert.Contains(t, report.Error, "rate limited")
	require.NotNil(t, report.Verdict)
	assert.Equal(t, 0, report.Verdict.TotalScore)
	assert.Equal(t, domain.Fail, report.Verdict.PassFail)
	assert.Equal(t, []eventbus.AnalysisEventType{eventbus.AnalysisFailed}, rec.events)
	assert.Equal(t, 0, grader.CacheStats().Size, "失败报告不应写入缓存")
}

func TestGradeFetchTimeout(t *testing.T) {
	fetcher := &fakeFetcher{tree: sampleTree(), delay: time.Second}
	grader, _ := newTestGrader(t, fetcher)
	grader.fetchTimeout = 20 * time.Millisecond

	report, err := grader.Grade(context.Background(), GradeRequest{RepoURL: "https://github.com/octo/app"})
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.Contains(t, report.Error, "deadline")
}

func TestGradeReadmeFailureIsNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{tree: sampleTree(), readmeErr: errors.New("boom")}
	grader, _ := newTestGrader(t, fetcher)

	report, err := grader.Grade(context.Background(), GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{"architecture"}})
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, "completed", report.Status)
}

func TestGradeInvalidRequests(t *testing.T) {
	grader, rec := newTestGrader(t, &fakeFetcher{})
	tests := []struct {
		name string
		req  GradeRequest
	}{
		{name: "empty url", req: GradeRequest{}},
		{name: "not github", req: GradeRequest{RepoURL: "https://example.com/a/b"}},
		{name: "empty selection", req: GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{}}},
		{name: "unknown agent", req: GradeRequest{RepoURL: "https://github.com/octo/app", Agents: []string{"magic"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grader.Grade(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Empty(t, rec.events, "无效请求不应触发事件")
}

func TestGradeContextEmptyRepository(t *testing.T) {
	grader, rec := newTestGrader(t, &fakeFetcher{})
	ec := domain.NewEvidenceContext("local/empty", "", nil, "", nil)

	report, err := grader.GradeContext(context.Background(), ec, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Verdict.TotalScore)
	assert.Len(t, report.Verdict.AgentResults, len(agents.AllIDs))
	for _, r := range report.Verdict.AgentResults {
		assert.Zero(t, r.Confidence, "%s 空输入置信度应为 0", r.AgentID)
	}
	assert.Equal(t, []eventbus.AnalysisEventType{eventbus.AnalysisCompleted}, rec.events)

	_, err = grader.GradeContext(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
