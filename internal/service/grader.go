package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/cache"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/github"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/orchestrator"
	"github.com/YashRaythatha/hackathon-code-validation/internal/service/statemachine"
)

const (
	DefaultBranch       = "main"
	DefaultFetchTimeout = 30 * time.Second
)

var ErrInvalidRequest = errors.New("invalid grade request")

// Fetcher 仓库取数协作方
type Fetcher interface {
	FetchTree(ctx context.Context, ref github.RepoRef, branch string) ([]domain.FileEntry, error)
	FetchReadme(ctx context.Context, ref github.RepoRef, branch string) (string, error)
}

// GradeRequest 一次远程仓库评分请求
type GradeRequest struct {
	RepoURL     string                    `json:"repo_url" binding:"required"`
	Branch      string                    `json:"branch"`
	Agents      []string                  `json:"agents"`
	Artifacts   map[string]any            `json:"artifacts"`
	UIExecution *domain.UIExecutionResult `json:"ui_execution"`
	// SkipCache 为 true 时跳过缓存读取，结果仍会写入缓存
	SkipCache bool `json:"skip_cache"`
}

type GraderService struct {
	orchestrator *orchestrator.Orchestrator
	fetcher      Fetcher
	cache        *cache.Cache[*domain.Report]
	bus          *eventbus.AnalysisEventBus
	fetchTimeout time.Duration
	stateMachine *statemachine.AnalysisStateMachine
	now          func() time.Time
	newID        func() string
}

func NewGraderService(orc *orchestrator.Orchestrator, fetcher Fetcher, reportCache *cache.Cache[*domain.Report], bus *eventbus.AnalysisEventBus, fetchTimeout time.Duration) *GraderService {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &GraderService{
		orchestrator: orc,
		fetcher:      fetcher,
		cache:        reportCache,
		bus:          bus,
		fetchTimeout: fetchTimeout,
		stateMachine: statemachine.NewAnalysisStateMachine(),
		now:          time.Now,
		newID:        func() string { return ulid.Make().String() },
	}
}

// Grade 评分远程仓库。
// 仓库取数失败不返回 error，而是返回 Error 非空、总分为 0 的报告；只有请求本身无效或被取消时返回 error。
func (s *GraderService) Grade(ctx context.Context, req GradeRequest) (*domain.Report, error) {
	ref, err := github.ParseRepoURL(req.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	branch := strings.TrimSpace(req.Branch)
	if branch == "" {
		branch = DefaultBranch
	}
	ids, err := agents.NormalizeSelection(req.Agents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	repoURL := ref.CanonicalURL()
	key := cache.Key(repoURL, branch, ids)
	report := s.newReport(repoURL, branch, ids)

	if !req.SkipCache {
		if cached, ok := s.cache.Get(key); ok {
			hit := s.cachedCopy(cached)
			if err := s.transition(report, statemachine.AnalysisStatusCached); err != nil {
				return nil, err
			}
			hit.Status = report.Status
			s.publish(ctx, eventbus.AnalysisCacheHit, hit)
			return hit, nil
		}
	}

	if err := s.transition(report, statemachine.AnalysisStatusFetching); err != nil {
		return nil, err
	}
	tree, readme, err := s.fetch(ctx, ref, branch)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		klog.Errorf("仓库取数失败: repo=%s, branch=%s, error=%v", repoURL, branch, err)
		return s.fail(ctx, report, fmt.Sprintf("failed to fetch repository: %v", err))
	}

	ec := domain.NewEvidenceContext(ref.Identity(), branch, tree, readme, req.Artifacts)
	ec.UIExecution = req.UIExecution
	if err := s.score(ctx, report, ec); err != nil {
		return nil, err
	}
	s.cache.Set(key, report.Clone())
	s.publish(ctx, eventbus.AnalysisCompleted, report)
	return report, nil
}

// GradeContext 对已构建好的证据上下文评分，用于本地目录与上下文文件
func (s *GraderService) GradeContext(ctx context.Context, ec *domain.EvidenceContext, selected []string) (*domain.Report, error) {
	if ec == nil {
		return nil, fmt.Errorf("%w: evidence context is nil", ErrInvalidRequest)
	}
	ids, err := agents.NormalizeSelection(selected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	report := s.newReport(ec.RepositoryIdentity, ec.Branch, ids)
	if err := s.score(ctx, report, ec); err != nil {
		return nil, err
	}
	s.publish(ctx, eventbus.AnalysisCompleted, report)
	return report, nil
}

func (s *GraderService) newReport(repoURL, branch string, ids []string) *domain.Report {
	return &domain.Report{
		ID:               s.newID(),
		RepoURL:          repoURL,
		Branch:           branch,
		Agents:           ids,
		Status:           string(statemachine.AnalysisStatusPending),
		MissingArtifacts: []string{},
		CreatedAt:        s.now(),
	}
}

func (s *GraderService) score(ctx context.Context, report *domain.Report, ec *domain.EvidenceContext) error {
	if err := s.transition(report, statemachine.AnalysisStatusScoring); err != nil {
		return err
	}
	verdict, err := s.orchestrator.Run(ctx, ec, report.Agents)
	if err != nil {
		klog.Errorf("评分执行失败: repo=%s, error=%v", report.RepoURL, err)
		_ = s.transition(report, statemachine.AnalysisStatusFailed)
		return err
	}
	report.Verdict = verdict
	if missing := ec.MissingArtifacts(); missing != nil {
		report.MissingArtifacts = missing
	}
	klog.V(6).Infof("评分完成: id=%s, repo=%s, score=%d, pass_fail=%s", report.ID, report.RepoURL, verdict.TotalScore, verdict.PassFail)
	return s.transition(report, statemachine.AnalysisStatusCompleted)
}

// fetch 并发获取文件树与 README；文件树是硬依赖，README 失败只记录警告
func (s *GraderService) fetch(ctx context.Context, ref github.RepoRef, branch string) ([]domain.FileEntry, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		tree   []domain.FileEntry
		readme string
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		tree, err = s.fetcher.FetchTree(gctx, ref, branch)
		return err
	})
	g.Go(func() error {
		text, err := s.fetcher.FetchReadme(gctx, ref, branch)
		if err != nil {
			klog.Warningf("README 获取失败，按空 README 处理: repo=%s, error=%v", ref.Identity(), err)
			return nil
		}
		readme = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return tree, readme, nil
}

func (s *GraderService) fail(ctx context.Context, report *domain.Report, msg string) (*domain.Report, error) {
	if err := s.transition(report, statemachine.AnalysisStatusFailed); err != nil {
		return nil, err
	}
	report.Error = msg
	report.Verdict = domain.FailedVerdict(report.Agents, s.now())
	report.Verdict.Risks = []domain.Finding{{SourceAgent: "grader", Text: msg}}
	s.publish(ctx, eventbus.AnalysisFailed, report)
	return report, nil
}

func (s *GraderService) transition(report *domain.Report, to statemachine.AnalysisStatus) error {
	if err := s.stateMachine.Transition(statemachine.AnalysisStatus(report.Status), to, report.ID); err != nil {
		return err
	}
	report.Status = string(to)
	return nil
}

// cachedCopy 返回缓存报告的深拷贝，标记为缓存命中
func (s *GraderService) cachedCopy(src *domain.Report) *domain.Report {
	hit := src.Clone()
	hit.Cached = true
	return hit
}

func (s *GraderService) publish(ctx context.Context, eventType eventbus.AnalysisEventType, report *domain.Report) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.AnalysisEvent{Type: eventType, Report: report}); err != nil {
		klog.Warningf("评分事件处理失败: type=%s, id=%s, error=%v", eventType, report.ID, err)
	}
}

// ClearCache 清空评分缓存
func (s *GraderService) ClearCache() {
	s.cache.Clear()
}

// CacheStats 评分缓存统计
func (s *GraderService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Orchestrator 返回底层编排器
func (s *GraderService) Orchestrator() *orchestrator.Orchestrator {
	return s.orchestrator
}
