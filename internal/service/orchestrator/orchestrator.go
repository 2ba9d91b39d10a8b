package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

// DefaultHistoryCap 运行历史默认上限
const DefaultHistoryCap = 1000

// -----------------------------
// 错误定义
// -----------------------------
var (
	ErrNilEvidence         = errors.New("evidence context is nil")
	ErrOrchestratorStopped = errors.New("orchestrator is stopped")
)

// -----------------------------
// WeightProvider 接口
// -----------------------------

// WeightProvider 提供评委权重（agent id -> 百分比）
type WeightProvider interface {
	Weights() map[string]int
}

// -----------------------------
// 运行历史
// -----------------------------

// HistoryEntry 一次 Run 的记录
type HistoryEntry struct {
	Evidence   *domain.EvidenceContext
	Results    []domain.AgentResult
	Verdict    *domain.Verdict
	RecordedAt time.Time
}

// Options 构造参数
type Options struct {
	// Parallelism 大于 1 时使用协程池并发执行 Agent
	Parallelism int
	// HistoryCap 运行历史上限，<=0 使用默认值
	HistoryCap int
	// Weights 为空时类别权重按参与 Agent 平均分配
	Weights WeightProvider
}

// -----------------------------
// Orchestrator
// -----------------------------
type Orchestrator struct {
	registry agents.Registry
	weights  WeightProvider
	pool     *ants.Pool

	historyMu  sync.Mutex
	history    []HistoryEntry
	historyCap int

	stopOnce sync.Once
	stopped  chan struct{}
	now      func() time.Time
}

// -----------------------------
// 构造函数
// -----------------------------
func NewOrchestrator(registry agents.Registry, opts Options) (*Orchestrator, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is nil", agents.ErrInvalidAgent)
	}
	o := &Orchestrator{
		registry:   registry,
		weights:    opts.Weights,
		historyCap: opts.HistoryCap,
		stopped:    make(chan struct{}),
		now:        time.Now,
	}
	if o.historyCap <= 0 {
		o.historyCap = DefaultHistoryCap
	}
	if opts.Parallelism > 1 {
		pool, err := ants.NewPool(opts.Parallelism,
			ants.WithNonblocking(false),
			ants.WithExpiryDuration(5*time.Minute),
		)
		if err != nil {
			klog.Errorf("ants pool initialization failed: %v", err)
			return nil, err
		}
		o.pool = pool
	}
	return o, nil
}

// -----------------------------
// 停止
// -----------------------------
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopped)
		if o.pool != nil {
			if err := o.pool.ReleaseTimeout(30 * time.Second); err != nil {
				klog.Warningf("Orchestrator pool release timeout: %v", err)
			}
		}
		klog.V(6).Infof("Orchestrator stopped")
	})
}

// -----------------------------
// 执行
// -----------------------------

// Run 执行选定的 Agent 并聚合为 Verdict。
// selected 为 nil 时执行全部 Agent；单个 Agent 失败会被替换为零分零置信度的结果。
func (o *Orchestrator) Run(ctx context.Context, ec *domain.EvidenceContext, selected []string) (*domain.Verdict, error) {
	select {
	case <-o.stopped:
		return nil, ErrOrchestratorStopped
	default:
	}
	if ec == nil {
		return nil, ErrNilEvidence
	}
	ids, err := agents.NormalizeSelection(selected)
	if err != nil {
		return nil, err
	}
	ec.Prepare()

	klog.V(6).Infof("Orchestrator run: repo=%s, branch=%s, agents=%v", ec.RepositoryIdentity, ec.Branch, ids)

	results := make([]domain.AgentResult, len(ids))
	if o.pool != nil && len(ids) > 1 {
		err = o.runParallel(ctx, ec, ids, results)
	} else {
		err = o.runSequential(ctx, ec, ids, results)
	}
	if err != nil {
		return nil, err
	}

	verdict := Aggregate(results, o.currentWeights())
	verdict.GeneratedAt = o.now()
	o.record(ec, results, verdict)

	klog.V(6).Infof("Orchestrator done: repo=%s, total=%d, pass_fail=%s", ec.RepositoryIdentity, verdict.TotalScore, verdict.PassFail)
	return verdict, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, ec *domain.EvidenceContext, ids []string, results []domain.AgentResult) error {
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i] = o.runAgent(ctx, ec, id)
	}
	return nil
}

func (o *Orchestrator) runParallel(ctx context.Context, ec *domain.EvidenceContext, ids []string, results []domain.AgentResult) error {
	var wg sync.WaitGroup
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		i, id := i, id
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			results[i] = o.runAgent(ctx, ec, id)
		})
		if submitErr != nil {
			wg.Done()
			klog.Warningf("Agent submit failed, running inline: agent=%s, err=%v", id, submitErr)
			results[i] = o.runAgent(ctx, ec, id)
		}
	}
	wg.Wait()
	return ctx.Err()
}

// runAgent 执行单个 Agent 并隔离错误与 panic
func (o *Orchestrator) runAgent(ctx context.Context, ec *domain.EvidenceContext, id string) domain.AgentResult {
	agent, err := o.registry.Get(id)
	if err != nil {
		klog.Errorf("Agent lookup failed: agent=%s, repo=%s, err=%v", id, ec.RepositoryIdentity, err)
		return failedResult(id, err)
	}

	res, err := safeAnalyze(ctx, agent, ec)
	if err != nil {
		klog.Errorf("Agent failed: agent=%s, repo=%s, err=%v", id, ec.RepositoryIdentity, err)
		return failedResult(id, err)
	}
	return sanitize(id, res)
}

func safeAnalyze(ctx context.Context, agent agents.ScoringAgent, ec *domain.EvidenceContext) (res *domain.AgentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			klog.V(6).Infof("Agent panic stack: agent=%s\n%s", agent.ID(), debug.Stack())
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	res, err = agent.Analyze(ctx, ec)
	if err == nil && res == nil {
		err = errors.New("agent returned no result")
	}
	return res, err
}

// failedResult 失败 Agent 的占位结果
func failedResult(id string, cause error) domain.AgentResult {
	return domain.AgentResult{
		AgentID:         id,
		AgentName:       agents.CategoryName(id),
		Score:           0,
		Confidence:      0,
		Evidence:        []string{},
		Recommendations: []string{},
		Insights:        []string{},
		Risks:           []string{"Agent failed: " + cause.Error()},
		Comment:         fmt.Sprintf("Score 0/10 (%s). Agent failed: %v.", domain.QualityBucket(0), cause),
		Failed:          true,
	}
}

// sanitize 确保结果满足分数与置信度边界
func sanitize(id string, res *domain.AgentResult) domain.AgentResult {
	out := *res
	out.AgentID = id
	if out.AgentName == "" {
		out.AgentName = agents.CategoryName(id)
	}
	if out.Score < 0 {
		out.Score = 0
	} else if out.Score > 10 {
		out.Score = 10
	}
	if !(out.Confidence >= 0) {
		out.Confidence = 0
	} else if out.Confidence > 1 {
		out.Confidence = 1
	}
	return out
}

func (o *Orchestrator) currentWeights() map[string]int {
	if o.weights == nil {
		return nil
	}
	return o.weights.Weights()
}

// -----------------------------
// 历史
// -----------------------------
func (o *Orchestrator) record(ec *domain.EvidenceContext, results []domain.AgentResult, v *domain.Verdict) {
	o.historyMu.Lock()
	defer o.historyMu.Unlock()

	o.history = append(o.history, HistoryEntry{
		Evidence:   ec,
		Results:    results,
		Verdict:    v,
		RecordedAt: o.now(),
	})
	if over := len(o.history) - o.historyCap; over > 0 {
		o.history = append([]HistoryEntry(nil), o.history[over:]...)
	}
}

// History 返回运行历史副本，按时间先后排列
func (o *Orchestrator) History() []HistoryEntry {
	o.historyMu.Lock()
	defer o.historyMu.Unlock()
	return append([]HistoryEntry(nil), o.history...)
}

// Registry 返回使用的 Agent 注册中心
func (o *Orchestrator) Registry() agents.Registry {
	return o.registry
}
