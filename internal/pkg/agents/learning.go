package agents

import (
	"context"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

const (
	// LearningHistoryCap 历史记录上限，超出后淘汰最旧记录
	LearningHistoryCap = 1000
	// LearningSaveEvery 每记录 N 次分析持久化一次
	LearningSaveEvery = 10
	// learningStep 每次奖惩的权重调整量
	learningStep = 0.1
	// rewardThreshold/penaltyThreshold 触发奖励/惩罚的分数阈值
	rewardThreshold  = 7
	penaltyThreshold = 3
)

// LearningAgent 基于历史反馈调整模式权重的启发式评分。
// 每次 Analyze 先用当前权重预测，再记录历史并更新权重；更新只影响下一次调用。
type LearningAgent struct {
	mu        sync.Mutex
	store     LearningStore
	state     *LearningState
	sinceSave int
	saveEvery int
	now       func() time.Time
	newID     func() string
}

// LearningStats 学习状态统计
type LearningStats struct {
	HistorySize      int                `json:"history_size"`
	TotalAnalyses    int                `json:"total_analyses"`
	PatternCount     int                `json:"pattern_count"`
	AverageScore     float64            `json:"average_score"`
	TopPositive      map[string]float64 `json:"top_positive"`
	TopNegative      map[string]float64 `json:"top_negative"`
	PendingSaveCount int                `json:"pending_save_count"`
}

// NewLearningAgent 创建学习 Agent 并从 store 加载状态；加载失败时从空状态开始
func NewLearningAgent(store LearningStore) *LearningAgent {
	if store == nil {
		store = NewMemoryLearningStore(nil)
	}
	a := &LearningAgent{
		store:     store,
		saveEvery: LearningSaveEvery,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	state, err := store.Load(context.Background())
	if err != nil {
		klog.Warningf("学习状态加载失败，使用空状态: %v", err)
		state = NewLearningState()
	}
	a.state = state
	return a
}

func (a *LearningAgent) ID() string   { return IDLearning }
func (a *LearningAgent) Name() string { return CategoryName(IDLearning) }

// Analyze 预测分数后记录历史并更新权重
func (a *LearningAgent) Analyze(ctx context.Context, ec *domain.EvidenceContext) (*domain.AgentResult, error) {
	features := ExtractLearningFeatures(ec)

	a.mu.Lock()
	defer a.mu.Unlock()

	t := newTally()
	bonus, penalty := a.describeFeatures(t, features)
	keys := patternKeys(features)
	learned := 0.0
	var applied []string
	for _, k := range keys {
		if w, ok := a.state.PatternWeights[k]; ok && w != 0 {
			learned += w
			applied = append(applied, fmt.Sprintf("%s=%+.2f", k, w))
		}
	}
	raw := 5 + bonus - penalty + learned
	score := clampScore(int(math.Round(raw)))

	t.insight(fmt.Sprintf("Prediction 5 + %.1f bonus - %.1f penalty + %.2f learned = %.2f", bonus, penalty, learned, raw))
	// 学习到的权重不是仓库证据，只作为洞察输出
	if len(applied) > 0 {
		t.insight("Learned pattern adjustments: " + strings.Join(applied, ", "))
	}
	t.metric("complexity", int(math.Round(features.Complexity*10)))

	result := t.result(IDLearning)
	result.Score = score
	result.Comment = explain(score, t.credits, t.deductions)

	if err := a.recordLocked(ctx, ec.RepositoryIdentity, features, score); err != nil {
		klog.Warningf("学习状态保存失败: repo=%s, err=%v", ec.RepositoryIdentity, err)
	}
	return result, nil
}

// describeFeatures 计算固定奖惩并写入证据，返回 (bonus, penalty)
func (a *LearningAgent) describeFeatures(t *tally, f LearningFeatures) (float64, float64) {
	bonus, penalty := 0.0, 0.0
	if f.FileCount == 0 {
		penalty += 2
		t.deductions = append(t.deductions, "empty file tree (-2)")
	} else {
		t.observe(fmt.Sprintf("Feature vector: %d files, %d code, %d tests, %d docs", f.FileCount, f.CodeFiles, f.TestFiles, f.DocFiles))
	}
	add := func(cond bool, v float64, label string) {
		if cond {
			bonus += v
			t.quality++
			t.credits = append(t.credits, fmt.Sprintf("%s (+%.1f)", label, v))
		}
	}
	add(f.FileCount > 10, 1, "more than 10 files")
	add(f.FileCount > 50, 1, "more than 50 files")
	add(f.HasTests, 1.5, "tests")
	add(f.HasDocs, 1, "documentation")
	add(f.ConfigFiles > 0, 0.5, "configuration")
	add(f.HasDockerfile, 1, "Dockerfile")
	add(f.HasCICD, 1, "CI/CD")
	add(f.SecurityFiles > 0, 1, "security files")
	add(len(f.TechStack) > 1, 0.5, "multi-technology stack")
	add(len(f.ArchPatterns) > 0, 1, "architecture patterns")

	if !f.HasReadme {
		penalty++
		t.deductions = append(t.deductions, "no README (-1)")
	} else {
		t.observe("README present")
	}
	if !f.HasTests {
		penalty++
		t.deductions = append(t.deductions, "no tests (-1)")
	}
	if !f.HasDocs {
		penalty++
		t.deductions = append(t.deductions, "no documentation (-1)")
	}
	if len(f.TechStack) > 0 {
		t.observe("Tech stack: " + strings.Join(f.TechStack, ", "))
	}
	if len(f.ArchPatterns) > 0 {
		t.observe("Architecture patterns: " + strings.Join(f.ArchPatterns, ", "))
	}
	return bonus, penalty
}

// recordLocked 追加历史、更新权重并按周期保存，调用方需持有锁
func (a *LearningAgent) recordLocked(ctx context.Context, repo string, f LearningFeatures, score int) error {
	a.state.History = append(a.state.History, LearningRecord{
		ID:         a.newID(),
		Repository: repo,
		Features:   f,
		Score:      score,
		RecordedAt: a.now(),
	})
	if over := len(a.state.History) - LearningHistoryCap; over > 0 {
		a.state.History = append([]LearningRecord(nil), a.state.History[over:]...)
	}
	a.state.TotalAnalyses++

	delta := 0.0
	switch {
	case score >= rewardThreshold:
		delta = learningStep
	case score <= penaltyThreshold:
		delta = -learningStep
	}
	if delta != 0 {
		for _, k := range patternKeys(f) {
			if (delta > 0 && strings.HasPrefix(k, "no_")) || (delta < 0 && !strings.HasPrefix(k, "no_")) {
				continue
			}
			w := a.state.PatternWeights[k] + delta
			a.state.PatternWeights[k] = math.Round(math.Max(-1, math.Min(1, w))*1e4) / 1e4
		}
	}
	a.state.UpdatedAt = a.now()

	a.sinceSave++
	if a.sinceSave >= a.saveEvery {
		a.sinceSave = 0
		return a.store.Save(ctx, a.state.Clone())
	}
	return nil
}

// Flush 立即保存当前状态
func (a *LearningAgent) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinceSave = 0
	return a.store.Save(ctx, a.state.Clone())
}

// Snapshot 返回当前状态副本
func (a *LearningAgent) Snapshot() *LearningState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Stats 返回学习统计
func (a *LearningAgent) Stats() LearningStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := LearningStats{
		HistorySize:      len(a.state.History),
		TotalAnalyses:    a.state.TotalAnalyses,
		PatternCount:     len(a.state.PatternWeights),
		TopPositive:      map[string]float64{},
		TopNegative:      map[string]float64{},
		PendingSaveCount: a.sinceSave,
	}
	if n := len(a.state.History); n > 0 {
		sum := 0
		for _, r := range a.state.History {
			sum += r.Score
		}
		stats.AverageScore = float64(sum) / float64(n)
	}

	type kv struct {
		k string
		v float64
	}
	var all []kv
	for k, v := range a.state.PatternWeights {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v == all[j].v {
			return all[i].k < all[j].k
		}
		return all[i].v > all[j].v
	})
	for i := 0; i < len(all) && len(stats.TopPositive) < 5; i++ {
		if all[i].v > 0 {
			stats.TopPositive[all[i].k] = all[i].v
		}
	}
	for i := len(all) - 1; i >= 0 && len(stats.TopNegative) < 5; i-- {
		if all[i].v < 0 {
			stats.TopNegative[all[i].k] = all[i].v
		}
	}
	return stats
}

// ExtractLearningFeatures 提取学习特征向量
func ExtractLearningFeatures(ec *domain.EvidenceContext) LearningFeatures {
	files := ec.LowerFiles()
	f := LearningFeatures{
		FileCount: len(files),
		HasReadme: ec.HasReadme(),
	}
	for _, p := range files {
		ext := path.Ext(p)
		switch {
		case isTestPath(p):
			f.TestFiles++
		case CodeExtensions[ext]:
			f.CodeFiles++
		}
		if DocExtensions[ext] {
			f.DocFiles++
		}
		if domain.ContainsAny(p, ConfigFileMarkers) || ext == ".yaml" || ext == ".yml" || ext == ".toml" {
			f.ConfigFiles++
		}
		if domain.ContainsAny(p, SecurityLayerKeywords) {
			f.SecurityFiles++
		}
		if UIExtensions[ext] {
			f.UIFiles++
		}
	}
	f.HasDockerfile = ec.HasBaseName("dockerfile")
	f.HasCICD = len(ec.PathsContaining(CIMarkers)) > 0 || ec.HasArtifact(domain.ArtifactCIConfigPresent)
	f.HasTests = f.TestFiles > 0
	f.HasDocs = f.DocFiles > 1 || ec.HasPathSegment("docs")
	f.TechStack = DetectTechStack(files, ec.ReadmeLower())
	f.ArchPatterns = MatchedTags(ArchitecturePatterns, ec.LowerPaths())

	codeRatio := 0.0
	if f.FileCount > 0 {
		codeRatio = float64(f.CodeFiles) / float64(f.FileCount)
	}
	f.Complexity = math.Min(float64(f.FileCount)/50, 1)*0.3 +
		codeRatio*0.3 +
		math.Min(float64(len(f.TechStack))/5, 1)*0.2 +
		math.Min(float64(len(f.ArchPatterns))/3, 1)*0.2
	return f
}

// patternKeys 特征对应的模式键
func patternKeys(f LearningFeatures) []string {
	var keys []string
	for _, tech := range f.TechStack {
		keys = append(keys, "tech_"+strings.ToLower(strings.ReplaceAll(tech, " ", "_")))
	}
	for _, p := range f.ArchPatterns {
		keys = append(keys, "arch_"+p)
	}
	if f.HasTests {
		keys = append(keys, "has_tests")
	} else {
		keys = append(keys, "no_tests")
	}
	if f.HasDocs {
		keys = append(keys, "has_docs")
	} else {
		keys = append(keys, "no_docs")
	}
	return keys
}
