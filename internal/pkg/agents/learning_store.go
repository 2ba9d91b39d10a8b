package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LearningFeatures 学习 Agent 从证据中提取的特征向量
type LearningFeatures struct {
	FileCount     int      `json:"file_count"`
	CodeFiles     int      `json:"code_files"`
	TestFiles     int      `json:"test_files"`
	DocFiles      int      `json:"doc_files"`
	ConfigFiles   int      `json:"config_files"`
	SecurityFiles int      `json:"security_files"`
	UIFiles       int      `json:"ui_files"`
	HasReadme     bool     `json:"has_readme"`
	HasDockerfile bool     `json:"has_dockerfile"`
	HasCICD       bool     `json:"has_ci_cd"`
	HasTests      bool     `json:"has_tests"`
	HasDocs       bool     `json:"has_docs"`
	TechStack     []string `json:"tech_stack"`
	ArchPatterns  []string `json:"arch_patterns"`
	Complexity    float64  `json:"complexity"`
}

// LearningRecord 一次历史分析
type LearningRecord struct {
	ID         string           `json:"id"`
	Repository string           `json:"repository"`
	Features   LearningFeatures `json:"features"`
	Score      int              `json:"score"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// LearningState 学习 Agent 的持久化状态
type LearningState struct {
	PatternWeights map[string]float64 `json:"pattern_weights"`
	History        []LearningRecord   `json:"history"`
	TotalAnalyses  int                `json:"total_analyses"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewLearningState 创建空状态
func NewLearningState() *LearningState {
	return &LearningState{PatternWeights: map[string]float64{}, History: []LearningRecord{}}
}

// Clone 深拷贝状态
func (s *LearningState) Clone() *LearningState {
	if s == nil {
		return NewLearningState()
	}
	out := &LearningState{
		PatternWeights: make(map[string]float64, len(s.PatternWeights)),
		History:        make([]LearningRecord, len(s.History)),
		TotalAnalyses:  s.TotalAnalyses,
		UpdatedAt:      s.UpdatedAt,
	}
	for k, v := range s.PatternWeights {
		out.PatternWeights[k] = v
	}
	copy(out.History, s.History)
	return out
}

// LearningStore 学习状态持久化接口
type LearningStore interface {
	Load(ctx context.Context) (*LearningState, error)
	Save(ctx context.Context, state *LearningState) error
}

// -----------------------------
// 内存实现
// -----------------------------

// MemoryLearningStore 内存存储，用于测试与无持久化场景
type MemoryLearningStore struct {
	mu    sync.Mutex
	state *LearningState
	saves int
}

// NewMemoryLearningStore 创建内存存储，initial 可为空
func NewMemoryLearningStore(initial *LearningState) *MemoryLearningStore {
	return &MemoryLearningStore{state: initial.Clone()}
}

func (m *MemoryLearningStore) Load(ctx context.Context) (*LearningState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *MemoryLearningStore) Save(ctx context.Context, state *LearningState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	m.saves++
	return nil
}

// Saves 返回保存次数
func (m *MemoryLearningStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// -----------------------------
// 文件实现
// -----------------------------

// FileLearningStore 以 JSON 文件保存学习状态，写入采用临时文件加重命名
type FileLearningStore struct {
	path string
	mu   sync.Mutex
}

// NewFileLearningStore 创建文件存储
func NewFileLearningStore(path string) *FileLearningStore {
	return &FileLearningStore{path: path}
}

func (f *FileLearningStore) Load(ctx context.Context) (*LearningState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return NewLearningState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrLearningStore, f.path, err)
	}
	state := NewLearningState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrLearningStore, f.path, err)
	}
	if state.PatternWeights == nil {
		state.PatternWeights = map[string]float64{}
	}
	return state, nil
}

func (f *FileLearningStore) Save(ctx context.Context, state *LearningState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrLearningStore, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrLearningStore, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write: %v", ErrLearningStore, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrLearningStore, err)
	}
	return nil
}
