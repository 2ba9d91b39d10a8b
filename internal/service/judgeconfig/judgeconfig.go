package judgeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

// RequiredTotal 权重之和必须等于的百分比
const RequiredTotal = 100

var (
	// ErrInvalidWeights 权重校验失败
	ErrInvalidWeights = errors.New("invalid judge weights")
	// ErrPresetNotFound 预设不存在
	ErrPresetNotFound = errors.New("judge preset not found")
	// ErrPersist 权重保存失败
	ErrPersist = errors.New("judge config persist failed")
)

// ValidationError 权重校验错误，Message 可直接展示给调用方
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidWeights }

// Document 持久化文档
type Document struct {
	Weights         map[string]int `yaml:"weights" json:"weights"`
	TotalPercentage int            `yaml:"total_percentage" json:"total_percentage"`
	LastUpdated     time.Time      `yaml:"last_updated" json:"last_updated"`
}

// DefaultWeights 默认评委权重
func DefaultWeights() map[string]int {
	return map[string]int{
		agents.IDCode:          20,
		agents.IDArchitecture:  15,
		agents.IDUIUX:          15,
		agents.IDSecurity:      10,
		agents.IDInnovation:    15,
		agents.IDFunctionality: 15,
		agents.IDTechnical:     10,
		agents.IDUIUXPolish:    0,
		agents.IDLearning:      0,
	}
}

// Validate 校验权重：先检查负数，再检查总和是否为 100
func Validate(weights map[string]int) error {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	total := 0
	for _, k := range keys {
		if weights[k] < 0 {
			return &ValidationError{Message: fmt.Sprintf("Weight for %s cannot be negative: %d%%", k, weights[k])}
		}
		total += weights[k]
	}
	if total != RequiredTotal {
		return &ValidationError{Message: fmt.Sprintf("Weights must sum to 100%%, got %d%%", total)}
	}
	return nil
}

// Store 评委权重存储，加载自 YAML 文件，只能通过 SetWeights/ApplyPreset 修改
type Store struct {
	mu          sync.RWMutex
	path        string
	weights     map[string]int
	lastUpdated time.Time
	now         func() time.Time
}

// NewStore 从 path 加载权重；文件不存在时使用默认权重（不校验）。path 为空表示不持久化
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, weights: DefaultWeights(), now: time.Now}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		klog.V(6).Infof("评委权重文件不存在，使用默认权重: %s", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read judge config %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		klog.Warningf("评委权重文件解析失败，使用默认权重: path=%s, err=%v", path, err)
		return s, nil
	}
	if len(doc.Weights) > 0 {
		weights, err := canonicalize(doc.Weights)
		if err != nil {
			klog.Warningf("评委权重文件包含未知 Agent，使用默认权重: %v", err)
			return s, nil
		}
		s.weights = weights
		s.lastUpdated = doc.LastUpdated
	}
	return s, nil
}

// Weights 返回当前权重副本，实现 orchestrator.WeightProvider
func (s *Store) Weights() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyWeights(s.weights)
}

// Document 返回当前配置文档
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Document{
		Weights:         copyWeights(s.weights),
		TotalPercentage: total(s.weights),
		LastUpdated:     s.lastUpdated,
	}
}

// SetWeights 校验并保存新权重；失败时保持原配置不变
func (s *Store) SetWeights(weights map[string]int) error {
	next, err := canonicalize(weights)
	if err != nil {
		return err
	}
	if err := Validate(next); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.now()
	doc := Document{Weights: next, TotalPercentage: total(next), LastUpdated: updated}
	if err := s.persist(doc); err != nil {
		klog.Errorf("评委权重保存失败: path=%s, err=%v", s.path, err)
		return err
	}
	s.weights = next
	s.lastUpdated = updated
	klog.V(6).Infof("评委权重已更新: %v", next)
	return nil
}

// ApplyPreset 应用预设权重
func (s *Store) ApplyPreset(name string) error {
	preset, ok := Preset(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return s.SetWeights(preset)
}

// persist 写入临时文件后重命名
func (s *Store) persist(doc Document) error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// canonicalize 规范化 Agent 标识（支持数字别名），未出现的 Agent 权重为 0
func canonicalize(weights map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(agents.AllIDs))
	for _, id := range agents.AllIDs {
		out[id] = 0
	}
	for raw, w := range weights {
		id, err := agents.CanonicalID(raw)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("Unknown criteria: %s", raw)}
		}
		out[id] += w
	}
	return out, nil
}

func copyWeights(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func total(weights map[string]int) int {
	sum := 0
	for _, w := range weights {
		sum += w
	}
	return sum
}
