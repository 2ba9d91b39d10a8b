package agents

import (
	"fmt"
	"sync"
)

// Registry Agent 注册中心接口
type Registry interface {
	// Register 注册 Agent，同 ID 覆盖旧实现
	Register(agent ScoringAgent) error

	// Get 获取指定 ID 的 Agent
	Get(id string) (ScoringAgent, error)

	// List 按注册顺序列出所有 Agent
	List() []ScoringAgent

	// Exists 检查 Agent 是否存在
	Exists(id string) bool
}

// registry Registry 的实现
type registry struct {
	mu     sync.RWMutex
	agents map[string]ScoringAgent // id -> Agent
	order  []string
}

// NewRegistry 创建新的 Registry 实例
func NewRegistry() Registry {
	return &registry{
		agents: make(map[string]ScoringAgent),
	}
}

// NewDefaultRegistry 创建并注册全部默认 Agent
func NewDefaultRegistry(store LearningStore) Registry {
	reg := NewRegistry()
	for _, a := range NewDefaultAgents(store) {
		_ = reg.Register(a)
	}
	return reg
}

// Register 注册 Agent
func (r *registry) Register(agent ScoringAgent) error {
	if agent == nil {
		return fmt.Errorf("%w: agent cannot be nil", ErrInvalidAgent)
	}

	id := agent.ID()
	if id == "" {
		return fmt.Errorf("%w: agent id cannot be empty", ErrInvalidAgent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		r.order = append(r.order, id)
	}
	r.agents[id] = agent
	return nil
}

// Get 获取指定 ID 的 Agent
func (r *registry) Get(id string) (ScoringAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}

	return agent, nil
}

// List 列出所有已注册的 Agents
func (r *registry) List() []ScoringAgent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ScoringAgent, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.agents[id])
	}

	return result
}

// Exists 检查 Agent 是否存在
func (r *registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.agents[id]
	return exists
}
