package agents

import "errors"

// 预定义错误
var (
	// ErrAgentNotFound Agent 不存在
	ErrAgentNotFound = errors.New("agent not found")

	// ErrInvalidAgent Agent 定义无效
	ErrInvalidAgent = errors.New("invalid agent")

	// ErrEmptySelection 显式传入了空的 Agent 选择
	ErrEmptySelection = errors.New("agent selection is empty")

	// ErrLearningStore 学习状态读写失败
	ErrLearningStore = errors.New("learning store failure")
)
