package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// AnalysisStatus 一次评分请求的所有可能状态
type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "pending"   // 已受理，尚未取数
	AnalysisStatusFetching  AnalysisStatus = "fetching"  // 正在获取文件树与 README
	AnalysisStatusScoring   AnalysisStatus = "scoring"   // Agent 正在评分
	AnalysisStatusCompleted AnalysisStatus = "completed" // 评分完成
	AnalysisStatusCached    AnalysisStatus = "cached"    // 直接命中缓存
	AnalysisStatusFailed    AnalysisStatus = "failed"    // 取数失败或请求被取消
)

// AnalysisTransition 状态迁移
type AnalysisTransition struct {
	From AnalysisStatus
	To   AnalysisStatus
}

// AnalysisStateMachine 评分请求状态机
type AnalysisStateMachine struct {
	allowedTransitions map[AnalysisTransition]bool
}

// NewAnalysisStateMachine 创建评分状态机
func NewAnalysisStateMachine() *AnalysisStateMachine {
	sm := &AnalysisStateMachine{
		allowedTransitions: make(map[AnalysisTransition]bool),
	}

	// pending -> fetching -> scoring -> completed
	// pending -> cached
	// pending -> scoring（本地目录或上下文文件无需取数）
	transitions := []AnalysisTransition{
		{AnalysisStatusPending, AnalysisStatusFetching},
		{AnalysisStatusPending, AnalysisStatusScoring},
		{AnalysisStatusPending, AnalysisStatusCached},
		{AnalysisStatusFetching, AnalysisStatusScoring},
		{AnalysisStatusScoring, AnalysisStatusCompleted},

		// 失败
		{AnalysisStatusFetching, AnalysisStatusFailed},
		{AnalysisStatusScoring, AnalysisStatusFailed},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *AnalysisStateMachine) CanTransition(from, to AnalysisStatus) bool {
	if from == to {
		return false
	}
	return sm.allowedTransitions[AnalysisTransition{From: from, To: to}]
}

// Transition 执行状态迁移（带日志）
func (sm *AnalysisStateMachine) Transition(from, to AnalysisStatus, analysisID string) error {
	if !sm.CanTransition(from, to) {
		err := &InvalidStateTransitionError{From: string(from), To: string(to)}
		klog.V(6).Infof("评分状态迁移被拒绝: id=%s, %s -> %s", analysisID, from, to)
		return err
	}
	klog.V(6).Infof("评分状态迁移: id=%s, %s -> %s", analysisID, from, to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid analysis state transition: %s -> %s", e.From, e.To)
}

// IsTerminal 判断状态是否为终止态
func IsTerminal(status AnalysisStatus) bool {
	return status == AnalysisStatusCompleted || status == AnalysisStatusCached || status == AnalysisStatusFailed
}
