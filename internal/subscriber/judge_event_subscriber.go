package subscriber

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
)

type cacheClearer interface {
	ClearCache()
}

// JudgeConfigEventSubscriber 权重变更后清空评分缓存，避免展示旧的类别权重
type JudgeConfigEventSubscriber struct {
	cache cacheClearer
}

func NewJudgeConfigEventSubscriber(cache cacheClearer) *JudgeConfigEventSubscriber {
	return &JudgeConfigEventSubscriber{cache: cache}
}

func (s *JudgeConfigEventSubscriber) Register(bus *eventbus.JudgeConfigEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.JudgeWeightsUpdated, s.handleWeightsUpdated)
}

func (s *JudgeConfigEventSubscriber) handleWeightsUpdated(ctx context.Context, event eventbus.JudgeConfigEvent) error {
	s.cache.ClearCache()
	klog.V(6).Infof("评委权重已更新，缓存已清空: preset=%q", event.Preset)
	return nil
}
