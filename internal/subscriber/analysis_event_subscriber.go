package subscriber

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/eventbus"
	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
	"github.com/YashRaythatha/hackathon-code-validation/internal/repository"
)

// AnalysisEventSubscriber 将完成或失败的评分报告写入数据库
type AnalysisEventSubscriber struct {
	repo repository.AnalysisRepository
}

func NewAnalysisEventSubscriber(repo repository.AnalysisRepository) *AnalysisEventSubscriber {
	return &AnalysisEventSubscriber{repo: repo}
}

func (s *AnalysisEventSubscriber) Register(bus *eventbus.AnalysisEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.AnalysisCompleted, s.handleReport)
	bus.Subscribe(eventbus.AnalysisFailed, s.handleReport)
	bus.Subscribe(eventbus.AnalysisCacheHit, s.handleCacheHit)
}

func (s *AnalysisEventSubscriber) handleReport(ctx context.Context, event eventbus.AnalysisEvent) error {
	if event.Report == nil || event.Report.ID == "" {
		return fmt.Errorf("报告为空")
	}
	record, err := model.NewAnalysisRecord(event.Report)
	if err != nil {
		return err
	}
	if err := s.repo.Create(record); err != nil {
		klog.Errorf("保存评分报告失败: id=%s, repo=%s, error=%v", record.ID, record.RepoURL, err)
		return err
	}
	klog.V(6).Infof("评分报告已保存: type=%s, id=%s, repo=%s, score=%d", event.Type, record.ID, record.RepoURL, record.TotalScore)
	return nil
}

// handleCacheHit 缓存命中的报告已经保存过，只记录日志
func (s *AnalysisEventSubscriber) handleCacheHit(ctx context.Context, event eventbus.AnalysisEvent) error {
	if event.Report != nil {
		klog.V(6).Infof("评分缓存命中: repo=%s, branch=%s", event.Report.RepoURL, event.Report.Branch)
	}
	return nil
}
