package eventbus

import "github.com/YashRaythatha/hackathon-code-validation/internal/domain"

type AnalysisEventType string

const (
	AnalysisCompleted AnalysisEventType = "Completed"
	AnalysisFailed    AnalysisEventType = "Failed"
	AnalysisCacheHit  AnalysisEventType = "CacheHit"
)

type AnalysisEvent struct {
	Type   AnalysisEventType
	Report *domain.Report
}

type AnalysisEventHandler = Handler[AnalysisEvent]
type AnalysisEventBus = Bus[AnalysisEventType, AnalysisEvent]

func NewAnalysisEventBus() *AnalysisEventBus {
	return NewBus(func(e AnalysisEvent) AnalysisEventType { return e.Type })
}
