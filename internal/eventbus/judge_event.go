package eventbus

type JudgeConfigEventType string

const (
	JudgeWeightsUpdated JudgeConfigEventType = "WeightsUpdated"
)

// JudgeConfigEvent 评委权重变更事件
type JudgeConfigEvent struct {
	Type    JudgeConfigEventType
	Preset  string
	Weights map[string]int
}

type JudgeConfigEventHandler = Handler[JudgeConfigEvent]
type JudgeConfigEventBus = Bus[JudgeConfigEventType, JudgeConfigEvent]

func NewJudgeConfigEventBus() *JudgeConfigEventBus {
	return NewBus(func(e JudgeConfigEvent) JudgeConfigEventType { return e.Type })
}
