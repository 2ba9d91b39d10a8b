package judgeconfig

import (
	"sort"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

// 预设名称
const (
	PresetTech        = "tech"
	PresetUI          = "ui"
	PresetInnovation  = "innovation"
	PresetBalanced    = "balanced"
	PresetAllCriteria = "all_criteria"
)

var presets = map[string]map[string]int{
	PresetTech: {
		agents.IDCode:          25,
		agents.IDArchitecture:  20,
		agents.IDTechnical:     20,
		agents.IDFunctionality: 15,
		agents.IDInnovation:    10,
		agents.IDSecurity:      5,
		agents.IDUIUX:          5,
	},
	PresetUI: {
		agents.IDUIUX:          30,
		agents.IDUIUXPolish:    25,
		agents.IDFunctionality: 20,
		agents.IDCode:          10,
		agents.IDArchitecture:  10,
		agents.IDInnovation:    5,
	},
	PresetInnovation: {
		agents.IDInnovation:    30,
		agents.IDFunctionality: 20,
		agents.IDCode:          15,
		agents.IDArchitecture:  15,
		agents.IDTechnical:     10,
		agents.IDUIUX:          5,
		agents.IDSecurity:      5,
	},
	PresetBalanced: DefaultWeights(),
	PresetAllCriteria: {
		agents.IDCode:          15,
		agents.IDArchitecture:  12,
		agents.IDUIUX:          12,
		agents.IDSecurity:      8,
		agents.IDInnovation:    15,
		agents.IDFunctionality: 15,
		agents.IDTechnical:     12,
		agents.IDUIUXPolish:    8,
		agents.IDLearning:      3,
	},
}

// Preset 返回预设权重副本
func Preset(name string) (map[string]int, bool) {
	p, ok := presets[name]
	if !ok {
		return nil, false
	}
	return copyWeights(p), true
}

// PresetNames 所有预设名称，已排序
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
