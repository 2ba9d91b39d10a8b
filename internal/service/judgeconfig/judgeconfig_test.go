package judgeconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]int
		wantMsg string
	}{
		{"默认权重合法", DefaultWeights(), ""},
		{"总和 99", map[string]int{"code_analysis": 99}, "Weights must sum to 100%, got 99%"},
		{"总和 101", map[string]int{"code_analysis": 50, "security": 51}, "Weights must sum to 100%, got 101%"},
		{"负数权重", map[string]int{"code_analysis": 110, "security": -10}, "Weight for security cannot be negative: -10%"},
		{"负数优先于总和", map[string]int{"code_analysis": -5, "architecture": 50}, "Weight for code_analysis cannot be negative: -5%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.weights)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidWeights)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestPresetsSumTo100(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p, ok := Preset(name)
			require.True(t, ok)
			assert.NoError(t, Validate(p))
		})
	}
	assert.Equal(t, []string{"all_criteria", "balanced", "innovation", "tech", "ui"}, PresetNames())
}

func TestStoreSetWeightsPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge.yaml")
	s, err := NewStore(path)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	assert.Equal(t, DefaultWeights(), s.Weights(), "文件不存在时使用默认权重")

	err = s.SetWeights(map[string]int{"code_analysis": 60, "4": 40})
	require.NoError(t, err)
	assert.Equal(t, 60, s.Weights()[agents.IDCode])
	assert.Equal(t, 40, s.Weights()[agents.IDSecurity])
	assert.Equal(t, 0, s.Weights()[agents.IDLearning])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 100, doc.TotalPercentage)
	assert.Equal(t, 60, doc.Weights[agents.IDCode])
	assert.True(t, doc.LastUpdated.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, s.Weights(), reloaded.Weights())
}

func TestStoreRejectsInvalidAndKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge.yaml")
	s, err := NewStore(path)
	require.NoError(t, err)
	before := s.Weights()

	for _, w := range []map[string]int{
		{"code_analysis": 99},
		{"code_analysis": 101},
		{"code_analysis": 110, "security": -10},
		{"nonexistent": 100},
	} {
		err := s.SetWeights(w)
		assert.ErrorIs(t, err, ErrInvalidWeights)
	}
	assert.Equal(t, before, s.Weights())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "校验失败不应写入文件")
}

func TestStoreApplyPreset(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	require.NoError(t, s.ApplyPreset(PresetUI))
	assert.Equal(t, 30, s.Weights()[agents.IDUIUX])
	assert.Equal(t, 25, s.Weights()[agents.IDUIUXPolish])

	err = s.ApplyPreset("missing")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	assert.Equal(t, 30, s.Weights()[agents.IDUIUX])
}

func TestStoreWeightsReturnsCopy(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	w := s.Weights()
	w[agents.IDCode] = 999
	assert.Equal(t, 20, s.Weights()[agents.IDCode])
}

func TestNewStoreFallsBackOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights: [not a map"), 0644))
	s, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), s.Weights())
}
