package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	// 测试注册
	require.NoError(t, registry.Register(NewCodeAgent()))

	// 验证存在
	assert.True(t, registry.Exists(IDCode), "agent should exist after registration")

	// 验证获取
	got, err := registry.Get(IDCode)
	require.NoError(t, err)
	assert.Equal(t, IDCode, got.ID())
	assert.Equal(t, "Code Quality", got.Name())
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	registry := NewRegistry()
	assert.ErrorIs(t, registry.Register(nil), ErrInvalidAgent)
	assert.Empty(t, registry.List())
}

func TestRegistry_RegisterDuplicateKeepsOrder(t *testing.T) {
	registry := NewRegistry()
	first := NewSecurityAgent()
	second := NewSecurityAgent()

	require.NoError(t, registry.Register(first))
	require.NoError(t, registry.Register(NewCodeAgent()))
	// 注册同 ID Agent（应该覆盖）
	require.NoError(t, registry.Register(second))

	list := registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, IDSecurity, list[0].ID())
	assert.Same(t, second, list[0])
}

func TestRegistry_GetMissing(t *testing.T) {
	_, err := NewRegistry().Get("nope")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestNewDefaultRegistry(t *testing.T) {
	registry := NewDefaultRegistry(NewMemoryLearningStore(nil))
	list := registry.List()
	require.Len(t, list, len(AllIDs))
	for i, id := range AllIDs {
		assert.Equal(t, id, list[i].ID())
		assert.Equal(t, CategoryName(id), list[i].Name())
	}
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"1", IDCode, false},
		{"9", IDLearning, false},
		{" Security ", IDSecurity, false},
		{"ui_ux_polish", IDUIUXPolish, false},
		{"10", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalID(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrAgentNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSelection(t *testing.T) {
	all, err := NormalizeSelection(nil)
	require.NoError(t, err)
	assert.Len(t, all, 9)
	assert.IsNonDecreasing(t, all)

	_, err = NormalizeSelection([]string{})
	assert.ErrorIs(t, err, ErrEmptySelection)

	got, err := NormalizeSelection([]string{"security", "1", "code_analysis", "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{IDCode, IDSecurity}, got)

	_, err = NormalizeSelection([]string{"1", "bogus"})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}
