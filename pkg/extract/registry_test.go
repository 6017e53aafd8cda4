package extract

import (
	"testing"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		strategy Strategy
		backend  Backend
		want     string
	}{
		{StrategyToken, BackendNative, "token"},
		{StrategyToken, BackendExternal, "token"},
		{StrategyStructure, BackendNative, "structure"},
		{StrategyStructure, BackendExternal, "external"},
		{StrategyStructure, BackendTreeSitter, "treesitter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+string(tt.backend), func(t *testing.T) {
			for _, tag := range language.Tags() {
				p, err := r.Lookup(tt.strategy, tt.backend, tag)
				require.NoError(t, err)
				assert.Equal(t, tt.want, p.Name())
			}
		})
	}
}

func TestRegistryLookupErrors(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Lookup(StrategyToken, BackendNative, language.Unsupported)
	assert.ErrorIs(t, err, language.ErrUnsupported)

	_, err = r.Lookup(Strategy("fuzzy"), BackendNative, language.Python)
	assert.Error(t, err)

	_, err = r.Lookup(StrategyStructure, Backend("llm"), language.Python)
	assert.Error(t, err)
}

func TestRegistryWrap(t *testing.T) {
	r := NewRegistry(nil)
	wrapped := 0
	r.Wrap(func(p Provider) Provider {
		wrapped++
		return &countingProvider{}
	})
	assert.Equal(t, 4, wrapped)

	p, err := r.Lookup(StrategyStructure, BackendTreeSitter, language.Java)
	require.NoError(t, err)
	assert.Equal(t, "counting", p.Name())
}

func TestStrategyAndBackendValid(t *testing.T) {
	assert.True(t, StrategyToken.Valid())
	assert.True(t, StrategyStructure.Valid())
	assert.False(t, Strategy("").Valid())
	assert.True(t, BackendTreeSitter.Valid())
	assert.False(t, Backend("x").Valid())
}
