package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestGenerationConfig_CarriesParams(t *testing.T) {
	cfg := generationConfig(DefaultParams())

	require.NotNil(t, cfg.Temperature)
	require.NotNil(t, cfg.TopP)
	require.NotNil(t, cfg.TopK)
	assert.InDelta(t, 0.6, *cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, *cfg.TopP, 1e-6)
	assert.InDelta(t, 40, *cfg.TopK, 1e-6)
	assert.Equal(t, int32(300), cfg.MaxOutputTokens)
}

func TestClientFunc(t *testing.T) {
	var got Params
	c := ClientFunc(func(ctx context.Context, prompt string, p Params) (string, error) {
		got = p
		return "echo: " + prompt, nil
	})

	out, err := c.Generate(context.Background(), "hi", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
	assert.Equal(t, int32(300), got.MaxOutputTokens)
}
