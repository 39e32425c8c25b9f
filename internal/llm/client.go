package llm

import (
	"context"
	"errors"
)

// ErrModelUnavailable covers a model that is not configured or returned
// nothing usable.
var ErrModelUnavailable = errors.New("language model unavailable")

// Params are the sampling settings passed with every prompt.
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

func DefaultParams() Params {
	return Params{
		Temperature:     0.6,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 300,
	}
}

type Client interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, prompt string, p Params) (string, error)

func (f ClientFunc) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	return f(ctx, prompt, p)
}
