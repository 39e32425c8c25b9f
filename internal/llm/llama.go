package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LlamaClient calls a hosted Llama text endpoint that takes
// {"model","input",...} and answers with one of several known shapes.
type LlamaClient struct {
	apiKey string
	model  string
	apiURL string
	http   *http.Client
}

func NewLlamaClient(apiURL, apiKey, model string) (*LlamaClient, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("%w: missing LLAMA_API_URL or LLAMA_API_KEY", ErrModelUnavailable)
	}
	return &LlamaClient{
		apiKey: apiKey,
		model:  model,
		apiURL: apiURL,
		http:   &http.Client{},
	}, nil
}

func (l *LlamaClient) Model() string {
	return l.model
}

type llamaRequest struct {
	Model       string  `json:"model"`
	Input       string  `json:"input"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	MaxTokens   int32   `json:"max_tokens"`
}

// Generate relies on ctx for its deadline.
func (l *LlamaClient) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrModelUnavailable)
	}

	body, err := json.Marshal(llamaRequest{
		Model:       l.model,
		Input:       prompt,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxTokens:   p.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llama: status %d: %w", resp.StatusCode, ErrModelUnavailable)
	}

	return llamaText(raw)
}

// llamaText pulls the generated text out of the first JSON object in raw.
func llamaText(raw []byte) (string, error) {
	jsonText := extractJSON(string(raw))
	if jsonText == "" {
		return "", errors.New("llama did not return valid JSON")
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return "", err
	}

	if v, ok := parsed["output_text"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := parsed["generated_text"].(string); ok && v != "" {
		return v, nil
	}
	if gen, ok := parsed["generation"].(map[string]interface{}); ok {
		if txt, ok := gen["text"].(string); ok && txt != "" {
			return txt, nil
		}
	}

	return "", fmt.Errorf("empty llama response: %w", ErrModelUnavailable)
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
