// Package insights provides adapters that turn an analytics digest into
// natural-language findings, either via an LLM API or a deterministic mock.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulsekit/pulse/domain/insight"
	"github.com/pulsekit/pulse/ports"
)

const defaultBaseURL = "https://api.deepseek.com"

// DeepSeek generates insights by calling the DeepSeek chat completions API.
type DeepSeek struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// DeepSeekConfig configures the DeepSeek provider.
type DeepSeekConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewDeepSeek creates a new DeepSeek insights provider.
func NewDeepSeek(cfg DeepSeekConfig) *DeepSeek {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &DeepSeek{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
	}
}

// Name identifies this provider in logs and metrics.
func (d *DeepSeek) Name() string { return "deepseek" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are a product analytics expert. Given a JSON digest of
a product's usage data, respond with JSON containing two arrays:
"insights" (objects with "title", "description", "severity" of info|warning|critical)
and "recommendations" (objects with "title", "description", "impact" of low|medium|high).
Be specific and reference the numbers in the digest. Respond with JSON only.`

// GenerateInsights sends the digest to the model and parses its JSON reply.
func (d *DeepSeek) GenerateInsights(ctx context.Context, digest insight.Digest) (insight.Report, error) {
	payload, err := json.Marshal(digest)
	if err != nil {
		return insight.Report{}, fmt.Errorf("marshal digest: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		Temperature:    0.3,
		MaxTokens:      1500,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return insight.Report{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return insight.Report{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return insight.Report{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return insight.Report{}, fmt.Errorf("deepseek error %d: %s", resp.StatusCode, msg)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return insight.Report{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return insight.Report{}, fmt.Errorf("deepseek returned no choices")
	}

	var report insight.Report
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &report); err != nil {
		return insight.Report{}, fmt.Errorf("parse model output: %w", err)
	}
	report.Source = d.Name()
	return report, nil
}

// Ensure interface compliance.
var _ ports.InsightsProvider = (*DeepSeek)(nil)
