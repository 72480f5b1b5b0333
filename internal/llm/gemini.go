package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"promptgate/internal/dto"
	"promptgate/internal/prompt"
)

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com/v1/models"
	defaultGeminiModel = "gemini-pro"
)

// Sampling temperatures per task, matching the provider modes the three
// endpoints were tuned for.
const (
	temperatureText     = 0.7
	temperatureCode     = 0.2
	temperatureClassify = 0
)

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &GeminiClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxOutputTokens,
		httpClient: cfg.HTTPClient,
	}
}

// GenerateText invokes the provider in creative mode with the raw prompt and
// returns its text output verbatim.
func (c *GeminiClient) GenerateText(ctx context.Context, p string) (string, error) {
	text, err := c.generateOnce(ctx, p, temperatureText)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	return text, nil
}

// GenerateCode wraps the prompt in the coding-assistant template and invokes
// the provider in precise mode. No code-block extraction is performed; the
// raw text goes back to the caller.
func (c *GeminiClient) GenerateCode(ctx context.Context, p string) (string, error) {
	text, err := c.generateOnce(ctx, prompt.Code(p), temperatureCode)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	return text, nil
}

// ClassifyText asks the provider to pick exactly one label from categories at
// zero temperature. The returned label is not checked against the list; that
// is the caller's responsibility.
func (c *GeminiClient) ClassifyText(ctx context.Context, text string, categories []string) (string, error) {
	out, err := c.generateOnce(ctx, prompt.Classify(text, categories), temperatureClassify)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	return out, nil
}

func (c *GeminiClient) generateOnce(ctx context.Context, user string, temperature float64) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reqBody, _ := json.Marshal(dto.GeminiRequest{
		Contents: []dto.GeminiContent{
			{Role: "user", Parts: []dto.GeminiPart{{Text: user}}},
		},
		GenerationConfig: dto.GeminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: c.maxTokens,
		},
	})

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var b bytes.Buffer
		_, _ = b.ReadFrom(resp.Body)
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, b.String())
	}

	var out dto.GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini decode error: %v", err)
	}
	if len(out.Candidates) == 0 {
		return "", errors.New("gemini empty response (no candidates)")
	}
	if len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini empty response (no parts)")
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
