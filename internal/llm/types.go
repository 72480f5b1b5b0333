package llm

import (
	"errors"
	"net/http"
)

type GeminiConfig struct {
	BaseURL         string
	APIKey          string
	Model           string
	MaxOutputTokens int
	HTTPClient      *http.Client
}

type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// UpstreamError wraps whatever the provider call reported: network failure,
// auth failure, over-quota, malformed or empty response. Callers see a single
// opaque kind; no subtype classification happens here.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
