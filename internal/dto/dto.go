package dto

// ====== INPUT/OUTPUT domain ======

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type ClassifyRequest struct {
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
}

type GenerateTextResponse struct {
	GeneratedText string `json:"generated_text"`
}

type GenerateCodeResponse struct {
	GeneratedCode string `json:"generated_code"`
}

type ClassifyResponse struct {
	Classification string `json:"classification"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ====== Gemini generateContent API payloads ======

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// Temperature carries no omitempty: the deterministic mode relies on an
// explicit zero reaching the provider.
type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
	Error      any               `json:"error,omitempty"`
}
