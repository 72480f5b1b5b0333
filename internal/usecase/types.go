package usecase

import (
	"context"
	"errors"
)

type LLMClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateCode(ctx context.Context, prompt string) (string, error)
	ClassifyText(ctx context.Context, text string, categories []string) (string, error)
}

// ValidationError marks a request rejected before it reached the provider.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrPromptRequired            = &ValidationError{Message: "Prompt is required"}
	ErrTextAndCategoriesRequired = &ValidationError{Message: "Text and categories are required"}
)

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type Generator struct {
	llm LLMClient
}

func NewGenerator(llm LLMClient) *Generator {
	return &Generator{llm: llm}
}
