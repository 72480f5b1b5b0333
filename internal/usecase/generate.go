package usecase

import (
	"context"

	"promptgate/internal/dto"
)

// Validation is presence and non-emptiness only; whitespace-only values pass,
// matching the HTTP contract exactly.

func (g *Generator) GenerateText(ctx context.Context, req dto.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", ErrPromptRequired
	}
	return g.llm.GenerateText(ctx, req.Prompt)
}

func (g *Generator) GenerateCode(ctx context.Context, req dto.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", ErrPromptRequired
	}
	return g.llm.GenerateCode(ctx, req.Prompt)
}

// ClassifyText returns whatever label the provider picked. The label is not
// checked against req.Categories; callers own that gap.
func (g *Generator) ClassifyText(ctx context.Context, req dto.ClassifyRequest) (string, error) {
	if req.Text == "" || len(req.Categories) == 0 {
		return "", ErrTextAndCategoriesRequired
	}
	return g.llm.ClassifyText(ctx, req.Text, req.Categories)
}
