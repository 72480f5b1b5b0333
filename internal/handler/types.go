package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"promptgate/internal/usecase"
)

type GenerateHandler struct {
	Generator *usecase.Generator
}

func NewGenerateHandler(generator *usecase.Generator) *GenerateHandler {
	return &GenerateHandler{Generator: generator}
}

// ErrorHandler renders every handler failure as {"error": message}, so no
// internal detail beyond the message ever reaches a client.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
