package handler

import (
	"github.com/gofiber/fiber/v3"

	"promptgate/internal/dto"
	"promptgate/internal/usecase"
)

func (h *GenerateHandler) HandleText(c fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad json: "+err.Error())
	}

	text, err := h.Generator.GenerateText(c.Context(), req)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(dto.GenerateTextResponse{GeneratedText: text})
}

func (h *GenerateHandler) HandleCode(c fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad json: "+err.Error())
	}

	code, err := h.Generator.GenerateCode(c.Context(), req)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(dto.GenerateCodeResponse{GeneratedCode: code})
}

func (h *GenerateHandler) HandleClassify(c fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bad json: "+err.Error())
	}

	label, err := h.Generator.ClassifyText(c.Context(), req)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(dto.ClassifyResponse{Classification: label})
}

func HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// mapError translates usecase outcomes: validation failures surface as 400,
// everything else (upstream failures included) as 500 with the error's text.
func mapError(err error) error {
	if usecase.IsValidationError(err) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
