package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

type AdviceHandler struct {
	adviceService *service.AdviceService
}

func NewAdviceHandler(adviceService *service.AdviceService) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

type createAdviceInput struct {
	PlantID uint   `json:"plant_id"`
	Content string `json:"content"`
}

func (h *AdviceHandler) CreateAdvice(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createAdviceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.PlantID == 0 {
		return httpx.BadRequest(c, "missing_fields", "plant_id is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return httpx.BadRequest(c, "empty_content", "content is required")
	}

	advice, err := h.adviceService.Create(userID, input.PlantID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotBotanist):
			return httpx.Forbidden(c, "not_botanist", "Only botanists can create advice")
		case errors.Is(err, service.ErrPlantNotFound):
			return httpx.NotFound(c, "plant_not_found", "Plant not found")
		case errors.Is(err, service.ErrEmptyContent):
			return httpx.BadRequest(c, "empty_content", "content is required")
		}
		return httpx.Internal(c, "create_advice_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(advice.ToResponse())
}

func (h *AdviceHandler) GetAdvice(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	adviceID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_advice_id", "Invalid advice id")
	}

	advice, err := h.adviceService.Get(adviceID)
	if err != nil {
		if errors.Is(err, service.ErrAdviceNotFound) {
			return httpx.NotFound(c, "advice_not_found", "Advice not found")
		}
		return httpx.Internal(c, "fetch_advice_failed")
	}
	return c.JSON(advice.ToResponse())
}

func (h *AdviceHandler) ListPlantAdvices(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	plantID, err := paramUint(c, "plant_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_plant_id", "Invalid plant id")
	}

	skip, limit := pagination(c)
	advices, err := h.adviceService.ListByPlant(plantID, skip, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_advices_failed")
	}
	return c.JSON(adviceResponses(advices))
}

func (h *AdviceHandler) ListBotanistAdvices(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	botanistID, err := paramUint(c, "botanist_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_botanist_id", "Invalid botanist id")
	}

	skip, limit := pagination(c)
	advices, err := h.adviceService.ListByBotanist(botanistID, skip, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_advices_failed")
	}
	return c.JSON(adviceResponses(advices))
}

type updateAdviceInput struct {
	Content string `json:"content"`
}

func (h *AdviceHandler) UpdateAdvice(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	adviceID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_advice_id", "Invalid advice id")
	}

	var input updateAdviceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	advice, err := h.adviceService.Update(adviceID, userID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdviceNotFound):
			return httpx.NotFound(c, "advice_not_found", "Advice not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		case errors.Is(err, service.ErrEmptyContent):
			return httpx.BadRequest(c, "empty_content", "content is required")
		}
		return httpx.Internal(c, "update_advice_failed")
	}
	return c.JSON(advice.ToResponse())
}

type validateAdviceInput struct {
	Status models.AdviceStatus `json:"status"`
}

// ValidateAdvice records a review verdict; only validated or rejected are
// meaningful verdicts.
func (h *AdviceHandler) ValidateAdvice(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	adviceID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_advice_id", "Invalid advice id")
	}

	var input validateAdviceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.Status != models.AdviceValidated && input.Status != models.AdviceRejected {
		return httpx.BadRequest(c, "invalid_status", "status must be validated or rejected")
	}

	advice, err := h.adviceService.Validate(adviceID, userID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdviceNotFound):
			return httpx.NotFound(c, "advice_not_found", "Advice not found")
		case errors.Is(err, service.ErrNotBotanist):
			return httpx.Forbidden(c, "not_botanist", "Only botanists can review advice")
		}
		return httpx.Internal(c, "validate_advice_failed")
	}
	return c.JSON(advice.ToResponse())
}

func (h *AdviceHandler) DeleteAdvice(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	adviceID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_advice_id", "Invalid advice id")
	}

	if err := h.adviceService.Delete(adviceID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAdviceNotFound):
			return httpx.NotFound(c, "advice_not_found", "Advice not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		}
		return httpx.Internal(c, "delete_advice_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func adviceResponses(advices []models.Advice) []models.AdviceResponse {
	responses := make([]models.AdviceResponse, 0, len(advices))
	for i := range advices {
		responses = append(responses, advices[i].ToResponse())
	}
	return responses
}
