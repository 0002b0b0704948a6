package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"github.com/greenkeep/greenkeep-backend/internal/service"
	"github.com/greenkeep/greenkeep-backend/internal/storage"
)

type CareHandler struct {
	careService *service.CareService
	photos      *storage.PhotoStorage
}

func NewCareHandler(careService *service.CareService, photos *storage.PhotoStorage) *CareHandler {
	return &CareHandler{careService: careService, photos: photos}
}

func (h *CareHandler) CreateCare(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateCareInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.PlantID == 0 || input.CaretakerID == 0 {
		return httpx.BadRequest(c, "missing_fields", "plant_id and caretaker_id are required")
	}
	if !input.EndDate.After(input.StartDate) {
		return httpx.BadRequest(c, "invalid_dates", "end_date must be after start_date")
	}

	care, err := h.careService.Create(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlantNotFound):
			return httpx.NotFound(c, "plant_not_found", "Plant not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		}
		return httpx.Internal(c, "create_care_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(care.ToResponse())
}

func (h *CareHandler) ListCares(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	skip, limit := pagination(c)
	filter := repository.CareFilter{Skip: skip, Limit: limit}

	// The caller sees sessions where they are a party; role selects which
	// side.
	switch c.Query("role") {
	case "caretaker":
		filter.CaretakerID = &userID
	default:
		filter.OwnerID = &userID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.CareStatus(statusStr)
		filter.Status = &status
	}

	cares, err := h.careService.List(filter)
	if err != nil {
		return httpx.Internal(c, "fetch_cares_failed")
	}

	responses := make([]models.CareSessionResponse, 0, len(cares))
	for i := range cares {
		responses = append(responses, cares[i].ToResponse())
	}
	return c.JSON(responses)
}

func (h *CareHandler) GetCare(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	careID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_care_id", "Invalid care id")
	}

	care, err := h.careService.Get(careID)
	if err != nil {
		if errors.Is(err, service.ErrCareNotFound) {
			return httpx.NotFound(c, "care_not_found", "Care session not found")
		}
		return httpx.Internal(c, "fetch_care_failed")
	}
	if care.OwnerID != userID && care.CaretakerID != userID {
		return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
	}
	return c.JSON(care.ToResponse())
}

type updateCareStatusInput struct {
	Status models.CareStatus `json:"status"`
}

var validCareStatuses = map[models.CareStatus]bool{
	models.CarePending:    true,
	models.CareAccepted:   true,
	models.CareRefused:    true,
	models.CareInProgress: true,
	models.CareCompleted:  true,
	models.CareCancelled:  true,
}

// UpdateCareStatus transitions a care session. The caretaker accepts or
// refuses, the owner cancels. Accepting is the interesting case: it opens the
// plant-care conversation between owner and caretaker.
func (h *CareHandler) UpdateCareStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	careID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_care_id", "Invalid care id")
	}

	var input updateCareStatusInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validCareStatuses[input.Status] {
		return httpx.BadRequest(c, "invalid_status", "Invalid status")
	}

	care, err := h.careService.UpdateStatus(careID, userID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCareNotFound):
			return httpx.NotFound(c, "care_not_found", "Care session not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		case errors.Is(err, service.ErrInvalidCareTransition):
			return httpx.BadRequest(c, "invalid_transition", "The care session must be accepted first")
		}
		return httpx.Internal(c, "update_care_failed")
	}
	return c.JSON(care.ToResponse())
}

// UploadCarePhoto stores a start or end photo for the session and records its
// key on the care record.
func (h *CareHandler) UploadCarePhoto(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	careID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_care_id", "Invalid care id")
	}
	if h.photos == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_unavailable", "Photo storage is not configured")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return httpx.BadRequest(c, "missing_photo", "photo file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "read_photo_failed")
	}
	defer file.Close()

	key, err := h.photos.UploadPhoto(c.Context(), "cares", file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return httpx.BadRequest(c, "upload_failed", err.Error())
	}

	isEndPhoto, _ := strconv.ParseBool(c.Query("end", "false"))
	care, err := h.careService.AttachPhoto(careID, userID, key, isEndPhoto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCareNotFound):
			return httpx.NotFound(c, "care_not_found", "Care session not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		}
		return httpx.Internal(c, "attach_photo_failed")
	}
	return c.JSON(care.ToResponse())
}
