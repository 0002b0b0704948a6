package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/service"
	"github.com/greenkeep/greenkeep-backend/internal/storage"
)

type PlantHandler struct {
	plantService *service.PlantService
	photos       *storage.PhotoStorage
}

func NewPlantHandler(plantService *service.PlantService, photos *storage.PhotoStorage) *PlantHandler {
	return &PlantHandler{plantService: plantService, photos: photos}
}

type createPlantInput struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Description string `json:"description"`
}

func (h *PlantHandler) CreatePlant(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createPlantInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if strings.TrimSpace(input.Name) == "" {
		return httpx.BadRequest(c, "missing_name", "name is required")
	}

	plant, err := h.plantService.Create(userID, input.Name, input.Species, input.Description)
	if err != nil {
		return httpx.Internal(c, "create_plant_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(plant.ToResponse())
}

func (h *PlantHandler) ListPlants(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	skip, limit := pagination(c)
	plants, err := h.plantService.ListByOwner(userID, skip, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_plants_failed")
	}

	responses := make([]models.PlantResponse, 0, len(plants))
	for i := range plants {
		responses = append(responses, plants[i].ToResponse())
	}
	return c.JSON(responses)
}

func (h *PlantHandler) GetPlant(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	plantID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_plant_id", "Invalid plant id")
	}

	plant, err := h.plantService.Get(plantID)
	if err != nil {
		if errors.Is(err, service.ErrPlantNotFound) {
			return httpx.NotFound(c, "plant_not_found", "Plant not found")
		}
		return httpx.Internal(c, "fetch_plant_failed")
	}
	return c.JSON(plant.ToResponse())
}

func (h *PlantHandler) UploadPlantPhoto(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	plantID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_plant_id", "Invalid plant id")
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

	key, err := h.photos.UploadPhoto(c.Context(), "plants", file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return httpx.BadRequest(c, "upload_failed", err.Error())
	}

	plant, err := h.plantService.SetPhoto(plantID, userID, key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlantNotFound):
			return httpx.NotFound(c, "plant_not_found", "Plant not found")
		case errors.Is(err, service.ErrNotAllowed):
			return httpx.Forbidden(c, "not_allowed", "Operation not allowed")
		}
		return httpx.Internal(c, "attach_photo_failed")
	}
	return c.JSON(plant.ToResponse())
}
