package handlers

import (
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SettingHandler handles club settings endpoints
type SettingHandler struct {
	settingRepo repositories.SettingRepository
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(settingRepo repositories.SettingRepository) *SettingHandler {
	return &SettingHandler{settingRepo: settingRepo}
}

// List lists all club settings
// @Summary List settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /settings [get]
func (h *SettingHandler) List(c *fiber.Ctx) error {
	settings, err := h.settingRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list settings")
	}
	return response.Success(c, "", settings)
}

// UpdateSettingRequest represents update setting request
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// Update upserts a setting value (admin only)
// @Summary Update setting
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param body body UpdateSettingRequest true "New value"
// @Success 200 {object} response.Response
// @Router /settings/{key} [put]
func (h *SettingHandler) Update(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return response.BadRequest(c, "Setting key is required")
	}

	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Value == "" {
		return response.BadRequest(c, "Value is required")
	}

	if err := h.settingRepo.Set(c.Context(), key, req.Value); err != nil {
		return response.InternalServerError(c, "Failed to update setting")
	}

	return response.Success(c, "Setting updated", fiber.Map{
		"key":   key,
		"value": req.Value,
	})
}
