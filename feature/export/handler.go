package export

import (
	"errors"

	"map-atlas/core/logger"
	"map-atlas/feature/atlas"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Post("/storage/:name", h.HandleStorageExport)
	group.Post("/database", h.HandleDatabaseExport)
	group.Get("/database/schema", h.HandleVerifySchema)
	group.Get("/drift/:name", h.HandleDrift)
}

// HandleStorageExport uploads the published atlas to the bucket.
// @Summary Export To Storage
// @Description Uploads rendered views and JSON tables under atlas/{name}/ and prunes older objects there.
// @Tags export
// @Produce json
// @Param name path string true "Export name (lowercase, digits, . _ -)"
// @Success 200 {object} StorageResult
// @Failure 400 {object} map[string]string "Invalid name"
// @Failure 503 {object} map[string]string "Atlas not loaded or storage disabled"
// @Router /export/storage/{name} [post]
func (h *Handler) HandleStorageExport(c *fiber.Ctx) error {
	name := c.Params("name")
	if !ValidName(name) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid export name"})
	}
	res, err := h.service.ToStorage(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleDatabaseExport writes the published atlas into the database.
// @Summary Export To Database
// @Description Upserts provinces, states, regions and countries and deletes rows no longer present.
// @Tags export
// @Produce json
// @Param migrate query boolean false "Create or update the tables first"
// @Success 200 {object} DatabaseResult
// @Failure 503 {object} map[string]string "Atlas not loaded or database disabled"
// @Router /export/database [post]
func (h *Handler) HandleDatabaseExport(c *fiber.Ctx) error {
	res, err := h.service.ToDatabase(c.UserContext(), c.QueryBool("migrate", false))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleVerifySchema lists model columns missing from the atlas tables.
// @Summary Verify Export Schema
// @Tags export
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 503 {object} map[string]string "Database disabled"
// @Router /export/database/schema [get]
func (h *Handler) HandleVerifySchema(c *fiber.Ctx) error {
	missing, err := h.service.VerifyDatabase(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"missing": missing})
}

// HandleDrift previews what an export would change.
// @Summary Export Drift
// @Description Compares the published atlas with the bucket prefix and the atlas tables without writing anything.
// @Tags export
// @Produce json
// @Param name path string true "Export name"
// @Success 200 {object} DriftReport
// @Failure 400 {object} map[string]string "Invalid name"
// @Failure 503 {object} map[string]string "Atlas not loaded or no target configured"
// @Router /export/drift/{name} [get]
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	name := c.Params("name")
	if !ValidName(name) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid export name"})
	}
	rep, err := h.service.Drift(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rep)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, atlas.ErrNotLoaded), errors.Is(err, ErrStorageDisabled), errors.Is(err, ErrDatabaseDisabled),
		errors.Is(err, ErrNoTarget):
		status = fiber.StatusServiceUnavailable
	default:
		logger.WithRayID(h.service.logger, c).Error("Export failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
