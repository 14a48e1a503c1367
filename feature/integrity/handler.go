package integrity

import (
	"errors"

	"map-atlas/core/logger"
	"map-atlas/feature/atlas"
	"map-atlas/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/checks", h.HandleListChecks)
	group.Get("/:check", h.HandleSingleCheck)
}

// HandleIntegrityCheck runs every check against the published atlas.
// @Summary Run All Integrity Checks
// @Description Runs every model consistency check over the published snapshot.
// @Tags integrity
// @Produce json
// @Success 200 {object} Report
// @Failure 503 {object} map[string]string "Atlas not loaded"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	rep, err := h.service.Run(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if !rep.OK() {
		l.Warn("Integrity checks found problems", zap.Int("findings", rep.Findings))
	}
	return c.JSON(rep)
}

// HandleListChecks lists the available checks.
// @Summary List Integrity Checks
// @Tags integrity
// @Produce json
// @Success 200 {array} map[string]string
// @Router /integrity/checks [get]
func (h *Handler) HandleListChecks(c *fiber.Ctx) error {
	out := make([]fiber.Map, 0, len(checks.All))
	for _, chk := range checks.All {
		out = append(out, fiber.Map{"name": chk.Name, "description": chk.Description})
	}
	return c.JSON(out)
}

// HandleSingleCheck runs one check.
// @Summary Run Integrity Check
// @Tags integrity
// @Produce json
// @Param check path string true "Check name (e.g. 'states')"
// @Success 200 {object} Report
// @Failure 404 {object} map[string]string "Unknown check"
// @Failure 503 {object} map[string]string "Atlas not loaded"
// @Router /integrity/{check} [get]
func (h *Handler) HandleSingleCheck(c *fiber.Ctx) error {
	name := c.Params("check")
	if _, ok := checks.Find(name); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown check " + name})
	}
	rep, err := h.service.Run(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rep)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, atlas.ErrNotLoaded) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error("Integrity check failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
