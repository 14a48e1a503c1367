package atlas

import (
	"context"
	"errors"
	"strconv"

	"map-atlas/core/logger"
	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the atlas.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the atlas routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/atlas")
	group.Get("/summary", h.HandleSummary)
	group.Get("/status", h.HandleStatus)
	group.Get("/issues", h.HandleIssues)
	group.Get("/provinces/at", h.HandleProvinceAt)
	group.Get("/provinces/:id", h.HandleProvince)
	group.Get("/states/:id", h.HandleState)
	group.Get("/regions/:id", h.HandleRegion)
	group.Get("/countries/:tag", h.HandleCountry)
	group.Get("/localisation/:key", h.HandleLocalisation)
	group.Get("/views/:view.:format", h.HandleView)
	group.Post("/reload", h.HandleReload)
	group.Post("/undo", h.HandleUndo)
	group.Post("/redo", h.HandleRedo)
}

// HandleSummary returns table sizes and view state of the published snapshot.
// @Summary Atlas Summary
// @Description Table sizes, content roots and rendered views of the published snapshot.
// @Tags atlas
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 503 {object} map[string]string "Atlas not loaded"
// @Router /atlas/summary [get]
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	resp, err := h.service.Summary()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleStatus returns the progress of the running or last build.
// @Summary Build Status
// @Tags atlas
// @Produce json
// @Success 200 {object} Status
// @Router /atlas/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleIssues lists the problems found while building the published snapshot.
// @Summary Build Issues
// @Tags atlas
// @Produce json
// @Success 200 {array} report.Issue
// @Failure 503 {object} map[string]string "Atlas not loaded"
// @Router /atlas/issues [get]
func (h *Handler) HandleIssues(c *fiber.Ctx) error {
	snap, err := h.service.Current()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap.Report.Issues())
}

// HandleProvince returns a province with its state and region.
// @Summary Get Province
// @Tags atlas
// @Produce json
// @Param id path int true "Province ID"
// @Success 200 {object} ProvinceResponse
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/provinces/{id} [get]
func (h *Handler) HandleProvince(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid province id")
	}
	resp, err := h.service.Province(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleProvinceAt resolves a province bitmap colour.
// @Summary Find Province By Color
// @Tags atlas
// @Produce json
// @Param color query string true "Colour as r,g,b or #rrggbb"
// @Success 200 {object} ProvinceResponse
// @Failure 400 {object} map[string]string "Invalid colour"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/provinces/at [get]
func (h *Handler) HandleProvinceAt(c *fiber.Ctx) error {
	color, err := mapdata.ParseRGB(c.Query("color"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	resp, err := h.service.ProvinceAt(color)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleState returns a state.
// @Summary Get State
// @Tags atlas
// @Produce json
// @Param id path int true "State ID"
// @Success 200 {object} StateResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/states/{id} [get]
func (h *Handler) HandleState(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid state id")
	}
	resp, err := h.service.State(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleRegion returns a strategic region.
// @Summary Get Strategic Region
// @Tags atlas
// @Produce json
// @Param id path int true "Strategic Region ID"
// @Success 200 {object} RegionResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/regions/{id} [get]
func (h *Handler) HandleRegion(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid region id")
	}
	resp, err := h.service.Region(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleCountry returns a country and the states it owns.
// @Summary Get Country
// @Tags atlas
// @Produce json
// @Param tag path string true "Country tag (e.g. 'GER')"
// @Success 200 {object} CountryResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/countries/{tag} [get]
func (h *Handler) HandleCountry(c *fiber.Ctx) error {
	resp, err := h.service.Country(c.Params("tag"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleLocalisation returns a localised string.
// @Summary Localise Key
// @Tags atlas
// @Produce json
// @Param key path string true "Localisation key"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not Found"
// @Router /atlas/localisation/{key} [get]
func (h *Handler) HandleLocalisation(c *fiber.Ctx) error {
	key := c.Params("key")
	value, err := h.service.Localise(key)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"key": key, "value": value})
}

// HandleView returns a rendered thematic view.
// @Summary Get View
// @Description Rendered view (province, state, region, owner) as PNG or BMP.
// @Tags atlas
// @Produce png
// @Param view path string true "View name"
// @Param format path string true "png or bmp"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string "Invalid view or format"
// @Failure 422 {object} map[string]string "View failed integrity checks"
// @Router /atlas/views/{view}.{format} [get]
func (h *Handler) HandleView(c *fiber.Ctx) error {
	view, err := raster.ParseView(c.Params("view"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	format, err := raster.ParseFormat(c.Params("format"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	data, err := h.service.RenderView(view, format)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(data)
}

// HandleReload rebuilds the atlas from disk.
// @Summary Reload Atlas
// @Description Rebuild from the content roots and publish on success.
// @Tags atlas
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 500 {object} map[string]string "Build failed"
// @Router /atlas/reload [post]
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Atlas reload requested")

	if _, err := h.service.Reload(c.UserContext(), nil); err != nil {
		return h.fail(c, err)
	}
	resp, err := h.service.Summary()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleUndo republishes the previous snapshot.
// @Summary Undo Reload
// @Tags atlas
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 409 {object} map[string]string "Nothing to undo"
// @Router /atlas/undo [post]
func (h *Handler) HandleUndo(c *fiber.Ctx) error {
	if _, ok := h.service.Undo(); !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nothing to undo"})
	}
	return h.HandleSummary(c)
}

// HandleRedo republishes the snapshot undone last.
// @Summary Redo Reload
// @Tags atlas
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 409 {object} map[string]string "Nothing to redo"
// @Router /atlas/redo [post]
func (h *Handler) HandleRedo(c *fiber.Ctx) error {
	if _, ok := h.service.Redo(); !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nothing to redo"})
	}
	return h.HandleSummary(c)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var nf *NotFoundError
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotLoaded):
		status = fiber.StatusServiceUnavailable
	case errors.As(err, &nf):
		status = fiber.StatusNotFound
	case report.IsIntegrity(err, ""):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = fiber.StatusRequestTimeout
	}
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Atlas request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
