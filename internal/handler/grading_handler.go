package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skilltrack/rubric-api/internal/dto"
	"github.com/skilltrack/rubric-api/internal/middleware"
	"github.com/skilltrack/rubric-api/internal/service"
	"github.com/skilltrack/rubric-api/internal/utils"
)

// GradingHandler manages submission workflow endpoints.
type GradingHandler struct {
	service   service.GradingService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, validator *validator.Validate, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided assignment-scoped router
// group. The staff middleware guards the reviewer routes; services re-check
// the actor role on top of it.
func (h *GradingHandler) Register(router fiber.Router, staffOnly fiber.Handler, submitLimit fiber.Handler) {
	submission := router.Group("/:id/submission")
	if submitLimit != nil {
		submission.Post("", submitLimit, h.submit)
	} else {
		submission.Post("", h.submit)
	}
	submission.Get("", h.view)

	roster := router.Group("/:id/submissions", staffOnly)
	roster.Get("", h.list)
	roster.Post("/:studentID/approve", h.approve)
	roster.Patch("/:studentID", h.override)
	roster.Delete("/:studentID", h.reset)
}

func (h *GradingHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.service.Submit(c.Context(), assignmentID, actorFromCtx(c), file)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "submission graded"
	if submission.Degraded {
		message = "submission recorded; automated grading was unavailable"
	}

	return utils.SendSuccess(c, message, submission)
}

func (h *GradingHandler) view(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	model, err := h.service.View(c.Context(), assignmentID, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission state retrieved", model)
}

func (h *GradingHandler) list(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListSubmissions(c.Context(), assignmentID, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *GradingHandler) approve(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Approve(c.Context(), assignmentID, c.Params("studentID"), actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission approved", submission)
}

func (h *GradingHandler) override(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.OverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Override(c.Context(), assignmentID, c.Params("studentID"), payload, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission overridden", submission)
}

func (h *GradingHandler) reset(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Reset(c.Context(), assignmentID, c.Params("studentID"), actorFromCtx(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission reset", nil)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrUnsupportedFormat.Error())
	case errors.Is(err, service.ErrExtractionFailed):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, service.ErrExtractionFailed.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrNotGraded):
		return utils.SendError(c, fiber.StatusConflict, service.ErrNotGraded.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
