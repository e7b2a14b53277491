package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skilltrack/rubric-api/internal/dto"
	"github.com/skilltrack/rubric-api/internal/service"
	"github.com/skilltrack/rubric-api/internal/utils"
)

// PolicyHandler manages assignment and grading-policy endpoints.
type PolicyHandler struct {
	service   service.PolicyService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPolicyHandler builds a policy handler instance.
func NewPolicyHandler(service service.PolicyService, validator *validator.Validate, logger zerolog.Logger) *PolicyHandler {
	return &PolicyHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "policy_handler").Logger(),
	}
}

// Register attaches the routes to the provided assignment router group.
func (h *PolicyHandler) Register(router fiber.Router, staffOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", staffOnly, h.create)
	router.Get("/:id", h.get)
	router.Get("/:id/policy", staffOnly, h.getPolicy)
	router.Put("/:id/policy", staffOnly, h.setPolicy)
}

func (h *PolicyHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.ListAssignments(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *PolicyHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.CreateAssignment(c.Context(), payload, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "assignment created", assignment)
}

func (h *PolicyHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.GetAssignment(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *PolicyHandler) getPolicy(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	policy, err := h.service.GetPolicy(c.Context(), id, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading policy retrieved", policy)
}

func (h *PolicyHandler) setPolicy(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PolicyUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	policy, err := h.service.SetPolicy(c.Context(), id, payload, actorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading policy updated", policy)
}

func (h *PolicyHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
