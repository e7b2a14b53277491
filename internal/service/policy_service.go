package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skilltrack/rubric-api/internal/dto"
	"github.com/skilltrack/rubric-api/internal/models"
	"github.com/skilltrack/rubric-api/internal/repository"
)

// PolicyService manages assignment instances and their grading policies.
// The policy (rubric topic, weight, provider credential) is configured by
// staff and consumed by the grading workflow at submit time.
type PolicyService interface {
	CreateAssignment(ctx context.Context, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error)
	ListAssignments(ctx context.Context) ([]dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	GetPolicy(ctx context.Context, assignmentID uint, actor Actor) (dto.PolicyResponse, error)
	SetPolicy(ctx context.Context, assignmentID uint, payload dto.PolicyUpdateRequest, actor Actor) (dto.PolicyResponse, error)
}

type policyService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewPolicyService constructs a PolicyService instance.
func NewPolicyService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) PolicyService {
	return &policyService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "policy_service").Logger(),
	}
}

func (s *policyService) CreateAssignment(ctx context.Context, payload dto.AssignmentCreateRequest, actor Actor) (dto.AssignmentResponse, error) {
	if !actor.IsStaff() {
		return dto.AssignmentResponse{}, ErrUnauthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		PromptTopic: payload.PromptTopic,
		Weight:      payload.Weight,
		Credential:  payload.Credential,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *policyService) ListAssignments(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *policyService) GetAssignment(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *policyService) GetPolicy(ctx context.Context, assignmentID uint, actor Actor) (dto.PolicyResponse, error) {
	if !actor.IsStaff() {
		return dto.PolicyResponse{}, ErrUnauthorized
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PolicyResponse{}, ErrAssignmentNotFound
		}
		return dto.PolicyResponse{}, err
	}

	return dto.NewPolicyResponse(assignment), nil
}

func (s *policyService) SetPolicy(ctx context.Context, assignmentID uint, payload dto.PolicyUpdateRequest, actor Actor) (dto.PolicyResponse, error) {
	if !actor.IsStaff() {
		return dto.PolicyResponse{}, ErrUnauthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.PolicyResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PolicyResponse{}, ErrAssignmentNotFound
		}
		return dto.PolicyResponse{}, err
	}

	if payload.PromptTopic != nil {
		assignment.PromptTopic = *payload.PromptTopic
	}
	if payload.Weight != nil {
		assignment.Weight = *payload.Weight
	}
	if payload.Credential != nil {
		assignment.Credential = *payload.Credential
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.PolicyResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignmentID).Str("actor_id", actor.ID).Msg("grading policy updated")

	return dto.NewPolicyResponse(assignment), nil
}
