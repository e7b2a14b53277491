package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skilltrack/rubric-api/internal/dto"
	"github.com/skilltrack/rubric-api/internal/extract"
	"github.com/skilltrack/rubric-api/internal/models"
	"github.com/skilltrack/rubric-api/internal/observability"
	"github.com/skilltrack/rubric-api/internal/repository"
	"github.com/skilltrack/rubric-api/internal/view"
	"github.com/skilltrack/rubric-api/pkg/ai"
)

// Workflow sentinel errors.
var (
	// ErrUnsupportedFormat indicates the uploaded file is not a PDF or DOCX.
	ErrUnsupportedFormat = errors.New("only PDF and DOCX submissions are supported")
	// ErrExtractionFailed indicates no text could be extracted from the upload.
	ErrExtractionFailed = errors.New("could not extract text from the submission")
	// ErrUnauthorized indicates a non-staff actor attempted a staff operation.
	ErrUnauthorized = errors.New("staff role required")
	// ErrAssignmentNotFound indicates the assignment instance does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates the student has no current submission.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrNotGraded indicates an approval was attempted before any grade exists.
	ErrNotGraded = errors.New("submission has not been graded yet")
)

// FileStorage abstracts the artifact store for submission files.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// GradingService orchestrates the submission grading workflow: upload,
// extraction, automated grading, staff review, and reset.
type GradingService interface {
	Submit(ctx context.Context, assignmentID uint, actor Actor, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	View(ctx context.Context, assignmentID uint, actor Actor) (view.Model, error)
	ListSubmissions(ctx context.Context, assignmentID uint, actor Actor) ([]dto.SubmissionResponse, error)
	Approve(ctx context.Context, assignmentID uint, studentID string, actor Actor) (dto.SubmissionResponse, error)
	Override(ctx context.Context, assignmentID uint, studentID string, payload dto.OverrideRequest, actor Actor) (dto.SubmissionResponse, error)
	Reset(ctx context.Context, assignmentID uint, studentID string, actor Actor) error
}

type gradingService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	extractor   extract.TextExtractor
	grader      ai.Grader
	storage     FileStorage
	events      EventPublisher
	roster      *RosterCache
	validator   *validator.Validate
	locks       keyedLock
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the workflow service.
func NewGradingService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	extractor extract.TextExtractor,
	grader ai.Grader,
	storage FileStorage,
	events EventPublisher,
	roster *RosterCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		assignments: assignments,
		submissions: submissions,
		extractor:   extractor,
		grader:      grader,
		storage:     storage,
		events:      events,
		roster:      roster,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/skilltrack/rubric-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Submit(ctx context.Context, assignmentID uint, actor Actor, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.submit", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
	))
	defer span.End()

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("submission file is required")
	}

	format, err := extract.FormatFromFilename(file.Filename)
	if err != nil {
		return dto.SubmissionResponse{}, ErrUnsupportedFormat
	}

	data, err := readFile(file)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := verifyContentType(data, format); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	unlock := s.locks.lock(assignmentID, actor.ID)
	defer unlock()

	previous, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, actor.ID)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	// Storage write happens before the record write; a failed record write
	// triggers a compensating delete of the just-stored file.
	fileURL, publicID, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store submission file: %w", err)
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    actor.ID,
		FileURL:      fileURL,
		FilePublicID: publicID,
		Status:       models.SubmissionStatusUploaded,
	}
	if hadPrevious {
		submission.ID = previous.ID
		submission.CreatedAt = previous.CreatedAt
	}

	text, err := s.extractor.Extract(ctx, data, format)
	if err != nil {
		// The file is kept so staff can inspect what the student uploaded.
		if saveErr := s.saveReplacing(ctx, &submission, previous, hadPrevious, publicID); saveErr != nil {
			return dto.SubmissionResponse{}, saveErr
		}
		s.roster.Invalidate(ctx, assignmentID)
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %s", ErrExtractionFailed, err)
	}

	result, gradeErr := s.grader.Grade(ctx, ai.GradeInput{
		AssignmentTitle: assignment.Title,
		Topic:           assignment.PromptTopic,
		DocumentText:    text,
		Credential:      assignment.Credential,
	})
	if gradeErr != nil {
		// The provider being unreachable must not leave the student without
		// feedback: the submission still ends up graded, with a sentinel.
		reason := fmt.Sprintf("grading provider unavailable: %v", gradeErr)
		result = ai.GradeResult{
			Score:          0,
			Comment:        "Automated grading could not produce a result: " + reason + ". A member of staff will review this submission.",
			Degraded:       true,
			DegradedReason: reason,
		}
		s.logger.Error().Err(gradeErr).Uint("assignment_id", assignmentID).Msg("grading call failed; recording sentinel grade")
	}

	if result.Degraded {
		observability.DegradedGrades().Inc()
		span.SetAttributes(attribute.Bool("grading.degraded", true))
	}

	score := result.Score
	submission.Score = &score
	submission.Comment = result.Comment
	submission.Graded = true
	submission.Approved = false
	submission.Degraded = result.Degraded
	submission.DegradedReason = result.DegradedReason
	submission.Status = models.SubmissionStatusGraded
	if raw, err := json.Marshal(map[string]string{"reply": result.RawReply}); err == nil {
		submission.RawResult = datatypes.JSON(raw)
	}

	if err := s.saveReplacing(ctx, &submission, previous, hadPrevious, publicID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.roster.Invalidate(ctx, assignmentID)
	s.events.Publish(ctx, GradingEvent{
		Type:         EventSubmissionGraded,
		AssignmentID: assignmentID,
		StudentID:    actor.ID,
		Score:        submission.Score,
		Degraded:     submission.Degraded,
		At:           s.now().UTC(),
	})

	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Str("student_id", actor.ID).
		Bool("degraded", submission.Degraded).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// saveReplacing persists the record and cleans up files: the new upload on a
// failed record write, the previous upload on a successful replacement.
func (s *gradingService) saveReplacing(ctx context.Context, submission *models.Submission, previous models.Submission, hadPrevious bool, newPublicID string) error {
	if err := s.submissions.Save(ctx, submission); err != nil {
		if deleteErr := s.storage.Delete(ctx, newPublicID); deleteErr != nil {
			s.logger.Error().Err(deleteErr).Str("public_id", newPublicID).Msg("compensating file delete failed")
		}
		return fmt.Errorf("failed to persist submission record: %w", err)
	}

	if hadPrevious && previous.FilePublicID != "" && previous.FilePublicID != newPublicID {
		if err := s.storage.Delete(ctx, previous.FilePublicID); err != nil {
			s.logger.Warn().Err(err).Str("public_id", previous.FilePublicID).Msg("failed to delete replaced submission file")
		}
	}

	return nil
}

func (s *gradingService) View(ctx context.Context, assignmentID uint, actor Actor) (view.Model, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view.Model{}, ErrAssignmentNotFound
		}
		return view.Model{}, err
	}

	role := view.RoleStudent
	if actor.IsStaff() {
		role = view.RoleStaff
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view.Render(role, assignment, nil), nil
		}
		return view.Model{}, err
	}

	return view.Render(role, assignment, &submission), nil
}

func (s *gradingService) ListSubmissions(ctx context.Context, assignmentID uint, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrUnauthorized
	}

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if roster, ok := s.roster.Get(ctx, assignmentID); ok {
		return roster, nil
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	roster := dto.NewSubmissionResponseSlice(submissions)
	s.roster.Set(ctx, assignmentID, roster)

	return roster, nil
}

func (s *gradingService) Approve(ctx context.Context, assignmentID uint, studentID string, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.IsStaff() {
		return dto.SubmissionResponse{}, ErrUnauthorized
	}

	unlock := s.locks.lock(assignmentID, studentID)
	defer unlock()

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Approval confirms an existing grade; it never creates one.
	if !submission.Graded {
		return dto.SubmissionResponse{}, ErrNotGraded
	}

	if !submission.Approved {
		submission.Approved = true
		submission.Status = models.SubmissionStatusApproved
		if err := s.submissions.Save(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}

		s.roster.Invalidate(ctx, assignmentID)
		s.events.Publish(ctx, GradingEvent{
			Type:         EventSubmissionApproved,
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Score:        submission.Score,
			At:           s.now().UTC(),
		})
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) Override(ctx context.Context, assignmentID uint, studentID string, payload dto.OverrideRequest, actor Actor) (dto.SubmissionResponse, error) {
	if !actor.IsStaff() {
		return dto.SubmissionResponse{}, ErrUnauthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	unlock := s.locks.lock(assignmentID, studentID)
	defer unlock()

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if payload.Score != nil {
		score := *payload.Score
		submission.Score = &score
	}
	if payload.Comment != nil {
		submission.Comment = *payload.Comment
	}
	if payload.Approve != nil {
		submission.Approved = *payload.Approve
	}

	// A staff override is authoritative: it supersedes any sentinel grade.
	submission.Graded = true
	submission.Degraded = false
	submission.DegradedReason = ""
	if submission.Score == nil {
		zero := 0.0
		submission.Score = &zero
	}
	if submission.Approved {
		submission.Status = models.SubmissionStatusApproved
	} else {
		submission.Status = models.SubmissionStatusGraded
	}

	if err := s.submissions.Save(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.roster.Invalidate(ctx, assignmentID)
	s.events.Publish(ctx, GradingEvent{
		Type:         EventSubmissionOverridden,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Score:        submission.Score,
		At:           s.now().UTC(),
	})

	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Str("student_id", studentID).
		Str("actor_id", actor.ID).
		Msg("submission overridden")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) Reset(ctx context.Context, assignmentID uint, studentID string, actor Actor) error {
	if !actor.IsStaff() {
		return ErrUnauthorized
	}

	unlock := s.locks.lock(assignmentID, studentID)
	defer unlock()

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if err := s.submissions.Delete(ctx, assignmentID, studentID); err != nil {
		return err
	}

	if submission.FilePublicID != "" {
		if err := s.storage.Delete(ctx, submission.FilePublicID); err != nil {
			s.logger.Warn().Err(err).Str("public_id", submission.FilePublicID).Msg("failed to delete submission file on reset")
		}
	}

	s.roster.Invalidate(ctx, assignmentID)
	s.events.Publish(ctx, GradingEvent{
		Type:         EventSubmissionReset,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		At:           s.now().UTC(),
	})

	return nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// verifyContentType sniffs the payload and checks it agrees with the
// declared extension. DOCX files are zip archives, so plain zip is accepted
// for them.
func verifyContentType(data []byte, format extract.Format) error {
	mime := mimetype.Detect(data)

	switch format {
	case extract.FormatPDF:
		if mime.Is("application/pdf") {
			return nil
		}
	case extract.FormatDOCX:
		for _, allowed := range []string{
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/zip",
			"application/x-zip-compressed",
		} {
			if mime.Is(allowed) {
				return nil
			}
		}
	}

	return ErrUnsupportedFormat
}
