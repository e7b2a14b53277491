package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skilltrack/rubric-api/internal/models"
)

// SubmissionRepository defines data operations for submission records.
// Exactly one record exists per (assignment, student) pair; Save upserts
// on that key.
type SubmissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID uint, studentID string) (models.Submission, error)
	Save(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, assignmentID uint, studentID string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID uint, studentID string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	if submission.ID != 0 {
		return r.db.WithContext(ctx).Save(submission).Error
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			UpdateAll: true,
		}).
		Create(submission).Error
}

func (r *submissionRepository) Delete(ctx context.Context, assignmentID uint, studentID string) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Delete(&models.Submission{}).Error
}
