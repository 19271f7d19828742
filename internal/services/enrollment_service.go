package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/validator"
)

type enrollmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== ENROLLMENT LIFECYCLE =====

func (s *enrollmentService) Enroll(ctx context.Context, courseID uint, studentID string) (*EnrollmentResponse, error) {
	s.logger.Info("Enrolling student", "course_id", courseID, "student_id", studentID)

	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Only published courses accept enrollments
	if !course.IsPublished {
		return nil, ErrCourseNotFound
	}

	// Instructors cannot enroll in their own course
	if course.OwnerID() == studentID {
		return nil, NewBusinessRuleError("own_course", "instructors cannot enroll in their own course")
	}

	var enrollment *models.Enrollment
	existing, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, s.db, studentID, courseID)
	switch {
	case err == nil:
		if existing.Counted() {
			return nil, NewBusinessRuleError("already_enrolled", "student is already enrolled in this course")
		}
		// Re-enrolling after cancellation reactivates the record
		existing.Status = models.EnrollmentActive
		existing.EnrolledAt = time.Now()
		if err := s.repo.Enrollment().Update(ctx, s.db, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate enrollment: %w", err)
		}
		enrollment = existing

	case repositories.IsNotFoundError(err):
		enrollment = &models.Enrollment{
			CourseID:   courseID,
			StudentID:  studentID,
			Status:     models.EnrollmentActive,
			EnrolledAt: time.Now(),
		}
		if err := s.repo.Enrollment().Create(ctx, s.db, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return nil, NewBusinessRuleError("already_enrolled", "student is already enrolled in this course")
			}
			return nil, fmt.Errorf("failed to create enrollment: %w", err)
		}

	default:
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	s.publishEnrollmentEvent(ctx, enrollment, events.EventEnrollmentCreated)

	s.logger.Info("Student enrolled successfully", "enrollment_id", enrollment.ID, "course_id", courseID)

	return s.buildEnrollmentResponse(enrollment, studentID), nil
}

func (s *enrollmentService) Withdraw(ctx context.Context, courseID uint, studentID string) error {
	s.logger.Info("Withdrawing student", "course_id", courseID, "student_id", studentID)

	enrollment, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, s.db, studentID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to get enrollment: %w", err)
	}

	if enrollment.Status == models.EnrollmentCancelled {
		// Already withdrawn, nothing to do
		return nil
	}

	if enrollment.Status == models.EnrollmentCompleted {
		return NewBusinessRuleError("completed_enrollment", "cannot withdraw from a completed course")
	}

	enrollment.Status = models.EnrollmentCancelled
	if err := s.repo.Enrollment().Update(ctx, s.db, enrollment); err != nil {
		return fmt.Errorf("failed to cancel enrollment: %w", err)
	}

	s.publishEnrollmentEvent(ctx, enrollment, events.EventEnrollmentCancelled)

	s.logger.Info("Student withdrawn successfully", "enrollment_id", enrollment.ID, "course_id", courseID)
	return nil
}

func (s *enrollmentService) Complete(ctx context.Context, enrollmentID uint, requesterID string) (*EnrollmentResponse, error) {
	s.logger.Info("Completing enrollment", "enrollment_id", enrollmentID, "requester_id", requesterID)

	enrollment, err := s.repo.Enrollment().GetByID(ctx, s.db, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	// Completion is marked by the course owner or an admin
	canManage, err := s.canManageEnrollment(ctx, enrollment, requesterID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(requesterID, enrollmentID, "enrollment", "complete", "not course owner or insufficient permissions")
	}

	if enrollment.Status != models.EnrollmentActive {
		return nil, NewBusinessRuleError("inactive_enrollment", "only active enrollments can be completed")
	}

	enrollment.Status = models.EnrollmentCompleted
	if err := s.repo.Enrollment().Update(ctx, s.db, enrollment); err != nil {
		return nil, fmt.Errorf("failed to complete enrollment: %w", err)
	}

	return s.buildEnrollmentResponse(enrollment, requesterID), nil
}

// ===== QUERIES =====

func (s *enrollmentService) GetByID(ctx context.Context, id uint, requesterID string) (*EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if enrollment.StudentID != requesterID {
		canManage, err := s.canManageEnrollment(ctx, enrollment, requesterID)
		if err != nil {
			return nil, err
		}
		if !canManage {
			return nil, ErrEnrollmentNotFound
		}
	}

	return s.buildEnrollmentResponse(enrollment, requesterID), nil
}

func (s *enrollmentService) List(ctx context.Context, filters repositories.EnrollmentFilters, requesterID string) (*EnrollmentListResponse, error) {
	user, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Students see their own enrollments; admins see everything; instructors
	// must scope the listing to one of their courses.
	switch {
	case user.IsAdmin():
		// No additional filtering

	case user.IsInstructor() && filters.CourseID != nil:
		course, err := s.repo.Course().GetByID(ctx, s.db, *filters.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		if course.OwnerID() != requesterID {
			return nil, NewPermissionError(requesterID, *filters.CourseID, "enrollment", "list", "not course owner")
		}

	default:
		filters.StudentID = &requesterID
	}

	enrollments, total, err := s.repo.Enrollment().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	response := &EnrollmentListResponse{
		Enrollments: make([]*EnrollmentResponse, len(enrollments)),
		Total:       total,
		Page:        (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:        filters.Limit,
	}

	for i, enrollment := range enrollments {
		response.Enrollments[i] = s.buildEnrollmentResponse(enrollment, requesterID)
	}

	return response, nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error) {
	return s.repo.Enrollment().IsEnrolled(ctx, s.db, studentID, courseID)
}

// ===== HELPER FUNCTIONS =====

func (s *enrollmentService) canManageEnrollment(ctx context.Context, enrollment *models.Enrollment, requesterID string) (bool, error) {
	if requesterID == "" {
		return false, nil
	}

	user, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return true, nil
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, enrollment.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return course.OwnerID() == requesterID, nil
}

func (s *enrollmentService) buildEnrollmentResponse(enrollment *models.Enrollment, requesterID string) *EnrollmentResponse {
	return &EnrollmentResponse{
		Enrollment: enrollment,
		CanCancel:  enrollment.StudentID == requesterID && enrollment.Status == models.EnrollmentActive,
	}
}

func (s *enrollmentService) publishEnrollmentEvent(ctx context.Context, enrollment *models.Enrollment, eventType string) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, events.EnrollmentEvent{
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		StudentID:    enrollment.StudentID,
		Status:       string(enrollment.Status),
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish enrollment event", "event_type", eventType, "enrollment_id", enrollment.ID, "error", err)
	}
}
