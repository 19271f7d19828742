package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/validator"
)

type lessonService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLessonService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) LessonService {
	return &lessonService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *lessonService) Create(ctx context.Context, req *CreateLessonRequest, userID string) (*LessonResponse, error) {
	s.logger.Info("Creating lesson", "course_id", req.CourseID, "user_id", userID, "title", req.Title)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateLessonCreate(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Lessons are managed by the course owner
	canManage, err := s.canManageCourse(ctx, course, userID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(userID, req.CourseID, "lesson", "create", "not course owner or insufficient permissions")
	}

	// Order must be unique within the course
	taken, err := s.repo.Lesson().ExistsByOrder(ctx, s.db, req.CourseID, req.Order, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check lesson order: %w", err)
	}
	if taken {
		return nil, NewBusinessRuleError("unique_order", fmt.Sprintf("order %d is already used in this course", req.Order))
	}

	lesson := &models.Lesson{
		Title:    req.Title,
		CourseID: req.CourseID,
		Order:    req.Order,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		Duration: req.Duration,
	}

	if err := s.repo.Lesson().Create(ctx, s.db, lesson); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewBusinessRuleError("unique_order", fmt.Sprintf("order %d is already used in this course", req.Order))
		}
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.logger.Info("Lesson created successfully", "lesson_id", lesson.ID, "course_id", req.CourseID)

	return s.buildLessonResponse(ctx, lesson, userID), nil
}

func (s *lessonService) GetByID(ctx context.Context, id uint, userID string) (*LessonResponse, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	canAccess, err := s.canAccessLesson(ctx, lesson, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		// Invisible content reads as absent
		return nil, ErrLessonNotFound
	}

	return s.buildLessonResponse(ctx, lesson, userID), nil
}

func (s *lessonService) Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID string) (*LessonResponse, error) {
	s.logger.Info("Updating lesson", "lesson_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "lesson", "update", "not course owner or insufficient permissions")
	}

	if req.Order != nil && *req.Order != lesson.Order {
		taken, err := s.repo.Lesson().ExistsByOrder(ctx, s.db, lesson.CourseID, *req.Order, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check lesson order: %w", err)
		}
		if taken {
			return nil, NewBusinessRuleError("unique_order", fmt.Sprintf("order %d is already used in this course", *req.Order))
		}
		lesson.Order = *req.Order
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.Duration != nil {
		lesson.Duration = req.Duration
	}

	if err := s.repo.Lesson().Update(ctx, s.db, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	s.logger.Info("Lesson updated successfully", "lesson_id", id)

	return s.buildLessonResponse(ctx, lesson, userID), nil
}

func (s *lessonService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting lesson", "lesson_id", id, "user_id", userID)

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "lesson", "delete", "not course owner or insufficient permissions")
	}

	if err := s.repo.Lesson().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.logger.Info("Lesson deleted successfully", "lesson_id", id)
	return nil
}

// ===== LIST OPERATIONS =====

func (s *lessonService) List(ctx context.Context, filters repositories.LessonFilters, userID string) (*LessonListResponse, error) {
	if filters.CourseID != nil {
		// Scoped listing: the visibility rule of the parent course applies
		// to the whole page.
		course, err := s.repo.Course().GetByID(ctx, s.db, *filters.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}

		canView, err := s.canViewCourseContent(ctx, course, userID)
		if err != nil {
			return nil, err
		}
		if !canView {
			return &LessonListResponse{
				Lessons: []*LessonResponse{},
				Total:   0,
				Page:    1,
				Size:    filters.Limit,
			}, nil
		}
	} else {
		// Unscoped listing narrows to what the caller may see: admins get
		// everything, instructors their own courses, students the published
		// courses they are enrolled in.
		if userID == "" {
			return &LessonListResponse{
				Lessons: []*LessonResponse{},
				Total:   0,
				Page:    1,
				Size:    filters.Limit,
			}, nil
		}

		user, err := s.repo.User().GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		switch {
		case user.IsAdmin():
			// No additional filtering
		case user.Role == models.RoleInstructor:
			filters.InstructorID = &userID
		default:
			filters.EnrolledStudent = &userID
		}
	}

	lessons, total, err := s.repo.Lesson().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	response := &LessonListResponse{
		Lessons: make([]*LessonResponse, len(lessons)),
		Total:   total,
		Page:    (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:    filters.Limit,
	}

	for i, lesson := range lessons {
		response.Lessons[i] = s.buildLessonResponse(ctx, lesson, userID)
	}

	return response, nil
}

func (s *lessonService) GetByCourse(ctx context.Context, courseID uint, userID string) (*LessonListResponse, error) {
	filters := repositories.LessonFilters{CourseID: &courseID}
	return s.List(ctx, filters, userID)
}

// ===== PERMISSION CHECKS =====

func (s *lessonService) CanAccess(ctx context.Context, lessonID uint, userID string) (bool, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return s.canAccessLesson(ctx, lesson, userID)
}

func (s *lessonService) CanEdit(ctx context.Context, lessonID uint, userID string) (bool, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, lesson.CourseID)
	if err != nil {
		return false, err
	}

	return s.canManageCourse(ctx, course, userID)
}

// ===== HELPER FUNCTIONS =====

// canAccessLesson resolves lesson visibility through its parent course.
func (s *lessonService) canAccessLesson(ctx context.Context, lesson *models.Lesson, userID string) (bool, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, lesson.CourseID)
	if err != nil {
		// Orphaned lesson reads as absent
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return s.canViewCourseContent(ctx, course, userID)
}

// canViewCourseContent gates lesson content: owners and admins always see it,
// students need a counted enrollment in a published course.
func (s *lessonService) canViewCourseContent(ctx context.Context, course *models.Course, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return true, nil
	}

	if course.OwnerID() == userID {
		return true, nil
	}

	if !course.IsPublished {
		return false, nil
	}

	return s.repo.Enrollment().IsEnrolled(ctx, s.db, userID, course.ID)
}

func (s *lessonService) canManageCourse(ctx context.Context, course *models.Course, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin() {
		return true, nil
	}

	return course.OwnerID() == userID, nil
}

func (s *lessonService) buildLessonResponse(ctx context.Context, lesson *models.Lesson, userID string) *LessonResponse {
	response := &LessonResponse{
		Lesson: lesson,
	}

	canEdit, _ := s.CanEdit(ctx, lesson.ID, userID)
	response.CanEdit = canEdit
	response.CanDelete = canEdit

	return response
}
