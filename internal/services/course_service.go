package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, instructorID string) (*CourseResponse, error) {
	s.logger.Info("Creating course", "instructor_id", instructorID, "title", req.Title)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	// Only instructors and admins may create courses
	canCreate, err := s.canCreateCourse(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !canCreate {
		return nil, NewPermissionError(instructorID, 0, "course", "create", "insufficient role permissions")
	}

	// Slug must be unique
	exists, err := s.repo.Course().ExistsBySlug(ctx, s.db, req.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check course slug: %w", err)
	}
	if exists {
		return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", req.Slug))
	}

	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
	}

	tags, err := encodeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	// New courses always start unpublished
	course := &models.Course{
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		InstructorID:  instructorID,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Tags:          tags,
		IsPublished:   false,
	}

	if err := s.repo.Course().Create(ctx, s.db, course); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", req.Slug))
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created successfully", "course_id", course.ID)

	return s.buildCourseResponse(ctx, course, instructorID), nil
}

func (s *courseService) GetByID(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	course, err := s.getCourseByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	canAccess, err := s.canAccessCourse(ctx, course, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		// Unpublished courses are invisible, not forbidden
		return nil, ErrCourseNotFound
	}

	return s.buildCourseResponse(ctx, course, userID), nil
}

func (s *courseService) GetByIDWithDetails(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course with details: %w", err)
	}

	canAccess, err := s.canAccessCourse(ctx, course, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrCourseNotFound
	}

	return s.buildCourseResponse(ctx, course, userID), nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (*CourseResponse, error) {
	s.logger.Info("Updating course", "course_id", id, "user_id", userID)

	course, err := s.getCourseByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateCourseUpdate(req, course); len(errs) > 0 {
		return nil, errs
	}

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "course", "update", "not owner or insufficient permissions")
	}

	if req.Slug != nil && *req.Slug != course.Slug {
		exists, err := s.repo.Course().ExistsBySlug(ctx, s.db, *req.Slug, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check course slug: %w", err)
		}
		if exists {
			return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", *req.Slug))
		}
	}

	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
	}

	if err := s.applyCourseUpdates(course, req); err != nil {
		return nil, err
	}

	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("Course updated successfully", "course_id", id)

	return s.buildCourseResponse(ctx, course, userID), nil
}

func (s *courseService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting course", "course_id", id, "user_id", userID)

	canDelete, err := s.CanDelete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !canDelete {
		return NewPermissionError(userID, id, "course", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Course().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("Course deleted successfully", "course_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error) {
	filters, err := s.applyRoleVisibility(ctx, filters, userID)
	if err != nil {
		return nil, err
	}

	courses, total, err := s.repo.Course().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return s.buildCourseListResponse(ctx, courses, total, filters, userID), nil
}

func (s *courseService) GetByInstructor(ctx context.Context, instructorID string, filters repositories.CourseFilters, userID string) (*CourseListResponse, error) {
	// Only the instructor themselves and admins see drafts in this listing.
	ownView := userID == instructorID
	if !ownView && userID != "" {
		userRole, err := s.getUserRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		ownView = userRole == models.RoleAdmin
	}
	if !ownView {
		published := true
		filters.IsPublished = &published
	}

	courses, total, err := s.repo.Course().GetByInstructor(ctx, s.db, instructorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses by instructor: %w", err)
	}

	return s.buildCourseListResponse(ctx, courses, total, filters, userID), nil
}

func (s *courseService) Search(ctx context.Context, query string, filters repositories.CourseFilters, userID string) (*CourseListResponse, error) {
	filters, err := s.applyRoleVisibility(ctx, filters, userID)
	if err != nil {
		return nil, err
	}

	courses, total, err := s.repo.Course().Search(ctx, s.db, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}

	return s.buildCourseListResponse(ctx, courses, total, filters, userID), nil
}

// ===== PUBLISH STATE MANAGEMENT =====

func (s *courseService) Publish(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	return s.setPublished(ctx, id, userID, true)
}

func (s *courseService) Unpublish(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	return s.setPublished(ctx, id, userID, false)
}

func (s *courseService) setPublished(ctx context.Context, id uint, userID string, published bool) (*CourseResponse, error) {
	s.logger.Info("Changing course publish state", "course_id", id, "published", published, "user_id", userID)

	canEdit, err := s.CanEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		action := "publish"
		if !published {
			action = "unpublish"
		}
		return nil, NewPermissionError(userID, id, "course", action, "not owner or insufficient permissions")
	}

	course, err := s.getCourseByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Idempotent: repeating the current state is a no-op
	if course.IsPublished != published {
		if err := s.repo.Course().SetPublished(ctx, s.db, id, published); err != nil {
			return nil, fmt.Errorf("failed to update publish state: %w", err)
		}
		course.IsPublished = published

		s.publishCourseEvent(ctx, course, published)
	}

	return s.buildCourseResponse(ctx, course, userID), nil
}

// ===== STATISTICS =====

func (s *courseService) GetStats(ctx context.Context, id uint, userID string) (*repositories.CourseStats, error) {
	course, err := s.getCourseByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	canAccess, err := s.canAccessCourse(ctx, course, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrCourseNotFound
	}

	stats, err := s.repo.Course().GetCourseStats(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course stats: %w", err)
	}

	return stats, nil
}

func (s *courseService) GetInstructorStats(ctx context.Context, instructorID string, userID string) (*repositories.InstructorStats, error) {
	// Instructors see their own stats, admins see anyone's
	if instructorID != userID {
		userRole, err := s.getUserRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		if userRole != models.RoleAdmin {
			return nil, NewPermissionError(userID, 0, "instructor_stats", "read", "not the instructor or an admin")
		}
	}

	stats, err := s.repo.Course().GetInstructorStats(ctx, s.db, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor stats: %w", err)
	}

	return stats, nil
}

// encodeTags marshals the tag list into the JSON column representation
func encodeTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return datatypes.JSON(data), nil
}
