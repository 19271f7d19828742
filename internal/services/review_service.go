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

type reviewService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReviewService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ReviewService {
	return &reviewService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *reviewService) Create(ctx context.Context, req *CreateReviewRequest, authorID string) (*ReviewResponse, error) {
	s.logger.Info("Creating review", "course_id", req.CourseID, "author_id", authorID)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateReviewCreate(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Reviews only exist on published courses
	if !course.IsPublished {
		return nil, ErrCourseNotFound
	}

	// One review per user per course
	exists, err := s.repo.Review().ExistsByUserAndCourse(ctx, s.db, authorID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, NewBusinessRuleError("one_review_per_course", "user has already reviewed this course")
	}

	// The author is always the authenticated caller
	review := &models.Review{
		CourseID: req.CourseID,
		UserID:   authorID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	if err := s.repo.Review().Create(ctx, s.db, review); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewBusinessRuleError("one_review_per_course", "user has already reviewed this course")
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review created successfully", "review_id", review.ID, "course_id", req.CourseID)

	return s.buildReviewResponse(ctx, review, authorID), nil
}

func (s *reviewService) GetByID(ctx context.Context, id uint, userID string) (*ReviewResponse, error) {
	review, err := s.repo.Review().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return s.buildReviewResponse(ctx, review, userID), nil
}

func (s *reviewService) Update(ctx context.Context, id uint, req *UpdateReviewRequest, userID string) (*ReviewResponse, error) {
	s.logger.Info("Updating review", "review_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.repo.Review().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	canEdit, err := s.canEditReview(ctx, review, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "review", "update", "not review author or insufficient permissions")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.repo.Review().Update(ctx, s.db, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.logger.Info("Review updated successfully", "review_id", id)

	return s.buildReviewResponse(ctx, review, userID), nil
}

func (s *reviewService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting review", "review_id", id, "user_id", userID)

	review, err := s.repo.Review().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	canEdit, err := s.canEditReview(ctx, review, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "review", "delete", "not review author or insufficient permissions")
	}

	if err := s.repo.Review().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.logger.Info("Review deleted successfully", "review_id", id)
	return nil
}

// ===== LIST OPERATIONS =====

func (s *reviewService) List(ctx context.Context, filters repositories.ReviewFilters, userID string) (*ReviewListResponse, error) {
	reviews, total, err := s.repo.Review().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	response := &ReviewListResponse{
		Reviews: make([]*ReviewResponse, len(reviews)),
		Total:   total,
		Page:    (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:    filters.Limit,
	}

	for i, review := range reviews {
		response.Reviews[i] = s.buildReviewResponse(ctx, review, userID)
	}

	return response, nil
}

func (s *reviewService) GetByCourse(ctx context.Context, courseID uint, userID string) (*ReviewListResponse, error) {
	filters := repositories.ReviewFilters{CourseID: &courseID}
	return s.List(ctx, filters, userID)
}

// ===== PERMISSION CHECKS =====

func (s *reviewService) CanEdit(ctx context.Context, reviewID uint, userID string) (bool, error) {
	review, err := s.repo.Review().GetByID(ctx, s.db, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return s.canEditReview(ctx, review, userID)
}

// canEditReview: the author or an admin
func (s *reviewService) canEditReview(ctx context.Context, review *models.Review, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	if review.OwnerID() == userID {
		return true, nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	return user.IsAdmin(), nil
}

func (s *reviewService) buildReviewResponse(ctx context.Context, review *models.Review, userID string) *ReviewResponse {
	response := &ReviewResponse{
		Review: review,
	}

	canEdit, _ := s.canEditReview(ctx, review, userID)
	response.CanEdit = canEdit
	response.CanDelete = canEdit

	return response
}
