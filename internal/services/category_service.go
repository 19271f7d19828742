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

type categoryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCategoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CategoryService {
	return &categoryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest, requesterID string) (*models.Category, error) {
	s.logger.Info("Creating category", "name", req.Name, "requester_id", requesterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, requesterID, "create"); err != nil {
		return nil, err
	}

	exists, err := s.repo.Category().ExistsBySlug(ctx, s.db, req.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", req.Slug))
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	if err := s.repo.Category().Create(ctx, s.db, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", req.Slug))
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created successfully", "category_id", category.ID)

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req *UpdateCategoryRequest, requesterID string) (*models.Category, error) {
	s.logger.Info("Updating category", "category_id", id, "requester_id", requesterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, requesterID, "update"); err != nil {
		return nil, err
	}

	category, err := s.repo.Category().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		exists, err := s.repo.Category().ExistsBySlug(ctx, s.db, *req.Slug, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check category slug: %w", err)
		}
		if exists {
			return nil, NewBusinessRuleError("unique_slug", fmt.Sprintf("slug %q is already taken", *req.Slug))
		}
		category.Slug = *req.Slug
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := s.repo.Category().Update(ctx, s.db, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated successfully", "category_id", id)

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint, requesterID string) error {
	s.logger.Info("Deleting category", "category_id", id, "requester_id", requesterID)

	if err := s.requireAdmin(ctx, requesterID, "delete"); err != nil {
		return err
	}

	// Courses keep their category until reassigned
	inUse, err := s.repo.Category().HasCourses(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return NewBusinessRuleError("category_in_use", "cannot delete a category that still has courses")
	}

	if err := s.repo.Category().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted successfully", "category_id", id)
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.Category().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) requireAdmin(ctx context.Context, requesterID, action string) error {
	if requesterID == "" {
		return NewPermissionError(requesterID, 0, "category", action, "admin role required")
	}

	user, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(requesterID, 0, "category", action, "admin role required")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsAdmin() {
		return NewPermissionError(requesterID, 0, "category", action, "admin role required")
	}

	return nil
}
