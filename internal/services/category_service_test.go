package services

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/lms-service/internal/models"
)

func TestCategoryService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)

	t.Run("mutations require admin", func(t *testing.T) {
		req := &CreateCategoryRequest{Name: "Programming", Slug: "programming"}
		if _, err := env.categories.Create(ctx, req, "instructor-1"); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
		if _, err := env.categories.Create(ctx, req, ""); !IsPermissionError(err) {
			t.Errorf("Expected permission error for anonymous, got %v", err)
		}
	})

	var categoryID uint

	t.Run("admin creates category", func(t *testing.T) {
		category, err := env.categories.Create(ctx, &CreateCategoryRequest{
			Name: "Programming",
			Slug: "programming",
		}, "admin-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		categoryID = category.ID

		_, err = env.categories.Create(ctx, &CreateCategoryRequest{
			Name: "Programming Again",
			Slug: "programming",
		}, "admin-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "unique_slug" {
			t.Errorf("Expected unique_slug violation, got %v", err)
		}
	})

	t.Run("reads are public", func(t *testing.T) {
		if _, err := env.categories.GetByID(ctx, categoryID); err != nil {
			t.Errorf("GetByID failed: %v", err)
		}

		categories, err := env.categories.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(categories) != 1 {
			t.Errorf("Expected 1 category, got %d", len(categories))
		}
	})

	t.Run("admin renames category", func(t *testing.T) {
		name := "Software Engineering"
		category, err := env.categories.Update(ctx, categoryID, &UpdateCategoryRequest{Name: &name}, "admin-1")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if category.Name != name {
			t.Errorf("Expected renamed category, got %s", category.Name)
		}
	})

	t.Run("category with courses cannot be deleted", func(t *testing.T) {
		course := &models.Course{
			Title:        "Categorised Course",
			Slug:         "categorised-course",
			Description:  "Holds the category in use",
			InstructorID: "instructor-1",
			CategoryID:   &categoryID,
			IsPublished:  true,
		}
		if err := env.repo.Course().Create(ctx, env.db, course); err != nil {
			t.Fatalf("Failed to seed course: %v", err)
		}

		err := env.categories.Delete(ctx, categoryID, "admin-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "category_in_use" {
			t.Errorf("Expected category_in_use violation, got %v", err)
		}

		if err := env.repo.Course().Delete(ctx, env.db, course.ID); err != nil {
			t.Fatalf("Failed to remove course: %v", err)
		}
		if err := env.categories.Delete(ctx, categoryID, "admin-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := env.categories.GetByID(ctx, categoryID); !errors.Is(err, ErrCategoryNotFound) {
			t.Errorf("Expected category not found after delete, got %v", err)
		}
	})
}
