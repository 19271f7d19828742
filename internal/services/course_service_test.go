package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

func TestCourseService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)

	t.Run("instructor creates draft course", func(t *testing.T) {
		req := &CreateCourseRequest{
			Title:       "Go for Backend Engineers",
			Slug:        "go-for-backend-engineers",
			Description: "Build production services in Go",
			Price:       79.99,
		}

		resp, err := env.courses.Create(ctx, req, "instructor-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.IsPublished {
			t.Error("Expected new course to start unpublished")
		}
		if resp.InstructorID != "instructor-1" {
			t.Errorf("Expected instructor-1 as owner, got %s", resp.InstructorID)
		}
		if !resp.CanEdit {
			t.Error("Expected owner to be able to edit")
		}
	})

	t.Run("student cannot create courses", func(t *testing.T) {
		req := &CreateCourseRequest{
			Title:       "Unauthorized Course",
			Slug:        "unauthorized-course",
			Description: "Should never exist",
			Price:       10,
		}

		_, err := env.courses.Create(ctx, req, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		req := &CreateCourseRequest{
			Title:       "Go for Backend Engineers Again",
			Slug:        "go-for-backend-engineers",
			Description: "Same slug as an existing course",
			Price:       20,
		}

		_, err := env.courses.Create(ctx, req, "instructor-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Fatalf("Expected business rule error, got %v", err)
		}
		if bre.Rule != "unique_slug" {
			t.Errorf("Expected unique_slug rule, got %s", bre.Rule)
		}
	})

	t.Run("discount above price is rejected", func(t *testing.T) {
		discount := 100.0
		req := &CreateCourseRequest{
			Title:         "Discounted Course",
			Slug:          "discounted-course",
			Description:   "Discount exceeds price",
			Price:         50,
			DiscountPrice: &discount,
		}

		_, err := env.courses.Create(ctx, req, "instructor-1")
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Expected validation errors, got %v", err)
		}
	})
}

func TestCourseService_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "instructor-2", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)

	draft := seedCourse(t, env, "instructor-1", "draft-course", false)
	published := seedCourse(t, env, "instructor-1", "published-course", true)
	seedCourse(t, env, "instructor-2", "other-published", true)

	t.Run("draft hidden from anonymous", func(t *testing.T) {
		_, err := env.courses.GetByID(ctx, draft.ID, "")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})

	t.Run("draft hidden from students", func(t *testing.T) {
		_, err := env.courses.GetByID(ctx, draft.ID, "student-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})

	t.Run("draft visible to owner", func(t *testing.T) {
		resp, err := env.courses.GetByID(ctx, draft.ID, "instructor-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !resp.CanEdit || !resp.CanDelete {
			t.Error("Expected owner to have edit and delete permissions")
		}
	})

	t.Run("draft visible to admin", func(t *testing.T) {
		if _, err := env.courses.GetByID(ctx, draft.ID, "admin-1"); err != nil {
			t.Errorf("Expected admin to see draft, got %v", err)
		}
	})

	t.Run("draft hidden from other instructors", func(t *testing.T) {
		_, err := env.courses.GetByID(ctx, draft.ID, "instructor-2")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})

	t.Run("published course open to everyone", func(t *testing.T) {
		resp, err := env.courses.GetByID(ctx, published.ID, "")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.CanEnroll {
			t.Error("Anonymous visitors cannot enroll")
		}

		resp, err = env.courses.GetByID(ctx, published.ID, "student-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !resp.CanEnroll {
			t.Error("Expected student to be able to enroll in a published course")
		}

		resp, err = env.courses.GetByID(ctx, published.ID, "instructor-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.CanEnroll {
			t.Error("Owners cannot enroll in their own course")
		}
	})

	t.Run("list reflects caller role", func(t *testing.T) {
		filters := repositories.CourseFilters{Limit: 50}

		anon, err := env.courses.List(ctx, filters, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if anon.Total != 2 {
			t.Errorf("Expected 2 published courses for anonymous, got %d", anon.Total)
		}

		admin, err := env.courses.List(ctx, filters, "admin-1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if admin.Total != 3 {
			t.Errorf("Expected admin to see all 3 courses, got %d", admin.Total)
		}

		own, err := env.courses.List(ctx, filters, "instructor-1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if own.Total != 2 {
			t.Errorf("Expected instructor to see only own courses, got %d", own.Total)
		}
		for _, c := range own.Courses {
			if c.InstructorID != "instructor-1" {
				t.Errorf("Instructor saw foreign course %d", c.ID)
			}
		}
	})

	t.Run("instructor catalog hides drafts from others", func(t *testing.T) {
		filters := repositories.CourseFilters{Limit: 50}

		page, err := env.courses.GetByInstructor(ctx, "instructor-1", filters, "student-1")
		if err != nil {
			t.Fatalf("GetByInstructor failed: %v", err)
		}
		if page.Total != 1 {
			t.Errorf("Expected 1 published course for a student, got %d", page.Total)
		}
		for _, c := range page.Courses {
			if !c.IsPublished {
				t.Errorf("Draft course %q leaked to a student", c.Slug)
			}
		}

		anon, err := env.courses.GetByInstructor(ctx, "instructor-1", filters, "")
		if err != nil {
			t.Fatalf("GetByInstructor failed: %v", err)
		}
		if anon.Total != 1 {
			t.Errorf("Expected 1 published course for anonymous, got %d", anon.Total)
		}

		other, err := env.courses.GetByInstructor(ctx, "instructor-1", filters, "instructor-2")
		if err != nil {
			t.Fatalf("GetByInstructor failed: %v", err)
		}
		if other.Total != 1 {
			t.Errorf("Expected other instructors to see published only, got %d", other.Total)
		}

		own, err := env.courses.GetByInstructor(ctx, "instructor-1", filters, "instructor-1")
		if err != nil {
			t.Fatalf("GetByInstructor failed: %v", err)
		}
		if own.Total != 2 {
			t.Errorf("Expected owner to see drafts too, got %d", own.Total)
		}

		admin, err := env.courses.GetByInstructor(ctx, "instructor-1", filters, "admin-1")
		if err != nil {
			t.Fatalf("GetByInstructor failed: %v", err)
		}
		if admin.Total != 2 {
			t.Errorf("Expected admin to see drafts too, got %d", admin.Total)
		}
	})
}

func TestCourseService_PublishLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "lifecycle-course", false)

	t.Run("student cannot publish", func(t *testing.T) {
		_, err := env.courses.Publish(ctx, course.ID, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("owner publishes and event fires once", func(t *testing.T) {
		env.publisher.ClearEvents()

		resp, err := env.courses.Publish(ctx, course.ID, "instructor-1")
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if !resp.IsPublished {
			t.Error("Expected course to be published")
		}

		// Repeating the current state is a no-op.
		if _, err := env.courses.Publish(ctx, course.ID, "instructor-1"); err != nil {
			t.Fatalf("Second publish failed: %v", err)
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected exactly 1 event, got %d", len(published))
		}
		event := published[0]
		if event.Type != events.EventCoursePublished {
			t.Errorf("Expected %s event, got %s", events.EventCoursePublished, event.Type)
		}
		if event.ID == "" || event.Source != "lms-service" {
			t.Errorf("Malformed event envelope: id=%q source=%q", event.ID, event.Source)
		}
	})

	t.Run("owner unpublishes", func(t *testing.T) {
		env.publisher.ClearEvents()

		resp, err := env.courses.Unpublish(ctx, course.ID, "instructor-1")
		if err != nil {
			t.Fatalf("Unpublish failed: %v", err)
		}
		if resp.IsPublished {
			t.Error("Expected course to be unpublished")
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventCourseUnpublished {
			t.Fatalf("Expected one %s event, got %v", events.EventCourseUnpublished, published)
		}
	})
}

func TestCourseService_UpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "instructor-2", models.RoleInstructor)
	course := seedCourse(t, env, "instructor-1", "owned-course", true)

	t.Run("non-owner cannot update", func(t *testing.T) {
		title := "Hijacked"
		_, err := env.courses.Update(ctx, course.ID, &UpdateCourseRequest{Title: &title}, "instructor-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("owner updates fields", func(t *testing.T) {
		title := "Owned Course Revised"
		description := "Reworked outline"
		price := 79.99
		discount := 59.99
		req := &UpdateCourseRequest{
			Title:         &title,
			Description:   &description,
			Price:         &price,
			DiscountPrice: &discount,
			Tags:          []string{"go", "backend"},
		}

		resp, err := env.courses.Update(ctx, course.ID, req, "instructor-1")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Title != title {
			t.Errorf("Expected updated title, got %s", resp.Title)
		}
		if resp.Description != description {
			t.Errorf("Expected updated description, got %s", resp.Description)
		}
		if resp.Price != price {
			t.Errorf("Expected updated price, got %v", resp.Price)
		}
		if resp.DiscountPrice == nil || *resp.DiscountPrice != discount {
			t.Errorf("Expected updated discount price, got %v", resp.DiscountPrice)
		}

		var tags []string
		if err := json.Unmarshal(resp.Tags, &tags); err != nil {
			t.Fatalf("Failed to decode tags: %v", err)
		}
		if len(tags) != 2 || tags[0] != "go" {
			t.Errorf("Expected updated tags, got %v", tags)
		}

		// Untouched fields survive a partial update
		if resp.Slug != "owned-course" {
			t.Errorf("Expected slug to be unchanged, got %s", resp.Slug)
		}
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		err := env.courses.Delete(ctx, course.ID, "instructor-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := env.courses.Delete(ctx, course.ID, "instructor-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, err := env.courses.GetByID(ctx, course.ID, "instructor-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found after delete, got %v", err)
		}
	})
}

func TestCourseService_ComputedStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	seedUser(t, env, "student-2", models.RoleStudent)

	course := seedCourse(t, env, "instructor-1", "rated-course", true)
	seedCourse(t, env, "instructor-1", "unrated-course", true)
	seedLesson(t, env, course.ID, 1)

	review := &CreateReviewRequest{CourseID: course.ID, Rating: 4, Comment: "Good pace"}
	if _, err := env.reviews.Create(ctx, review, "student-1"); err != nil {
		t.Fatalf("Review create failed: %v", err)
	}
	review = &CreateReviewRequest{CourseID: course.ID, Rating: 5, Comment: "Loved it"}
	if _, err := env.reviews.Create(ctx, review, "student-2"); err != nil {
		t.Fatalf("Review create failed: %v", err)
	}

	t.Run("single course carries aggregates", func(t *testing.T) {
		resp, err := env.courses.GetByID(ctx, course.ID, "")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.AverageRating != 4.5 {
			t.Errorf("Expected average rating 4.5, got %v", resp.AverageRating)
		}
		if resp.LessonsCount != 1 {
			t.Errorf("Expected 1 lesson, got %d", resp.LessonsCount)
		}
		if resp.ReviewsCount != 2 {
			t.Errorf("Expected 2 reviews, got %d", resp.ReviewsCount)
		}
	})

	t.Run("listing carries aggregates per course", func(t *testing.T) {
		page, err := env.courses.List(ctx, repositories.CourseFilters{Limit: 50}, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if page.Total != 2 {
			t.Fatalf("Expected 2 courses, got %d", page.Total)
		}

		bySlug := make(map[string]*CourseResponse, len(page.Courses))
		for _, c := range page.Courses {
			bySlug[c.Slug] = c
		}

		rated := bySlug["rated-course"]
		if rated == nil {
			t.Fatal("Missing rated course in listing")
		}
		if rated.AverageRating != 4.5 || rated.LessonsCount != 1 || rated.ReviewsCount != 2 {
			t.Errorf("Expected rating 4.5 with 1 lesson and 2 reviews, got %v/%d/%d",
				rated.AverageRating, rated.LessonsCount, rated.ReviewsCount)
		}

		unrated := bySlug["unrated-course"]
		if unrated == nil {
			t.Fatal("Missing unrated course in listing")
		}
		if unrated.AverageRating != 0 || unrated.LessonsCount != 0 || unrated.ReviewsCount != 0 {
			t.Errorf("Expected zeroed aggregates, got %v/%d/%d",
				unrated.AverageRating, unrated.LessonsCount, unrated.ReviewsCount)
		}
	})
}
