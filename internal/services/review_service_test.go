package services

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/lms-service/internal/models"
)

func TestReviewService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	published := seedCourse(t, env, "instructor-1", "reviewed-course", true)
	draft := seedCourse(t, env, "instructor-1", "unreviewed-draft", false)

	t.Run("student reviews published course", func(t *testing.T) {
		req := &CreateReviewRequest{
			CourseID: published.ID,
			Rating:   4,
			Comment:  "Solid material, well paced",
		}

		resp, err := env.reviews.Create(ctx, req, "student-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.UserID != "student-1" {
			t.Errorf("Expected author student-1, got %s", resp.UserID)
		}
		if !resp.CanEdit {
			t.Error("Expected author to be able to edit own review")
		}
	})

	t.Run("second review on same course is rejected", func(t *testing.T) {
		req := &CreateReviewRequest{
			CourseID: published.ID,
			Rating:   5,
			Comment:  "Changed my mind, even better",
		}

		_, err := env.reviews.Create(ctx, req, "student-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Fatalf("Expected business rule error, got %v", err)
		}
		if bre.Rule != "one_review_per_course" {
			t.Errorf("Expected one_review_per_course rule, got %s", bre.Rule)
		}
	})

	t.Run("draft course cannot be reviewed", func(t *testing.T) {
		req := &CreateReviewRequest{
			CourseID: draft.ID,
			Rating:   3,
			Comment:  "Should not be possible",
		}

		_, err := env.reviews.Create(ctx, req, "student-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})

	t.Run("out of range rating is rejected", func(t *testing.T) {
		req := &CreateReviewRequest{
			CourseID: published.ID,
			Rating:   6,
			Comment:  "Too enthusiastic",
		}

		_, err := env.reviews.Create(ctx, req, "student-1")
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Expected validation errors, got %v", err)
		}
	})
}

func TestReviewService_AverageRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	seedUser(t, env, "student-2", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "rated-course", true)

	t.Run("no reviews reads as zero", func(t *testing.T) {
		stats, err := env.courses.GetStats(ctx, course.ID, "student-1")
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if stats.AverageRating != 0 {
			t.Errorf("Expected 0 average without reviews, got %f", stats.AverageRating)
		}
	})

	t.Run("average over all reviews", func(t *testing.T) {
		for _, r := range []struct {
			author string
			rating int
		}{
			{"student-1", 5},
			{"student-2", 2},
		} {
			req := &CreateReviewRequest{CourseID: course.ID, Rating: r.rating, Comment: "rated"}
			if _, err := env.reviews.Create(ctx, req, r.author); err != nil {
				t.Fatalf("Create review failed: %v", err)
			}
		}

		stats, err := env.courses.GetStats(ctx, course.ID, "student-1")
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if stats.AverageRating != 3.5 {
			t.Errorf("Expected 3.5 average, got %f", stats.AverageRating)
		}
		if stats.ReviewsCount != 2 {
			t.Errorf("Expected 2 reviews counted, got %d", stats.ReviewsCount)
		}
	})
}

func TestReviewService_UpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	seedUser(t, env, "student-2", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "moderated-course", true)

	review, err := env.reviews.Create(ctx, &CreateReviewRequest{
		CourseID: course.ID,
		Rating:   2,
		Comment:  "Needs work",
	}, "student-1")
	if err != nil {
		t.Fatalf("Create review failed: %v", err)
	}

	t.Run("only the author edits", func(t *testing.T) {
		rating := 4
		_, err := env.reviews.Update(ctx, review.ID, &UpdateReviewRequest{Rating: &rating}, "student-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}

		resp, err := env.reviews.Update(ctx, review.ID, &UpdateReviewRequest{Rating: &rating}, "student-1")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Rating != 4 {
			t.Errorf("Expected rating 4, got %d", resp.Rating)
		}
	})

	t.Run("admin moderates", func(t *testing.T) {
		if err := env.reviews.Delete(ctx, review.ID, "admin-1"); err != nil {
			t.Fatalf("Admin delete failed: %v", err)
		}
		_, err := env.reviews.GetByID(ctx, review.ID, "admin-1")
		if !errors.Is(err, ErrReviewNotFound) {
			t.Errorf("Expected review not found after delete, got %v", err)
		}
	})
}
