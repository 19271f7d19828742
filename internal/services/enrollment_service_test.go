package services

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

func TestEnrollmentService_Enroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	published := seedCourse(t, env, "instructor-1", "open-course", true)
	draft := seedCourse(t, env, "instructor-1", "closed-course", false)

	t.Run("student enrolls in published course", func(t *testing.T) {
		env.publisher.ClearEvents()

		resp, err := env.enrollments.Enroll(ctx, published.ID, "student-1")
		if err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		if resp.Status != models.EnrollmentActive {
			t.Errorf("Expected active enrollment, got %s", resp.Status)
		}
		if !resp.CanCancel {
			t.Error("Expected student to be able to cancel own active enrollment")
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventEnrollmentCreated {
			t.Fatalf("Expected one %s event, got %v", events.EventEnrollmentCreated, published)
		}
	})

	t.Run("double enrollment is rejected", func(t *testing.T) {
		_, err := env.enrollments.Enroll(ctx, published.ID, "student-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "already_enrolled" {
			t.Errorf("Expected already_enrolled violation, got %v", err)
		}
	})

	t.Run("draft course is not enrollable", func(t *testing.T) {
		_, err := env.enrollments.Enroll(ctx, draft.ID, "student-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})

	t.Run("owners cannot enroll in their own course", func(t *testing.T) {
		_, err := env.enrollments.Enroll(ctx, published.ID, "instructor-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "own_course" {
			t.Errorf("Expected own_course violation, got %v", err)
		}
	})
}

func TestEnrollmentService_WithdrawAndReenroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "revolving-course", true)

	first, err := env.enrollments.Enroll(ctx, course.ID, "student-1")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	t.Run("withdraw cancels and emits event", func(t *testing.T) {
		env.publisher.ClearEvents()

		if err := env.enrollments.Withdraw(ctx, course.ID, "student-1"); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}

		enrolled, err := env.enrollments.IsEnrolled(ctx, course.ID, "student-1")
		if err != nil {
			t.Fatalf("IsEnrolled failed: %v", err)
		}
		if enrolled {
			t.Error("Expected cancelled enrollment not to count")
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventEnrollmentCancelled {
			t.Fatalf("Expected one %s event, got %v", events.EventEnrollmentCancelled, published)
		}
	})

	t.Run("repeated withdraw is a no-op", func(t *testing.T) {
		if err := env.enrollments.Withdraw(ctx, course.ID, "student-1"); err != nil {
			t.Errorf("Expected idempotent withdraw, got %v", err)
		}
	})

	t.Run("re-enrolling reactivates the record", func(t *testing.T) {
		resp, err := env.enrollments.Enroll(ctx, course.ID, "student-1")
		if err != nil {
			t.Fatalf("Re-enroll failed: %v", err)
		}
		if resp.ID != first.ID {
			t.Errorf("Expected the original enrollment %d to be reactivated, got %d", first.ID, resp.ID)
		}
		if resp.Status != models.EnrollmentActive {
			t.Errorf("Expected active status, got %s", resp.Status)
		}
	})

	t.Run("withdraw from unknown course", func(t *testing.T) {
		err := env.enrollments.Withdraw(ctx, 9999, "student-1")
		if !errors.Is(err, ErrEnrollmentNotFound) {
			t.Errorf("Expected enrollment not found, got %v", err)
		}
	})
}

func TestEnrollmentService_Complete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	seedUser(t, env, "student-2", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "finishable-course", true)

	enrollment, err := env.enrollments.Enroll(ctx, course.ID, "student-1")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	t.Run("students cannot mark completion", func(t *testing.T) {
		_, err := env.enrollments.Complete(ctx, enrollment.ID, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("course owner completes", func(t *testing.T) {
		resp, err := env.enrollments.Complete(ctx, enrollment.ID, "instructor-1")
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if resp.Status != models.EnrollmentCompleted {
			t.Errorf("Expected completed status, got %s", resp.Status)
		}
	})

	t.Run("completed enrollment cannot be completed again", func(t *testing.T) {
		_, err := env.enrollments.Complete(ctx, enrollment.ID, "admin-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "inactive_enrollment" {
			t.Errorf("Expected inactive_enrollment violation, got %v", err)
		}
	})

	t.Run("withdrawing after completion is rejected", func(t *testing.T) {
		err := env.enrollments.Withdraw(ctx, course.ID, "student-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "completed_enrollment" {
			t.Errorf("Expected completed_enrollment violation, got %v", err)
		}
	})

	t.Run("completed enrollment still counts as enrolled", func(t *testing.T) {
		enrolled, err := env.enrollments.IsEnrolled(ctx, course.ID, "student-1")
		if err != nil {
			t.Fatalf("IsEnrolled failed: %v", err)
		}
		if !enrolled {
			t.Error("Expected completed enrollment to count")
		}
	})
}

func TestEnrollmentService_Queries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "instructor-2", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	seedUser(t, env, "student-2", models.RoleStudent)

	course := seedCourse(t, env, "instructor-1", "queried-course", true)
	other := seedCourse(t, env, "instructor-2", "other-queried", true)

	enrollment, err := env.enrollments.Enroll(ctx, course.ID, "student-1")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if _, err := env.enrollments.Enroll(ctx, other.ID, "student-2"); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	filters := repositories.EnrollmentFilters{Limit: 50}

	t.Run("students see only their own", func(t *testing.T) {
		resp, err := env.enrollments.List(ctx, filters, "student-1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 1 {
			t.Fatalf("Expected 1 enrollment, got %d", resp.Total)
		}
		if resp.Enrollments[0].StudentID != "student-1" {
			t.Errorf("Expected own enrollment, got %s", resp.Enrollments[0].StudentID)
		}
	})

	t.Run("admin sees all", func(t *testing.T) {
		resp, err := env.enrollments.List(ctx, filters, "admin-1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("Expected 2 enrollments, got %d", resp.Total)
		}
	})

	t.Run("instructor must scope to an owned course", func(t *testing.T) {
		scoped := filters
		scoped.CourseID = &course.ID

		resp, err := env.enrollments.List(ctx, scoped, "instructor-1")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 1 {
			t.Errorf("Expected 1 enrollment on own course, got %d", resp.Total)
		}

		foreign := filters
		foreign.CourseID = &other.ID
		if _, err := env.enrollments.List(ctx, foreign, "instructor-1"); !IsPermissionError(err) {
			t.Errorf("Expected permission error on foreign course, got %v", err)
		}
	})

	t.Run("enrollment reads are scoped", func(t *testing.T) {
		if _, err := env.enrollments.GetByID(ctx, enrollment.ID, "student-2"); !errors.Is(err, ErrEnrollmentNotFound) {
			t.Errorf("Expected foreign enrollment to read as absent, got %v", err)
		}
		if _, err := env.enrollments.GetByID(ctx, enrollment.ID, "student-1"); err != nil {
			t.Errorf("Expected owner read to succeed, got %v", err)
		}
		if _, err := env.enrollments.GetByID(ctx, enrollment.ID, "instructor-1"); err != nil {
			t.Errorf("Expected course owner read to succeed, got %v", err)
		}
	})
}
