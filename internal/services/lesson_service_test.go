package services

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

func TestLessonService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "instructor-2", models.RoleInstructor)
	seedUser(t, env, "admin-1", models.RoleAdmin)
	course := seedCourse(t, env, "instructor-1", "lesson-host", true)

	t.Run("owner creates lesson", func(t *testing.T) {
		req := &CreateLessonRequest{
			CourseID: course.ID,
			Title:    "Introduction",
			Order:    1,
			Content:  "Welcome to the course",
		}

		resp, err := env.lessons.Create(ctx, req, "instructor-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !resp.CanEdit {
			t.Error("Expected owner to be able to edit the lesson")
		}
	})

	t.Run("duplicate order is rejected", func(t *testing.T) {
		req := &CreateLessonRequest{
			CourseID: course.ID,
			Title:    "Also First",
			Order:    1,
			Content:  "Colliding order",
		}

		_, err := env.lessons.Create(ctx, req, "instructor-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Fatalf("Expected business rule error, got %v", err)
		}
		if bre.Rule != "unique_order" {
			t.Errorf("Expected unique_order rule, got %s", bre.Rule)
		}
	})

	t.Run("non-owner instructor is rejected", func(t *testing.T) {
		req := &CreateLessonRequest{
			CourseID: course.ID,
			Title:    "Intrusion",
			Order:    5,
			Content:  "Should not land",
		}

		_, err := env.lessons.Create(ctx, req, "instructor-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("admin may manage any course", func(t *testing.T) {
		req := &CreateLessonRequest{
			CourseID: course.ID,
			Title:    "Admin Addendum",
			Order:    2,
			Content:  "Added by an administrator",
		}

		if _, err := env.lessons.Create(ctx, req, "admin-1"); err != nil {
			t.Errorf("Expected admin to create lessons, got %v", err)
		}
	})

	t.Run("missing course", func(t *testing.T) {
		req := &CreateLessonRequest{
			CourseID: 9999,
			Title:    "Orphan",
			Order:    1,
			Content:  "No parent",
		}

		_, err := env.lessons.Create(ctx, req, "instructor-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})
}

func TestLessonService_ContentGating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "instructor-2", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)

	published := seedCourse(t, env, "instructor-1", "gated-course", true)
	draft := seedCourse(t, env, "instructor-1", "gated-draft", false)
	other := seedCourse(t, env, "instructor-2", "other-course", true)
	lesson := seedLesson(t, env, published.ID, 1)
	seedLesson(t, env, published.ID, 2)
	draftLesson := seedLesson(t, env, draft.ID, 1)
	seedLesson(t, env, other.ID, 1)

	t.Run("anonymous sees no lesson content", func(t *testing.T) {
		_, err := env.lessons.GetByID(ctx, lesson.ID, "")
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("Expected lesson not found, got %v", err)
		}

		page, err := env.lessons.GetByCourse(ctx, published.ID, "")
		if err != nil {
			t.Fatalf("GetByCourse failed: %v", err)
		}
		if page.Total != 0 || len(page.Lessons) != 0 {
			t.Errorf("Expected empty page for anonymous, got total %d", page.Total)
		}
	})

	t.Run("unenrolled student sees empty page", func(t *testing.T) {
		page, err := env.lessons.GetByCourse(ctx, published.ID, "student-1")
		if err != nil {
			t.Fatalf("GetByCourse failed: %v", err)
		}
		if page.Total != 0 {
			t.Errorf("Expected empty page before enrollment, got total %d", page.Total)
		}
	})

	t.Run("enrolled student sees lessons", func(t *testing.T) {
		if _, err := env.enrollments.Enroll(ctx, published.ID, "student-1"); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}

		page, err := env.lessons.GetByCourse(ctx, published.ID, "student-1")
		if err != nil {
			t.Fatalf("GetByCourse failed: %v", err)
		}
		if page.Total != 2 {
			t.Errorf("Expected 2 lessons after enrollment, got %d", page.Total)
		}

		resp, err := env.lessons.GetByID(ctx, lesson.ID, "student-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if resp.CanEdit {
			t.Error("Students must not edit lessons")
		}
	})

	t.Run("draft content restricted to owner and admin", func(t *testing.T) {
		_, err := env.lessons.GetByID(ctx, draftLesson.ID, "student-1")
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("Expected lesson not found on draft course, got %v", err)
		}

		if _, err := env.lessons.GetByID(ctx, draftLesson.ID, "instructor-1"); err != nil {
			t.Errorf("Expected owner to read draft lesson, got %v", err)
		}
		if _, err := env.lessons.GetByID(ctx, draftLesson.ID, "admin-1"); err != nil {
			t.Errorf("Expected admin to read draft lesson, got %v", err)
		}
	})

	t.Run("unscoped listing follows caller role", func(t *testing.T) {
		page, err := env.lessons.List(ctx, repositories.LessonFilters{}, "admin-1")
		if err != nil {
			t.Fatalf("List failed for admin: %v", err)
		}
		if page.Total != 4 {
			t.Errorf("Expected admin to see all 4 lessons, got %d", page.Total)
		}

		page, err = env.lessons.List(ctx, repositories.LessonFilters{}, "instructor-1")
		if err != nil {
			t.Fatalf("List failed for instructor: %v", err)
		}
		if page.Total != 3 {
			t.Errorf("Expected instructor to see 3 own lessons, got %d", page.Total)
		}

		// Enrolled in the published course only: the draft and the other
		// instructor's course stay out.
		page, err = env.lessons.List(ctx, repositories.LessonFilters{}, "student-1")
		if err != nil {
			t.Fatalf("List failed for student: %v", err)
		}
		if page.Total != 2 {
			t.Errorf("Expected student to see 2 enrolled lessons, got %d", page.Total)
		}

		page, err = env.lessons.List(ctx, repositories.LessonFilters{}, "")
		if err != nil {
			t.Fatalf("List failed for anonymous: %v", err)
		}
		if page.Total != 0 || len(page.Lessons) != 0 {
			t.Errorf("Expected empty unscoped page for anonymous, got total %d", page.Total)
		}
	})
}

func TestLessonService_UpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "editable-course", true)
	first := seedLesson(t, env, course.ID, 1)
	second := seedLesson(t, env, course.ID, 2)

	t.Run("reordering onto a taken slot is rejected", func(t *testing.T) {
		order := 1
		_, err := env.lessons.Update(ctx, second.ID, &UpdateLessonRequest{Order: &order}, "instructor-1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) || bre.Rule != "unique_order" {
			t.Errorf("Expected unique_order violation, got %v", err)
		}
	})

	t.Run("owner updates content", func(t *testing.T) {
		content := "Revised lesson body"
		resp, err := env.lessons.Update(ctx, first.ID, &UpdateLessonRequest{Content: &content}, "instructor-1")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Content != content {
			t.Errorf("Expected updated content, got %q", resp.Content)
		}
	})

	t.Run("student cannot delete", func(t *testing.T) {
		err := env.lessons.Delete(ctx, first.ID, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := env.lessons.Delete(ctx, second.ID, "instructor-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, err := env.lessons.GetByID(ctx, second.ID, "instructor-1")
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("Expected lesson not found after delete, got %v", err)
		}
	})
}
