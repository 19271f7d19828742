package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/learnhub/lms-service/internal/models"
)

func TestExportService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env, "admin-1", models.RoleAdmin)
	seedUser(t, env, "instructor-1", models.RoleInstructor)
	seedUser(t, env, "student-1", models.RoleStudent)
	course := seedCourse(t, env, "instructor-1", "exported-course", true)

	if _, err := env.enrollments.Enroll(ctx, course.ID, "student-1"); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	t.Run("exports require admin", func(t *testing.T) {
		if _, err := env.exports.ExportUsers(ctx, "instructor-1"); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
		if _, err := env.exports.ExportCourses(ctx, ""); !IsPermissionError(err) {
			t.Errorf("Expected permission error for anonymous, got %v", err)
		}
	})

	t.Run("user export contains all accounts", func(t *testing.T) {
		data, err := env.exports.ExportUsers(ctx, "admin-1")
		if err != nil {
			t.Fatalf("ExportUsers failed: %v", err)
		}

		rows := readSheetRows(t, data, "Users")
		// Header plus three accounts
		if len(rows) != 4 {
			t.Errorf("Expected 4 rows, got %d", len(rows))
		}
	})

	t.Run("course export is a readable workbook", func(t *testing.T) {
		data, err := env.exports.ExportCourses(ctx, "admin-1")
		if err != nil {
			t.Fatalf("ExportCourses failed: %v", err)
		}

		rows := readSheetRows(t, data, "Courses")
		if len(rows) != 2 {
			t.Fatalf("Expected header plus 1 course, got %d rows", len(rows))
		}
		if rows[1][1] != course.Title {
			t.Errorf("Expected course title %q, got %q", course.Title, rows[1][1])
		}
	})

	t.Run("enrollment export is scoped to one course", func(t *testing.T) {
		data, err := env.exports.ExportEnrollments(ctx, course.ID, "admin-1")
		if err != nil {
			t.Fatalf("ExportEnrollments failed: %v", err)
		}

		rows := readSheetRows(t, data, "Course exported-course")
		if len(rows) != 2 {
			t.Fatalf("Expected header plus 1 enrollment, got %d rows", len(rows))
		}
		if rows[1][1] != "student-1" {
			t.Errorf("Expected student-1 in roster, got %q", rows[1][1])
		}
	})

	t.Run("enrollment export on unknown course", func(t *testing.T) {
		_, err := env.exports.ExportEnrollments(ctx, 9999, "admin-1")
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected course not found, got %v", err)
		}
	})
}

func readSheetRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("Failed to read sheet %q: %v", sheet, err)
	}
	return rows
}
