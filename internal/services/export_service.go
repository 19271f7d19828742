package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

// exportPageSize bounds each repository page while streaming rows into the sheet
const exportPageSize = 500

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportCourses writes the full course catalog to an xlsx workbook
func (s *exportService) ExportCourses(ctx context.Context, requesterID string) ([]byte, error) {
	s.logger.Info("Exporting courses", "requester_id", requesterID)

	if err := s.requireAdmin(ctx, requesterID, "export_courses"); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Courses"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Title", "Slug", "Instructor", "Category", "Price", "Published", "Avg Rating", "Lessons", "Reviews", "Created At"}
	if err := s.writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	row := 2
	offset := 0
	for {
		filters := repositories.CourseFilters{Limit: exportPageSize, Offset: offset, SortBy: "id", SortOrder: "asc"}
		courses, total, err := s.repo.Course().List(ctx, s.db, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list courses for export: %w", err)
		}

		for _, course := range courses {
			stats, err := s.repo.Course().GetCourseStats(ctx, s.db, course.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to get stats for course %d: %w", course.ID, err)
			}

			categoryName := ""
			if course.Category != nil {
				categoryName = course.Category.Name
			}

			values := []interface{}{
				course.ID,
				course.Title,
				course.Slug,
				course.Instructor.FullName,
				categoryName,
				course.Price,
				course.IsPublished,
				stats.AverageRating,
				stats.LessonsCount,
				stats.ReviewsCount,
				course.CreatedAt.Format(time.RFC3339),
			}
			if err := s.writeRow(f, sheet, row, values); err != nil {
				return nil, err
			}
			row++
		}

		offset += len(courses)
		if int64(offset) >= total || len(courses) == 0 {
			break
		}
	}

	return s.workbookBytes(f)
}

// ExportUsers writes all user accounts to an xlsx workbook
func (s *exportService) ExportUsers(ctx context.Context, requesterID string) ([]byte, error) {
	s.logger.Info("Exporting users", "requester_id", requesterID)

	if err := s.requireAdmin(ctx, requesterID, "export_users"); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Users"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Full Name", "Email", "Role", "Email Verified", "Created At"}
	if err := s.writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	row := 2
	offset := 0
	for {
		filters := repositories.UserFilters{Limit: exportPageSize, Offset: offset}
		users, total, err := s.repo.User().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list users for export: %w", err)
		}

		for _, user := range users {
			values := []interface{}{
				user.ID,
				user.FullName,
				user.Email,
				string(user.Role),
				user.EmailVerified,
				user.CreatedAt.Format(time.RFC3339),
			}
			if err := s.writeRow(f, sheet, row, values); err != nil {
				return nil, err
			}
			row++
		}

		offset += len(users)
		if int64(offset) >= total || len(users) == 0 {
			break
		}
	}

	return s.workbookBytes(f)
}

// ExportEnrollments writes the roster of one course to an xlsx workbook
func (s *exportService) ExportEnrollments(ctx context.Context, courseID uint, requesterID string) ([]byte, error) {
	s.logger.Info("Exporting enrollments", "course_id", courseID, "requester_id", requesterID)

	if err := s.requireAdmin(ctx, requesterID, "export_enrollments"); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sanitizeSheetName(course.Title)
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Enrollment ID", "Student ID", "Status", "Enrolled At"}
	if err := s.writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	row := 2
	offset := 0
	for {
		filters := repositories.EnrollmentFilters{CourseID: &courseID, Limit: exportPageSize, Offset: offset}
		enrollments, total, err := s.repo.Enrollment().List(ctx, s.db, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollments for export: %w", err)
		}

		for _, enrollment := range enrollments {
			values := []interface{}{
				enrollment.ID,
				enrollment.StudentID,
				string(enrollment.Status),
				enrollment.EnrolledAt.Format(time.RFC3339),
			}
			if err := s.writeRow(f, sheet, row, values); err != nil {
				return nil, err
			}
			row++
		}

		offset += len(enrollments)
		if int64(offset) >= total || len(enrollments) == 0 {
			break
		}
	}

	return s.workbookBytes(f)
}

// ===== HELPER FUNCTIONS =====

func (s *exportService) requireAdmin(ctx context.Context, requesterID, action string) error {
	if requesterID == "" {
		return NewPermissionError(requesterID, 0, "export", action, "admin role required")
	}

	user, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(requesterID, 0, "export", action, "admin role required")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != models.RoleAdmin {
		return NewPermissionError(requesterID, 0, "export", action, "admin role required")
	}

	return nil
}

func (s *exportService) writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return nil
}

func (s *exportService) writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell: %w", err)
		}
	}
	return nil
}

func (s *exportService) workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeSheetName trims the course title to a valid Excel sheet name
func sanitizeSheetName(title string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-")
	name := replacer.Replace(title)
	if len(name) > 31 {
		name = name[:31]
	}
	if name == "" {
		name = "Enrollments"
	}
	return name
}
