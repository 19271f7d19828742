package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
)

// CategoryRepository interface for course category operations
type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)

	// Validation and checks
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)
	HasCourses(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

// CourseRepository interface for course-specific operations
type CourseRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) // Include instructor, category, lessons, reviews
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID string, filters CourseFilters) ([]*models.Course, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters CourseFilters) ([]*models.Course, int64, error)

	// Publish state
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error

	// Statistics
	GetCourseStats(ctx context.Context, tx *gorm.DB, id uint) (*CourseStats, error)
	GetInstructorStats(ctx context.Context, tx *gorm.DB, instructorID string) (*InstructorStats, error)

	// Validation and checks
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)
}
