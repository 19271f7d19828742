package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
)

// LessonRepository interface for lesson operations
type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters LessonFilters) ([]*models.Lesson, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error)

	// Validation and checks
	ExistsByOrder(ctx context.Context, tx *gorm.DB, courseID uint, order int, excludeID *uint) (bool, error)
}

// ReviewRepository interface for review operations
type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error)
	Update(ctx context.Context, tx *gorm.DB, review *models.Review) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters ReviewFilters) ([]*models.Review, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Review, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Review, error)

	// GetAverageRating returns the mean rating for a course, 0 when it has no reviews.
	GetAverageRating(ctx context.Context, tx *gorm.DB, courseID uint) (float64, error)

	// Validation and checks
	ExistsByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (bool, error)
}

// EnrollmentRepository interface for enrollment operations
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error)

	// IsEnrolled reports whether the student holds a counted (active or
	// completed) enrollment in the course.
	IsEnrolled(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (bool, error)
}
