package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/cache"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

type LessonPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewLessonPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LessonPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// Create creates a new lesson and invalidates the course stats cache
func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	l.invalidateStatsCache(ctx, lesson.CourseID)

	return nil
}

// GetByID retrieves a lesson by ID
func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	db := l.getDB(tx)
	var lesson models.Lesson
	if err := db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// Update updates a lesson
func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	l.invalidateStatsCache(ctx, lesson.CourseID)

	return nil
}

// Delete deletes a lesson and invalidates the course stats cache
func (l *LessonPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := l.getDB(tx)

	var lesson models.Lesson
	if err := db.WithContext(ctx).Select("id, course_id").First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lesson not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get lesson before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Lesson{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	l.invalidateStatsCache(ctx, lesson.CourseID)

	return nil
}

// List retrieves lessons with filtering and pagination
func (l *LessonPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	db := l.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Lesson{})

	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	if filters.InstructorID != nil {
		ownedCourses := db.WithContext(ctx).
			Model(&models.Course{}).
			Select("id").
			Where("instructor_id = ?", *filters.InstructorID)
		query = query.Where("course_id IN (?)", ownedCourses)
	}

	if filters.EnrolledStudent != nil {
		enrolledCourses := db.WithContext(ctx).
			Model(&models.Enrollment{}).
			Select("course_id").
			Where("student_id = ? AND status IN ?", *filters.EnrolledStudent, []models.EnrollmentStatus{models.EnrollmentActive, models.EnrollmentCompleted})
		publishedCourses := db.WithContext(ctx).
			Model(&models.Course{}).
			Select("id").
			Where("is_published = ?", true)
		query = query.Where("course_id IN (?) AND course_id IN (?)", enrolledCourses, publishedCourses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "order"
	}
	query = l.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var lessons []*models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}

	return lessons, total, nil
}

// GetByCourse retrieves all lessons of a course in display order
func (l *LessonPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error) {
	db := l.getDB(tx)
	var lessons []*models.Lesson
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("\"order\" ASC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to get course lessons: %w", err)
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) invalidateStatsCache(ctx context.Context, courseID uint) {
	cache.SafeDelete(ctx, l.cacheManager.Stats, fmt.Sprintf("course:%d", courseID))
	cache.SafeDelete(ctx, l.cacheManager.Course, fmt.Sprintf("details:%d", courseID))
}

// ExistsByOrder checks if a lesson already occupies the order slot in a course
func (l *LessonPostgreSQL) ExistsByOrder(ctx context.Context, tx *gorm.DB, courseID uint, order int, excludeID *uint) (bool, error) {
	db := l.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ? AND \"order\" = ?", courseID, order)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check lesson order: %w", err)
	}

	return count > 0, nil
}
