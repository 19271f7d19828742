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

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new course and invalidates list caches
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, fmt.Sprintf("instructor:%s:*", course.InstructorID))
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")

	return nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("course not found with ID %d: %w", id, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &dbCourse, nil
	})

	if err != nil {
		return nil, err
	}

	// Aggregates are attached outside the cache so a cached course never
	// carries stale rating or lesson counts.
	if err := c.attachComputedFields(ctx, db, &course); err != nil {
		return nil, err
	}

	return &course, nil
}

// GetByIDWithDetails retrieves a course with instructor, category, lessons and reviews
func (c *CoursePostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).
		Preload("Instructor").
		Preload("Category").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Reviews.User").
		First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get course with details: %w", err)
	}

	if err := c.attachComputedFields(ctx, db, &course); err != nil {
		return nil, err
	}

	return &course, nil
}

// GetBySlug retrieves a course by its slug
func (c *CoursePostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found with slug %s: %w", slug, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}
	return &course, nil
}

// Update updates a course
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.InstructorID)

	return nil
}

// Delete soft deletes a course
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)

	// Get course info before deleting for cache invalidation
	var course models.Course
	if err := db.WithContext(ctx).Select("id, instructor_id").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get course before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.InstructorID)

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves courses with filtering and pagination
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{})

	// Apply filters
	query = c.helpers.ApplyCourseFilters(query, filters)

	// Count total records
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	// Apply pagination and sorting
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var courses []*models.Course
	if err := query.Preload("Instructor").Preload("Category").Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	if err := c.attachComputedFieldsBatch(ctx, db, courses); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// GetByInstructor retrieves courses owned by a specific instructor
func (c *CoursePostgreSQL) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	filters.InstructorID = &instructorID
	return c.List(ctx, tx, filters)
}

// Search retrieves courses matching the query in title or description
func (c *CoursePostgreSQL) Search(ctx context.Context, tx *gorm.DB, searchQuery string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{})

	query = c.helpers.ApplyCourseFilters(query, filters)

	if searchQuery != "" {
		pattern := "%" + searchQuery + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var courses []*models.Course
	if err := query.Preload("Instructor").Preload("Category").Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search courses: %w", err)
	}

	if err := c.attachComputedFieldsBatch(ctx, db, courses); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// ===== PUBLISH STATE =====

// SetPublished flips the publish flag for a course
func (c *CoursePostgreSQL) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	db := c.getDB(tx)

	var course models.Course
	if err := db.WithContext(ctx).Select("id, instructor_id").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get course before publish change: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Update("is_published", published).Error; err != nil {
		return fmt.Errorf("failed to update publish state: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.InstructorID)

	return nil
}

// ===== STATISTICS =====

// GetCourseStats retrieves aggregated statistics for a course with caching
func (c *CoursePostgreSQL) GetCourseStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.CourseStats, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("course:%d", id)
	var stats repositories.CourseStats

	err := c.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return c.computeCourseStats(ctx, db, id)
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (c *CoursePostgreSQL) computeCourseStats(ctx context.Context, db *gorm.DB, id uint) (*repositories.CourseStats, error) {
	stats := &repositories.CourseStats{}

	// Empty review set yields 0, not NULL
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("course_id = ?", id).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}

	lessons, err := c.helpers.CountLessons(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}
	stats.LessonsCount = int(lessons)

	reviews, err := c.helpers.CountReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	stats.ReviewsCount = int(reviews)

	enrollments, err := c.helpers.CountCountedEnrollments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	stats.EnrollmentsCount = int(enrollments)

	return stats, nil
}

// GetInstructorStats aggregates statistics across an instructor's courses
func (c *CoursePostgreSQL) GetInstructorStats(ctx context.Context, tx *gorm.DB, instructorID string) (*repositories.InstructorStats, error) {
	db := c.getDB(tx)
	stats := &repositories.InstructorStats{}

	var total, published int64
	base := db.WithContext(ctx).Model(&models.Course{}).Where("instructor_id = ?", instructorID)
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor courses: %w", err)
	}
	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("instructor_id = ? AND is_published = ?", instructorID, true).
		Count(&published).Error; err != nil {
		return nil, fmt.Errorf("failed to count published courses: %w", err)
	}
	stats.TotalCourses = int(total)
	stats.PublishedCourses = int(published)

	courseSubquery := db.WithContext(ctx).
		Model(&models.Course{}).
		Select("id").
		Where("instructor_id = ?", instructorID)

	var lessons int64
	if err := db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id IN (?)", courseSubquery).
		Count(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor lessons: %w", err)
	}
	stats.TotalLessons = int(lessons)

	var reviews int64
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("course_id IN (?)", courseSubquery).
		Count(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor reviews: %w", err)
	}
	stats.TotalReviews = int(reviews)

	var enrollments int64
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id IN (?) AND status IN ?", courseSubquery, []models.EnrollmentStatus{models.EnrollmentActive, models.EnrollmentCompleted}).
		Count(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor enrollments: %w", err)
	}
	stats.TotalEnrollments = int(enrollments)

	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("course_id IN (?)", courseSubquery).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, fmt.Errorf("failed to compute instructor rating: %w", err)
	}

	return stats, nil
}

// attachComputedFields fills the transient rating and count fields on a course
func (c *CoursePostgreSQL) attachComputedFields(ctx context.Context, db *gorm.DB, course *models.Course) error {
	stats, err := c.GetCourseStats(ctx, db, course.ID)
	if err != nil {
		return err
	}
	course.AverageRating = stats.AverageRating
	course.LessonsCount = stats.LessonsCount
	course.ReviewsCount = stats.ReviewsCount
	return nil
}

// attachComputedFieldsBatch fills the transient fields for a whole result
// page with two grouped queries instead of per-course aggregates.
func (c *CoursePostgreSQL) attachComputedFieldsBatch(ctx context.Context, db *gorm.DB, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]uint, len(courses))
	byID := make(map[uint]*models.Course, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
		byID[course.ID] = course
	}

	var reviewRows []struct {
		CourseID      uint
		AverageRating float64
		ReviewsCount  int
	}
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("course_id IN ?", ids).
		Select("course_id, COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS reviews_count").
		Group("course_id").
		Scan(&reviewRows).Error; err != nil {
		return fmt.Errorf("failed to aggregate course ratings: %w", err)
	}
	for _, row := range reviewRows {
		if course, ok := byID[row.CourseID]; ok {
			course.AverageRating = row.AverageRating
			course.ReviewsCount = row.ReviewsCount
		}
	}

	var lessonRows []struct {
		CourseID     uint
		LessonsCount int
	}
	if err := db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id IN ?", ids).
		Select("course_id, COUNT(*) AS lessons_count").
		Group("course_id").
		Scan(&lessonRows).Error; err != nil {
		return fmt.Errorf("failed to aggregate lesson counts: %w", err)
	}
	for _, row := range lessonRows {
		if course, ok := byID[row.CourseID]; ok {
			course.LessonsCount = row.LessonsCount
		}
	}

	return nil
}

// ===== VALIDATION AND CHECKS =====

// ExistsBySlug checks if a course exists with the given slug
func (c *CoursePostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Course{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check course slug: %w", err)
	}

	return count > 0, nil
}
