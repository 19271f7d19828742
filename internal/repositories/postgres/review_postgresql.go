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

type ReviewPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewReviewPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ReviewRepository {
	return &ReviewPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ReviewPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create creates a new review and invalidates the course stats cache
func (r *ReviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	r.invalidateStatsCache(ctx, review.CourseID)

	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	db := r.getDB(tx)
	var review models.Review
	if err := db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// Update updates a review
func (r *ReviewPostgreSQL) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	r.invalidateStatsCache(ctx, review.CourseID)

	return nil
}

// Delete deletes a review
func (r *ReviewPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	var review models.Review
	if err := db.WithContext(ctx).Select("id, course_id").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("review not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get review before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	r.invalidateStatsCache(ctx, review.CourseID)

	return nil
}

// List retrieves reviews with filtering and pagination
func (r *ReviewPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	db := r.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Review{})

	query = r.helpers.ApplyReviewFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)

	var reviews []*models.Review
	if err := query.Preload("User").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

// GetByCourse retrieves all reviews of a course, newest first
func (r *ReviewPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Review, error) {
	db := r.getDB(tx)
	var reviews []*models.Review
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Preload("User").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get course reviews: %w", err)
	}
	return reviews, nil
}

// GetByUserAndCourse retrieves the single review a user left on a course
func (r *ReviewPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Review, error) {
	db := r.getDB(tx)
	var review models.Review
	if err := db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review not found for user %s on course %d: %w", userID, courseID, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// GetAverageRating returns the mean rating for a course, 0 when it has no reviews
func (r *ReviewPostgreSQL) GetAverageRating(ctx context.Context, tx *gorm.DB, courseID uint) (float64, error) {
	db := r.getDB(tx)
	var avg float64
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}
	return avg, nil
}

// ExistsByUserAndCourse checks if the user already reviewed the course
func (r *ReviewPostgreSQL) ExistsByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

func (r *ReviewPostgreSQL) invalidateStatsCache(ctx context.Context, courseID uint) {
	cache.SafeDelete(ctx, r.cacheManager.Stats, fmt.Sprintf("course:%d", courseID))
	cache.SafeDelete(ctx, r.cacheManager.Course, fmt.Sprintf("details:%d", courseID))
}
