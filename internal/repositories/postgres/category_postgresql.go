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

type CategoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CategoryRepository {
	return &CategoryPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CategoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create creates a new category
func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Category, "list:*")

	return nil
}

// GetByID retrieves a category by ID with caching
func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var category models.Category

	err := c.cacheManager.Category.CacheOrExecute(ctx, cacheKey, &category, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		var dbCategory models.Category
		if err := db.WithContext(ctx).First(&dbCategory, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("category not found with ID %d: %w", id, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		return &dbCategory, nil
	})

	if err != nil {
		return nil, err
	}

	return &category, nil
}

// GetBySlug retrieves a category by its slug
func (c *CategoryPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error) {
	db := c.getDB(tx)
	var category models.Category
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found with slug %s: %w", slug, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return &category, nil
}

// Update updates a category
func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, category.ID)

	return nil
}

// Delete deletes a category
func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, id)

	return nil
}

// List retrieves all categories ordered by name
func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	db := c.getDB(tx)
	var categories []*models.Category
	if err := db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ExistsBySlug checks if a category exists with the given slug
func (c *CategoryPostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}

	return count > 0, nil
}

// HasCourses checks if any course references the category
func (c *CategoryPostgreSQL) HasCourses(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := c.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category usage: %w", err)
	}
	return count > 0, nil
}
