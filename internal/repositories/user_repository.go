package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
)

// UserRepository interface for identity operations. Account provisioning and
// credentials live in the external identity provider; this repository owns
// the local projection (profile fields, role).
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	GetByRole(ctx context.Context, role models.UserRole, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	// Role management
	UpdateRole(ctx context.Context, id string, role models.UserRole) error

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}

// AddressRepository interface for the user-scoped address collection
type AddressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, address *models.Address) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Address, error)
	Update(ctx context.Context, tx *gorm.DB, address *models.Address) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Parent-scoped listing
	GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Address, error)
}
