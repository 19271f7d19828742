package repositories

import "context"

// Repository aggregates all entity repositories behind one dependency.
type Repository interface {
	// Identity domain
	User() UserRepository
	Address() AddressRepository

	// Catalog domain
	Category() CategoryRepository
	Course() CourseRepository
	Lesson() LessonRepository
	Review() ReviewRepository
	Enrollment() EnrollmentRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
