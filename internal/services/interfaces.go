package services

import (
	"context"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateLessonRequest = validator.LessonCreateRequest
type UpdateLessonRequest = validator.LessonUpdateRequest
type CreateReviewRequest = validator.ReviewCreateRequest
type UpdateReviewRequest = validator.ReviewUpdateRequest
type CreateCategoryRequest = validator.CategoryCreateRequest
type UpdateCategoryRequest = validator.CategoryUpdateRequest
type CreateAddressRequest = validator.AddressCreateRequest
type UpdateAddressRequest = validator.AddressUpdateRequest
type UpdateUserRequest = validator.UserUpdateRequest

type CourseResponse struct {
	*models.Course
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanEnroll bool `json:"can_enroll"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type LessonResponse struct {
	*models.Lesson
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type LessonListResponse struct {
	Lessons []*LessonResponse `json:"lessons"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type ReviewResponse struct {
	*models.Review
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type UserResponse struct {
	*models.User
	CanEdit bool `json:"can_edit"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type EnrollmentResponse struct {
	*models.Enrollment
	CanCancel bool `json:"can_cancel"`
}

type EnrollmentListResponse struct {
	Enrollments []*EnrollmentResponse `json:"enrollments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ===== SERVICE INTERFACES =====

type CourseService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateCourseRequest, instructorID string) (*CourseResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*CourseResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID string) (*CourseResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (*CourseResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error)
	GetByInstructor(ctx context.Context, instructorID string, filters repositories.CourseFilters, userID string) (*CourseListResponse, error)
	Search(ctx context.Context, query string, filters repositories.CourseFilters, userID string) (*CourseListResponse, error)

	// Publish state management
	Publish(ctx context.Context, id uint, userID string) (*CourseResponse, error)
	Unpublish(ctx context.Context, id uint, userID string) (*CourseResponse, error)

	// Statistics
	GetStats(ctx context.Context, id uint, userID string) (*repositories.CourseStats, error)
	GetInstructorStats(ctx context.Context, instructorID string, userID string) (*repositories.InstructorStats, error)

	// Permission checks
	CanAccess(ctx context.Context, courseID uint, userID string) (bool, error)
	CanEdit(ctx context.Context, courseID uint, userID string) (bool, error)
	CanDelete(ctx context.Context, courseID uint, userID string) (bool, error)
}

type LessonService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateLessonRequest, userID string) (*LessonResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*LessonResponse, error)
	Update(ctx context.Context, id uint, req *UpdateLessonRequest, userID string) (*LessonResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List operations
	List(ctx context.Context, filters repositories.LessonFilters, userID string) (*LessonListResponse, error)
	GetByCourse(ctx context.Context, courseID uint, userID string) (*LessonListResponse, error)

	// Permission checks
	CanAccess(ctx context.Context, lessonID uint, userID string) (bool, error)
	CanEdit(ctx context.Context, lessonID uint, userID string) (bool, error)
}

type ReviewService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateReviewRequest, authorID string) (*ReviewResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*ReviewResponse, error)
	Update(ctx context.Context, id uint, req *UpdateReviewRequest, userID string) (*ReviewResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List operations
	List(ctx context.Context, filters repositories.ReviewFilters, userID string) (*ReviewListResponse, error)
	GetByCourse(ctx context.Context, courseID uint, userID string) (*ReviewListResponse, error)

	// Permission checks
	CanEdit(ctx context.Context, reviewID uint, userID string) (bool, error)
}

type UserService interface {
	// Profile operations
	GetByID(ctx context.Context, id string, requesterID string) (*UserResponse, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest, requesterID string) (*UserResponse, error)
	Delete(ctx context.Context, id string, requesterID string) error

	// List operations (admin-wide, otherwise self only)
	List(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error)
	GetInstructors(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error)
	GetStudents(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error)

	// Role transitions (admin only, idempotent)
	MakeInstructor(ctx context.Context, id string, requesterID string) (*UserResponse, error)
	MakeStudent(ctx context.Context, id string, requesterID string) (*UserResponse, error)

	// Address management
	CreateAddress(ctx context.Context, userID string, req *CreateAddressRequest, requesterID string) (*models.Address, error)
	GetAddresses(ctx context.Context, userID string, requesterID string) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, addressID uint, req *UpdateAddressRequest, requesterID string) (*models.Address, error)
	DeleteAddress(ctx context.Context, addressID uint, requesterID string) error
}

type CategoryService interface {
	// Mutations are admin only
	Create(ctx context.Context, req *CreateCategoryRequest, requesterID string) (*models.Category, error)
	Update(ctx context.Context, id uint, req *UpdateCategoryRequest, requesterID string) (*models.Category, error)
	Delete(ctx context.Context, id uint, requesterID string) error

	// Reads are public
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

type EnrollmentService interface {
	// Enrollment lifecycle
	Enroll(ctx context.Context, courseID uint, studentID string) (*EnrollmentResponse, error)
	Withdraw(ctx context.Context, courseID uint, studentID string) error
	Complete(ctx context.Context, enrollmentID uint, requesterID string) (*EnrollmentResponse, error)

	// Queries
	GetByID(ctx context.Context, id uint, requesterID string) (*EnrollmentResponse, error)
	List(ctx context.Context, filters repositories.EnrollmentFilters, requesterID string) (*EnrollmentListResponse, error)
	IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error)
}

type ExportService interface {
	// Excel exports, admin only
	ExportCourses(ctx context.Context, requesterID string) ([]byte, error)
	ExportUsers(ctx context.Context, requesterID string) ([]byte, error)
	ExportEnrollments(ctx context.Context, courseID uint, requesterID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Course() CourseService
	Lesson() LessonService
	Review() ReviewService
	User() UserService
	Category() CategoryService
	Enrollment() EnrollmentService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
