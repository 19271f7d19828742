package repositories

import (
	"github.com/learnhub/lms-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	CategoryID   *uint   `json:"category_id"`
	InstructorID *string `json:"instructor_id"`
	IsPublished  *bool   `json:"is_published"`
	PriceMax     *float64 `json:"price_max"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
	SortBy       string  `json:"sort_by"`    // "created_at", "title", "price"
	SortOrder    string  `json:"sort_order"` // "asc", "desc"
}

type LessonFilters struct {
	CourseID *uint `json:"course_id"`

	// Cross-course scoping for unscoped listings: lessons of courses taught
	// by the instructor, or of published courses the student is enrolled in.
	InstructorID    *string `json:"instructor_id"`
	EnrolledStudent *string `json:"enrolled_student"`

	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type ReviewFilters struct {
	CourseID *uint   `json:"course_id"`
	UserID   *string `json:"user_id"`
	Rating   *int    `json:"rating"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // name or email
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type EnrollmentFilters struct {
	CourseID  *uint                    `json:"course_id"`
	StudentID *string                  `json:"student_id"`
	Status    *models.EnrollmentStatus `json:"status"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStats struct {
	AverageRating    float64 `json:"average_rating"`
	LessonsCount     int     `json:"lessons_count"`
	ReviewsCount     int     `json:"reviews_count"`
	EnrollmentsCount int     `json:"enrollments_count"`
}

type InstructorStats struct {
	TotalCourses     int     `json:"total_courses"`
	PublishedCourses int     `json:"published_courses"`
	TotalLessons     int     `json:"total_lessons"`
	TotalReviews     int     `json:"total_reviews"`
	TotalEnrollments int     `json:"total_enrollments"`
	AverageRating    float64 `json:"average_rating"`
}
