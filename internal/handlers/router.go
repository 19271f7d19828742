package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/config"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
	"github.com/learnhub/lms-service/internal/validator"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	lessonHandler     *LessonHandler
	reviewHandler     *ReviewHandler
	categoryHandler   *CategoryHandler
	userHandler       *UserHandler
	enrollmentHandler *EnrollmentHandler
	exportHandler     *ExportHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), validator, logger),
		lessonHandler:     NewLessonHandler(serviceManager.Lesson(), validator, logger),
		reviewHandler:     NewReviewHandler(serviceManager.Review(), validator, logger),
		categoryHandler:   NewCategoryHandler(serviceManager.Category(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		exportHandler:     NewExportHandler(serviceManager.Export(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes. Read endpoints on the public catalog use
// optional authentication so a bearer token upgrades visibility (owners and
// admins see unpublished courses, enrolled students see lesson content), while
// mutations require a valid token.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public catalog routes - token optional
	public := v1.Group("")
	public.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		categories := public.Group("/categories")
		{
			categories.GET("", hm.categoryHandler.ListCategories)
			categories.GET("/:id", hm.categoryHandler.GetCategory)
		}

		courses := public.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/search", hm.courseHandler.SearchCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/details", hm.courseHandler.GetCourseWithDetails)
			courses.GET("/:id/stats", hm.courseHandler.GetCourseStats)
			courses.GET("/:id/lessons", hm.lessonHandler.GetLessonsByCourse)
			courses.GET("/:id/reviews", hm.reviewHandler.GetReviewsByCourse)
		}

		lessons := public.Group("/lessons")
		{
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
		}

		reviews := public.Group("/reviews")
		{
			reviews.GET("", hm.reviewHandler.ListReviews)
			reviews.GET("/:id", hm.reviewHandler.GetReview)
		}
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		courses := authed.Group("/courses")
		{
			// Authoring - instructors and admins only
			courses.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.CreateCourse)
			courses.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.DeleteCourse)
			courses.POST("/:id/publish", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.PublishCourse)
			courses.POST("/:id/unpublish", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.UnpublishCourse)

			// Instructor dashboard
			courses.GET("/instructor/:instructor_id", hm.courseHandler.GetCoursesByInstructor)
			courses.GET("/instructor/:instructor_id/stats", hm.courseHandler.GetInstructorStats)

			// Enrollment lifecycle
			courses.POST("/:id/enroll", hm.enrollmentHandler.Enroll)
			courses.POST("/:id/withdraw", hm.enrollmentHandler.Withdraw)
			courses.GET("/:id/enrolled", hm.enrollmentHandler.IsEnrolled)
		}

		lessons := authed.Group("/lessons")
		{
			lessons.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.CreateLesson)
			lessons.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.DeleteLesson)
		}

		reviews := authed.Group("/reviews")
		{
			reviews.POST("", hm.reviewHandler.CreateReview)
			reviews.PUT("/:id", hm.reviewHandler.UpdateReview)
			reviews.DELETE("/:id", hm.reviewHandler.DeleteReview)
		}

		// Category management - admins only
		categories := authed.Group("/categories")
		categories.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			categories.POST("", hm.categoryHandler.CreateCategory)
			categories.PUT("/:id", hm.categoryHandler.UpdateCategory)
			categories.DELETE("/:id", hm.categoryHandler.DeleteCategory)
		}

		users := authed.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/instructors", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.GetInstructors)
			users.GET("/students", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.GetStudents)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.DeleteUser)

			// Role transitions - admins only
			users.POST("/:id/make_instructor", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.MakeInstructor)
			users.POST("/:id/make_student", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.MakeStudent)

			// Address book
			users.POST("/:id/addresses", hm.userHandler.CreateAddress)
			users.GET("/:id/addresses", hm.userHandler.GetAddresses)
			users.PUT("/:id/addresses/:address_id", hm.userHandler.UpdateAddress)
			users.DELETE("/:id/addresses/:address_id", hm.userHandler.DeleteAddress)
		}

		enrollments := authed.Group("/enrollments")
		{
			enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
			enrollments.GET("/:id", hm.enrollmentHandler.GetEnrollment)
			enrollments.POST("/:id/complete", hm.enrollmentHandler.CompleteEnrollment)
		}

		// Excel exports - admins only
		exports := authed.Group("/exports")
		exports.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			exports.GET("/courses.xlsx", hm.exportHandler.ExportCourses)
			exports.GET("/users.xlsx", hm.exportHandler.ExportUsers)
			exports.GET("/enrollments.xlsx", hm.exportHandler.ExportEnrollments)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}
