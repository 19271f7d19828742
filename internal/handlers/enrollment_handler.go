package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll enrolls the authenticated user in a course
// @Summary Enroll in course
// @Description Enrolls in a published course; a cancelled enrollment is reactivated
// @Tags enrollments
// @Produce json
// @Param id path uint true "Course ID"
// @Success 201 {object} services.EnrollmentResponse
// @Failure 404 {object} ErrorResponse "Course not found or not published"
// @Failure 422 {object} ErrorResponse "Already enrolled or own course"
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Enrolling in course", "course_id", courseID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// Withdraw cancels the authenticated user's enrollment in a course
// @Summary Withdraw from course
// @Description Cancels an active enrollment; withdrawing twice is a no-op
// @Tags enrollments
// @Param id path uint true "Course ID"
// @Success 204 "No content"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Completed enrollments cannot be withdrawn"
// @Router /courses/{id}/withdraw [post]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Withdrawing from course", "course_id", courseID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.enrollmentService.Withdraw(c.Request.Context(), courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteEnrollment marks an enrollment as completed; allowed for the course
// owner and admins
// @Summary Complete enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Only active enrollments can be completed"
// @Router /enrollments/{id}/complete [post]
func (h *EnrollmentHandler) CompleteEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Completing enrollment", "enrollment_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Complete(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// GetEnrollment retrieves an enrollment by ID
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting enrollment", "enrollment_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ListEnrollments lists enrollments scoped by the caller's role
// @Summary List enrollments
// @Description Students see their own enrollments; instructors see enrollments on their courses; admins see everything
// @Tags enrollments
// @Produce json
// @Param course_id query uint false "Filter by course"
// @Param student_id query string false "Filter by student (admin only)"
// @Param status query string false "Filter by status (active, completed, cancelled)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.EnrollmentListResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	h.LogRequest(c, "Listing enrollments")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseEnrollmentFilters(c)

	enrollments, err := h.enrollmentService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// IsEnrolled reports whether the authenticated user is enrolled in a course
// @Summary Check enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} map[string]bool
// @Router /courses/{id}/enrolled [get]
func (h *EnrollmentHandler) IsEnrolled(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	enrolled, err := h.enrollmentService.IsEnrolled(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}

// ===== HELPER METHODS =====

func (h *EnrollmentHandler) parseEnrollmentFilters(c *gin.Context) repositories.EnrollmentFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.EnrollmentFilters{
		Limit:  limit,
		Offset: offset,
	}

	if courseIDStr := c.Query("course_id"); courseIDStr != "" {
		if courseID, err := strconv.ParseUint(courseIDStr, 10, 32); err == nil {
			id := uint(courseID)
			filters.CourseID = &id
		}
	}

	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.EnrollmentStatus(statusStr)
		filters.Status = &status
	}

	return filters
}
