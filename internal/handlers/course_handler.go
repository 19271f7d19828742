package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
	"github.com/learnhub/lms-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		validator:     validator,
	}
}

// CreateCourse creates a new course
// @Summary Create course
// @Description Creates a new course owned by the authenticated instructor
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Description Retrieves a course by its ID; unpublished courses are visible to their owner and admins only
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting course", "course_id", id)

	course, err := h.courseService.GetByID(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetCourseWithDetails retrieves a course with lessons, reviews and computed fields
// @Summary Get course with details
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/details [get]
func (h *CourseHandler) GetCourseWithDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting course with details", "course_id", id)

	course, err := h.courseService.GetByIDWithDetails(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body services.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Param id path uint true "Course ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCourses lists courses with role-based visibility
// @Summary List courses
// @Description Anonymous and student callers see published courses; instructors see their own; admins see everything
// @Tags courses
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param category_id query uint false "Filter by category"
// @Param published query bool false "Filter by publish state (admin only has effect)"
// @Param price_max query number false "Maximum price"
// @Param sort_by query string false "Sort field (created_at, title, price)"
// @Param sort_order query string false "Sort direction (asc, desc)"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	h.LogRequest(c, "Listing courses")

	filters := h.parseCourseFilters(c)

	courses, err := h.courseService.List(c.Request.Context(), filters, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// SearchCourses searches published courses by title and description
// @Summary Search courses
// @Tags courses
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} services.CourseListResponse
// @Failure 400 {object} ErrorResponse
// @Router /courses/search [get]
func (h *CourseHandler) SearchCourses(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	h.LogRequest(c, "Searching courses", "query", query)

	filters := h.parseCourseFilters(c)

	courses, err := h.courseService.Search(c.Request.Context(), query, filters, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCoursesByInstructor lists courses owned by an instructor
// @Summary Get courses by instructor
// @Tags courses
// @Produce json
// @Param instructor_id path string true "Instructor ID"
// @Success 200 {object} services.CourseListResponse
// @Router /courses/instructor/{instructor_id} [get]
func (h *CourseHandler) GetCoursesByInstructor(c *gin.Context) {
	instructorID := c.Param("instructor_id")
	if instructorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Instructor ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting courses by instructor", "instructor_id", instructorID)

	filters := h.parseCourseFilters(c)

	courses, err := h.courseService.GetByInstructor(c.Request.Context(), instructorID, filters, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// PublishCourse makes a course publicly visible
// @Summary Publish course
// @Description Publishes the course; repeat calls are no-ops
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/publish [post]
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Publishing course", "course_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UnpublishCourse hides a course from public listings
// @Summary Unpublish course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/unpublish [post]
func (h *CourseHandler) UnpublishCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Unpublishing course", "course_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Unpublish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetCourseStats returns aggregate statistics for a course
// @Summary Get course stats
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} repositories.CourseStats
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/stats [get]
func (h *CourseHandler) GetCourseStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting course stats", "course_id", id)

	stats, err := h.courseService.GetStats(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetInstructorStats returns aggregate statistics over an instructor's courses
// @Summary Get instructor stats
// @Tags courses
// @Produce json
// @Param instructor_id path string true "Instructor ID"
// @Success 200 {object} repositories.InstructorStats
// @Failure 403 {object} ErrorResponse
// @Router /courses/instructor/{instructor_id}/stats [get]
func (h *CourseHandler) GetInstructorStats(c *gin.Context) {
	instructorID := c.Param("instructor_id")
	if instructorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Instructor ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting instructor stats", "instructor_id", instructorID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.courseService.GetInstructorStats(c.Request.Context(), instructorID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== HELPER METHODS =====

func (h *CourseHandler) parseCourseFilters(c *gin.Context) repositories.CourseFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.CourseFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		if categoryID, err := strconv.ParseUint(categoryIDStr, 10, 32); err == nil {
			id := uint(categoryID)
			filters.CategoryID = &id
		}
	}

	if publishedStr := c.Query("published"); publishedStr != "" {
		if published, err := strconv.ParseBool(publishedStr); err == nil {
			filters.IsPublished = &published
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			filters.PriceMax = &priceMax
		}
	}

	return filters
}
