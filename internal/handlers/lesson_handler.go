package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
	"github.com/learnhub/lms-service/internal/validator"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	validator     *validator.Validator
}

func NewLessonHandler(
	lessonService services.LessonService,
	validator *validator.Validator,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		validator:     validator,
	}
}

// CreateLesson creates a new lesson in a course
// @Summary Create lesson
// @Description Creates a lesson; only the course owner and admins may add lessons
// @Tags lessons
// @Accept json
// @Produce json
// @Param lesson body services.CreateLessonRequest true "Lesson data"
// @Success 201 {object} services.LessonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Duplicate order within the course"
// @Router /lessons [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
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

	lesson, err := h.lessonService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// GetLesson retrieves a lesson by ID
// @Summary Get lesson
// @Description Lesson content is visible to enrolled students, the course owner and admins
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} services.LessonResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting lesson", "lesson_id", id)

	lesson, err := h.lessonService.GetByID(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// UpdateLesson updates a lesson
// @Summary Update lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path uint true "Lesson ID"
// @Param lesson body services.UpdateLessonRequest true "Fields to update"
// @Success 200 {object} services.LessonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating lesson", "lesson_id", id)

	var req services.UpdateLessonRequest
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

	lesson, err := h.lessonService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson deletes a lesson
// @Summary Delete lesson
// @Tags lessons
// @Param id path uint true "Lesson ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting lesson", "lesson_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListLessons lists lessons visible to the caller
// @Summary List lessons
// @Description Without course_id, instructors see lessons of their own courses and students those of enrolled courses
// @Tags lessons
// @Produce json
// @Param course_id query uint false "Course ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.LessonListResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	h.LogRequest(c, "Listing lessons")

	limit, offset := h.parsePagination(c)
	filters := repositories.LessonFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if courseIDStr := c.Query("course_id"); courseIDStr != "" {
		if courseID, err := strconv.ParseUint(courseIDStr, 10, 32); err == nil {
			id := uint(courseID)
			filters.CourseID = &id
		}
	}

	lessons, err := h.lessonService.List(c.Request.Context(), filters, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lessons)
}

// GetLessonsByCourse lists all lessons of a course in order
// @Summary Get course lessons
// @Tags lessons
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.LessonListResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/lessons [get]
func (h *LessonHandler) GetLessonsByCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Getting lessons by course", "course_id", courseID)

	lessons, err := h.lessonService.GetByCourse(c.Request.Context(), courseID, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lessons)
}
