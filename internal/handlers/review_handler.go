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

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
	validator     *validator.Validator
}

func NewReviewHandler(
	reviewService services.ReviewService,
	validator *validator.Validator,
	logger utils.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
		validator:     validator,
	}
}

// CreateReview creates a review on a published course
// @Summary Create review
// @Description One review per user per course; the author is always the authenticated user
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body services.CreateReviewRequest true "Review data"
// @Success 201 {object} services.ReviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Course not found or not published"
// @Failure 422 {object} ErrorResponse "Duplicate review"
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
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

	review, err := h.reviewService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReview retrieves a review by ID
// @Summary Get review
// @Tags reviews
// @Produce json
// @Param id path uint true "Review ID"
// @Success 200 {object} services.ReviewResponse
// @Failure 404 {object} ErrorResponse
// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting review", "review_id", id)

	review, err := h.reviewService.GetByID(c.Request.Context(), id, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// UpdateReview updates a review; only the author and admins may edit
// @Summary Update review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path uint true "Review ID"
// @Param review body services.UpdateReviewRequest true "Fields to update"
// @Success 200 {object} services.ReviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating review", "review_id", id)

	var req services.UpdateReviewRequest
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

	review, err := h.reviewService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview deletes a review
// @Summary Delete review
// @Tags reviews
// @Param id path uint true "Review ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting review", "review_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListReviews lists reviews with optional filters
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Param course_id query uint false "Filter by course"
// @Param user_id query string false "Filter by author"
// @Param rating query int false "Filter by rating"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.ReviewListResponse
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	h.LogRequest(c, "Listing reviews")

	filters := h.parseReviewFilters(c)

	reviews, err := h.reviewService.List(c.Request.Context(), filters, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetReviewsByCourse lists reviews of a course
// @Summary Get course reviews
// @Tags reviews
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.ReviewListResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/reviews [get]
func (h *ReviewHandler) GetReviewsByCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Getting reviews by course", "course_id", courseID)

	reviews, err := h.reviewService.GetByCourse(c.Request.Context(), courseID, h.currentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ===== HELPER METHODS =====

func (h *ReviewHandler) parseReviewFilters(c *gin.Context) repositories.ReviewFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.ReviewFilters{
		Limit:  limit,
		Offset: offset,
	}

	if courseIDStr := c.Query("course_id"); courseIDStr != "" {
		if courseID, err := strconv.ParseUint(courseIDStr, 10, 32); err == nil {
			id := uint(courseID)
			filters.CourseID = &id
		}
	}

	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	if ratingStr := c.Query("rating"); ratingStr != "" {
		if rating, err := strconv.Atoi(ratingStr); err == nil {
			filters.Rating = &rating
		}
	}

	return filters
}
