package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers lists users
// @Summary List users
// @Description Admins see everyone; other callers see only themselves
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (student, instructor, admin)"
// @Success 200 {object} services.UserListResponse
// @Failure 401 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseUserFilters(c)

	users, err := h.userService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetInstructors lists instructor accounts (admin only)
// @Summary List instructors
// @Tags users
// @Produce json
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/instructors [get]
func (h *UserHandler) GetInstructors(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseUserFilters(c)

	instructors, err := h.userService.GetInstructors(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, instructors)
}

// GetStudents lists student accounts (admin only)
// @Summary List students
// @Tags users
// @Produce json
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/students [get]
func (h *UserHandler) GetStudents(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseUserFilters(c)

	students, err := h.userService.GetStudents(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// GetUser retrieves a user profile; visible to the user themselves and admins
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting user", "target_user_id", id)

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser updates profile fields; role is never updatable here
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body services.UpdateUserRequest true "Fields to update"
// @Success 200 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Updating user", "target_user_id", id)

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes a user account (admin only)
// @Summary Delete user
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Deleting user", "target_user_id", id)

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, requesterID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MakeInstructor promotes a user to instructor (admin only, idempotent)
// @Summary Make instructor
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Admin accounts cannot change role"
// @Router /users/{id}/make_instructor [post]
func (h *UserHandler) MakeInstructor(c *gin.Context) {
	h.handleRoleTransition(c, h.userService.MakeInstructor, "Promoting user to instructor")
}

// MakeStudent demotes a user to student (admin only, idempotent)
// @Summary Make student
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Admin accounts cannot change role"
// @Router /users/{id}/make_student [post]
func (h *UserHandler) MakeStudent(c *gin.Context) {
	h.handleRoleTransition(c, h.userService.MakeStudent, "Demoting user to student")
}

// ===== ADDRESS MANAGEMENT =====

// CreateAddress adds an address to a user's address book
func (h *UserHandler) CreateAddress(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	var req services.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	address, err := h.userService.CreateAddress(c.Request.Context(), userID, &req, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

// GetAddresses lists a user's addresses
func (h *UserHandler) GetAddresses(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	addresses, err := h.userService.GetAddresses(c.Request.Context(), userID, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"total":     len(addresses),
	})
}

// UpdateAddress updates a single address
func (h *UserHandler) UpdateAddress(c *gin.Context) {
	addressID := h.parseIDParam(c, "address_id")
	if addressID == 0 {
		return
	}

	var req services.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	address, err := h.userService.UpdateAddress(c.Request.Context(), addressID, &req, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// DeleteAddress removes a single address
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	addressID := h.parseIDParam(c, "address_id")
	if addressID == 0 {
		return
	}

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAddress(c.Request.Context(), addressID, requesterID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== HELPER METHODS =====

func (h *UserHandler) handleRoleTransition(
	c *gin.Context,
	transition func(ctx context.Context, id string, requesterID string) (*services.UserResponse, error),
	logMsg string,
) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, logMsg, "target_user_id", id)

	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := transition(c.Request.Context(), id, requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.UserFilters{
		Limit:  limit,
		Offset: offset,
		Query:  c.Query("q"),
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if role.Valid() {
			filters.Role = &role
		}
	}

	return filters
}
