package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/validator"
)

type userService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) UserService {
	return &userService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== PROFILE OPERATIONS =====

func (s *userService) GetByID(ctx context.Context, id string, requesterID string) (*UserResponse, error) {
	canView, err := s.canViewUser(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, NewPermissionError(requesterID, 0, "user", "read", "can only view own profile")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.buildUserResponse(ctx, user, requesterID), nil
}

func (s *userService) Update(ctx context.Context, id string, req *UpdateUserRequest, requesterID string) (*UserResponse, error) {
	s.logger.Info("Updating user", "user_id", id, "requester_id", requesterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canEdit, err := s.canViewUser(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(requesterID, 0, "user", "update", "can only update own profile")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Role never changes here; role transitions have dedicated endpoints
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated successfully", "user_id", id)

	return s.buildUserResponse(ctx, user, requesterID), nil
}

func (s *userService) Delete(ctx context.Context, id string, requesterID string) error {
	s.logger.Info("Deleting user", "user_id", id, "requester_id", requesterID)

	// Only admins may delete accounts
	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return NewPermissionError(requesterID, 0, "user", "delete", "admin role required")
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted successfully", "user_id", id)
	return nil
}

// ===== LIST OPERATIONS =====

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error) {
	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	// Non-admins only see themselves in the collection
	if !isAdmin {
		user, err := s.repo.User().GetByID(ctx, requesterID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &UserListResponse{
			Users: []*UserResponse{s.buildUserResponse(ctx, user, requesterID)},
			Total: 1,
			Page:  1,
			Size:  filters.Limit,
		}, nil
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return s.buildUserListResponse(ctx, users, total, filters, requesterID), nil
}

// GetInstructors is admin only.
func (s *userService) GetInstructors(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error) {
	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, NewPermissionError(requesterID, 0, "user", "list_instructors", "admin role required")
	}

	users, total, err := s.repo.User().GetByRole(ctx, models.RoleInstructor, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}

	return s.buildUserListResponse(ctx, users, total, filters, requesterID), nil
}

// GetStudents is admin only.
func (s *userService) GetStudents(ctx context.Context, filters repositories.UserFilters, requesterID string) (*UserListResponse, error) {
	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, NewPermissionError(requesterID, 0, "user", "list_students", "admin role required")
	}

	users, total, err := s.repo.User().GetByRole(ctx, models.RoleStudent, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return s.buildUserListResponse(ctx, users, total, filters, requesterID), nil
}

// ===== ROLE TRANSITIONS =====

func (s *userService) MakeInstructor(ctx context.Context, id string, requesterID string) (*UserResponse, error) {
	return s.changeRole(ctx, id, models.RoleInstructor, requesterID)
}

func (s *userService) MakeStudent(ctx context.Context, id string, requesterID string) (*UserResponse, error) {
	return s.changeRole(ctx, id, models.RoleStudent, requesterID)
}

func (s *userService) changeRole(ctx context.Context, id string, role models.UserRole, requesterID string) (*UserResponse, error) {
	s.logger.Info("Changing user role", "user_id", id, "new_role", role, "requester_id", requesterID)

	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, NewPermissionError(requesterID, 0, "user", "change_role", "admin role required")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Admin accounts never lose their role through these endpoints
	if user.IsAdmin() {
		return nil, NewBusinessRuleError("admin_role_locked", "cannot change the role of an admin account")
	}

	// Idempotent: assigning the current role is a no-op
	if user.Role != role {
		previous := user.Role

		if err := s.repo.User().UpdateRole(ctx, id, role); err != nil {
			return nil, fmt.Errorf("failed to update user role: %w", err)
		}
		user.Role = role

		s.publishRoleChangedEvent(ctx, user, previous, requesterID)
	}

	return s.buildUserResponse(ctx, user, requesterID), nil
}

// ===== ADDRESS MANAGEMENT =====

func (s *userService) CreateAddress(ctx context.Context, userID string, req *CreateAddressRequest, requesterID string) (*models.Address, error) {
	s.logger.Info("Creating address", "user_id", userID, "requester_id", requesterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	canManage, err := s.canViewUser(ctx, userID, requesterID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(requesterID, 0, "address", "create", "can only manage own addresses")
	}

	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	address := &models.Address{
		UserID:     userID,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}

	if err := s.repo.Address().Create(ctx, s.db, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

func (s *userService) GetAddresses(ctx context.Context, userID string, requesterID string) ([]*models.Address, error) {
	canView, err := s.canViewUser(ctx, userID, requesterID)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, NewPermissionError(requesterID, 0, "address", "read", "can only view own addresses")
	}

	addresses, err := s.repo.Address().GetByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}

	return addresses, nil
}

func (s *userService) UpdateAddress(ctx context.Context, addressID uint, req *UpdateAddressRequest, requesterID string) (*models.Address, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	address, err := s.repo.Address().GetByID(ctx, s.db, addressID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	canManage, err := s.canViewUser(ctx, address.OwnerID(), requesterID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, NewPermissionError(requesterID, addressID, "address", "update", "can only manage own addresses")
	}

	if req.Street != nil {
		address.Street = *req.Street
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.State != nil {
		address.State = *req.State
	}
	if req.PostalCode != nil {
		address.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		address.Country = *req.Country
	}

	if err := s.repo.Address().Update(ctx, s.db, address); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return address, nil
}

func (s *userService) DeleteAddress(ctx context.Context, addressID uint, requesterID string) error {
	address, err := s.repo.Address().GetByID(ctx, s.db, addressID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to get address: %w", err)
	}

	canManage, err := s.canViewUser(ctx, address.OwnerID(), requesterID)
	if err != nil {
		return err
	}
	if !canManage {
		return NewPermissionError(requesterID, addressID, "address", "delete", "can only manage own addresses")
	}

	if err := s.repo.Address().Delete(ctx, s.db, addressID); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return nil
}

// ===== HELPER FUNCTIONS =====

func (s *userService) isAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	return user.IsAdmin(), nil
}

// canViewUser: the user themselves or an admin
func (s *userService) canViewUser(ctx context.Context, targetID, requesterID string) (bool, error) {
	if requesterID == "" {
		return false, nil
	}
	if targetID == requesterID {
		return true, nil
	}
	return s.isAdmin(ctx, requesterID)
}

func (s *userService) buildUserResponse(ctx context.Context, user *models.User, requesterID string) *UserResponse {
	canEdit, _ := s.canViewUser(ctx, user.ID, requesterID)

	return &UserResponse{
		User:    user,
		CanEdit: canEdit,
	}
}

func (s *userService) buildUserListResponse(ctx context.Context, users []*models.User, total int64, filters repositories.UserFilters, requesterID string) *UserListResponse {
	response := &UserListResponse{
		Users: make([]*UserResponse, len(users)),
		Total: total,
		Page:  (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:  filters.Limit,
	}

	for i, user := range users {
		response.Users[i] = s.buildUserResponse(ctx, user, requesterID)
	}

	return response
}

func (s *userService) publishRoleChangedEvent(ctx context.Context, user *models.User, previous models.UserRole, changedBy string) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(events.EventUserRoleChanged, events.UserRoleChangedEvent{
		UserID:       user.ID,
		PreviousRole: string(previous),
		NewRole:      string(user.Role),
		ChangedBy:    changedBy,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish role change event", "user_id", user.ID, "error", err)
	}
}
