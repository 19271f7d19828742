package services

import (
	"context"
	"fmt"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
)

// ===== PERMISSION CHECKS =====

func (s *courseService) CanAccess(ctx context.Context, courseID uint, userID string) (bool, error) {
	course, err := s.getCourseByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return s.canAccessCourse(ctx, course, userID)
}

// canAccessCourse applies the visibility rule: published courses are public,
// unpublished courses are visible only to their owner and admins.
func (s *courseService) canAccessCourse(ctx context.Context, course *models.Course, userID string) (bool, error) {
	if course.IsPublished {
		return true, nil
	}

	// Anonymous callers never see unpublished courses
	if userID == "" {
		return false, nil
	}

	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	if userRole == models.RoleAdmin {
		return true, nil
	}

	return course.OwnerID() == userID, nil
}

func (s *courseService) CanEdit(ctx context.Context, courseID uint, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	// Admin can edit all courses
	if userRole == models.RoleAdmin {
		return true, nil
	}

	course, err := s.getCourseByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return course.OwnerID() == userID, nil
}

func (s *courseService) CanDelete(ctx context.Context, courseID uint, userID string) (bool, error) {
	// Same ownership rule as editing
	return s.CanEdit(ctx, courseID, userID)
}

// ===== HELPER FUNCTIONS =====

func (s *courseService) getUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role, nil
}

func (s *courseService) canCreateCourse(ctx context.Context, userID string) (bool, error) {
	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return false, err
	}

	return userRole == models.RoleInstructor || userRole == models.RoleAdmin, nil
}

// applyRoleVisibility narrows list filters to what the caller may see:
// admins see everything, instructors see their own courses, everyone else
// sees published courses only.
func (s *courseService) applyRoleVisibility(ctx context.Context, filters repositories.CourseFilters, userID string) (repositories.CourseFilters, error) {
	if userID == "" {
		published := true
		filters.IsPublished = &published
		return filters, nil
	}

	userRole, err := s.getUserRole(ctx, userID)
	if err != nil {
		return filters, err
	}

	switch userRole {
	case models.RoleAdmin:
		// No additional filtering

	case models.RoleInstructor:
		filters.InstructorID = &userID

	default:
		published := true
		filters.IsPublished = &published
	}

	return filters, nil
}

func (s *courseService) buildCourseResponse(ctx context.Context, course *models.Course, userID string) *CourseResponse {
	response := &CourseResponse{
		Course: course,
	}

	canEdit, _ := s.CanEdit(ctx, course.ID, userID)
	canDelete, _ := s.CanDelete(ctx, course.ID, userID)

	response.CanEdit = canEdit
	response.CanDelete = canDelete
	response.CanEnroll = course.IsPublished && userID != "" && course.OwnerID() != userID

	return response
}

func (s *courseService) buildCourseListResponse(ctx context.Context, courses []*models.Course, total int64, filters repositories.CourseFilters, userID string) *CourseListResponse {
	response := &CourseListResponse{
		Courses: make([]*CourseResponse, len(courses)),
		Total:   total,
		Page:    (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:    filters.Limit,
	}

	for i, course := range courses {
		response.Courses[i] = s.buildCourseResponse(ctx, course, userID)
	}

	return response
}

// applyCourseUpdates copies the provided fields onto the course. Nil
// pointers mean "leave unchanged".
func (s *courseService) applyCourseUpdates(course *models.Course, req *UpdateCourseRequest) error {
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Slug != nil {
		course.Slug = *req.Slug
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.CategoryID != nil {
		course.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		course.DiscountPrice = req.DiscountPrice
	}
	if req.Tags != nil {
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return err
		}
		course.Tags = tags
	}
	return nil
}

func (s *courseService) getCourseByID(ctx context.Context, id uint) (*models.Course, error) {
	return s.repo.Course().GetByID(ctx, s.db, id)
}

func (s *courseService) publishCourseEvent(ctx context.Context, course *models.Course, published bool) {
	if s.eventPublisher == nil {
		return
	}

	eventType := events.EventCoursePublished
	if !published {
		eventType = events.EventCourseUnpublished
	}

	event := events.NewEvent(eventType, events.CoursePublishedEvent{
		CourseID:     course.ID,
		Title:        course.Title,
		InstructorID: course.InstructorID,
		Published:    published,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		// Event delivery failure must not fail the state change
		s.logger.Error("Failed to publish course event", "event_type", eventType, "course_id", course.ID, "error", err)
	}
}
