package services

import (
	"errors"
	"fmt"

	"github.com/learnhub/lms-service/internal/validator"
)

// ValidationErrors re-exports the validator error collection so handlers can
// match on it without importing the validator package.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors for missing resources
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// PermissionError indicates the caller is not allowed to perform an action
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// BusinessRuleError indicates a domain rule was violated
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}

// IsBusinessRuleError reports whether err is a domain rule violation
func IsBusinessRuleError(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}
