package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the service
const (
	EventCoursePublished   = "course.published"
	EventCourseUnpublished = "course.unpublished"
	EventUserRoleChanged   = "user.role_changed"
	EventEnrollmentCreated = "enrollment.created"
	EventEnrollmentCancelled = "enrollment.cancelled"
)

// Event is the envelope published to the message broker
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates an event envelope with generated ID and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "lms-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// CoursePublishedEvent carries the payload for publish state changes
type CoursePublishedEvent struct {
	CourseID     uint   `json:"course_id"`
	Title        string `json:"title"`
	InstructorID string `json:"instructor_id"`
	Published    bool   `json:"published"`
}

// UserRoleChangedEvent carries the payload for role transitions
type UserRoleChangedEvent struct {
	UserID      string `json:"user_id"`
	PreviousRole string `json:"previous_role"`
	NewRole     string `json:"new_role"`
	ChangedBy   string `json:"changed_by"`
}

// EnrollmentEvent carries the payload for enrollment lifecycle changes
type EnrollmentEvent struct {
	EnrollmentID uint   `json:"enrollment_id"`
	CourseID     uint   `json:"course_id"`
	StudentID    string `json:"student_id"`
	Status       string `json:"status"`
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
