package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	payload := CoursePublishedEvent{
		CourseID:     7,
		Title:        "Go Concurrency Patterns",
		InstructorID: "instructor-1",
		Published:    true,
	}

	before := time.Now().UTC()
	event := NewEvent(EventCoursePublished, payload)
	after := time.Now().UTC()

	if event.ID == "" {
		t.Error("Expected generated event ID")
	}
	if event.Type != EventCoursePublished {
		t.Errorf("Expected type %s, got %s", EventCoursePublished, event.Type)
	}
	if event.Source != "lms-service" {
		t.Errorf("Expected lms-service source, got %s", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", event.Version)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside expected window", event.Timestamp)
	}
	if _, ok := event.Data.(CoursePublishedEvent); !ok {
		t.Errorf("Expected course payload, got %T", event.Data)
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event := NewEvent(EventEnrollmentCreated, nil)
		if seen[event.ID] {
			t.Fatalf("Duplicate event ID %s", event.ID)
		}
		seen[event.ID] = true
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	for _, eventType := range []string{EventCoursePublished, EventUserRoleChanged, EventEnrollmentCancelled} {
		if err := publisher.Publish(ctx, NewEvent(eventType, nil)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 3 {
		t.Fatalf("Expected 3 recorded events, got %d", len(published))
	}
	if published[1].Type != EventUserRoleChanged {
		t.Errorf("Expected ordered recording, got %s", published[1].Type)
	}

	publisher.ClearEvents()
	if remaining := publisher.GetPublishedEvents(); len(remaining) != 0 {
		t.Errorf("Expected no events after clear, got %d", len(remaining))
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
