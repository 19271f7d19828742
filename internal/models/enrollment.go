package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment links a student to a course. Lesson visibility for students is
// gated on an active or completed enrollment in a published course.
type Enrollment struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	CourseID  uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course"`
	StudentID string           `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_enrollments_student_course"`
	Status    EnrollmentStatus `json:"status" gorm:"not null;size:20;default:active;index"`
	EnrolledAt time.Time       `json:"enrolled_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course  Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Student User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Counted reports whether the enrollment grants content access.
func (e *Enrollment) Counted() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentCompleted
}

func (Enrollment) TableName() string {
	return "enrollments"
}
