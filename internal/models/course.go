package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;not null;size:200" validate:"required,slug"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Courses []Course `json:"-" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

type Course struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Slug          string         `json:"slug" gorm:"uniqueIndex;not null;size:200" validate:"required,slug"`
	Description   string         `json:"description" gorm:"type:text;not null" validate:"required"`
	InstructorID  string         `json:"instructor_id" gorm:"not null;index;size:255"`
	CategoryID    *uint          `json:"category_id" gorm:"index"`
	Price         float64        `json:"price" gorm:"not null" validate:"min=0"`
	DiscountPrice *float64       `json:"discount_price" validate:"omitempty,min=0"`
	Tags          datatypes.JSON `json:"tags" gorm:"type:jsonb"` // []string
	IsPublished   bool           `json:"is_published" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Instructor  User         `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Category    *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Lessons     []Lesson     `json:"lessons,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Reviews     []Review     `json:"reviews,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Enrollments []Enrollment `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	AverageRating float64 `json:"average_rating" gorm:"-"`
	LessonsCount  int     `json:"lessons_count" gorm:"-"`
	ReviewsCount  int     `json:"reviews_count" gorm:"-"`
}

// OwnerID implements Ownable. A course is owned by its instructor.
func (c *Course) OwnerID() string {
	return c.InstructorID
}

func (Course) TableName() string {
	return "courses"
}
