package models

import "time"

type Lesson struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Title    string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	CourseID uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_lessons_course_order"`
	Order    int     `json:"order" gorm:"not null;default:1;uniqueIndex:idx_lessons_course_order" validate:"min=1"`
	Content  string  `json:"content" gorm:"type:text;not null" validate:"required"`
	VideoURL *string `json:"video_url" gorm:"size:500" validate:"omitempty,url,max=500"`
	Duration *int    `json:"duration" validate:"omitempty,min=1"` // minutes

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

func (Lesson) TableName() string {
	return "lessons"
}
