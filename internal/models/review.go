package models

import "time"

type Review struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_reviews_user_course"`
	UserID   string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_reviews_user_course"`
	Rating   int    `json:"rating" gorm:"not null" validate:"required,rating"`
	Comment  string `json:"comment" gorm:"type:text;not null" validate:"required,max=2000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// OwnerID implements Ownable. A review is owned by its author.
func (r *Review) OwnerID() string {
	return r.UserID
}

func (Review) TableName() string {
	return "reviews"
}
