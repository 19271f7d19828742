package validator

// CourseCreateRequest represents the request structure for creating courses.
// The instructor is never client-supplied; it is taken from the
// authenticated identity by the service layer.
type CourseCreateRequest struct {
	Title         string   `json:"title" validate:"required,course_title"`
	Slug          string   `json:"slug" validate:"required,slug,max=200"`
	Description   string   `json:"description" validate:"required,max=5000"`
	CategoryID    *uint    `json:"category_id"`
	Price         float64  `json:"price" validate:"min=0"`
	DiscountPrice *float64 `json:"discount_price" validate:"omitempty,min=0"`
	Tags          []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Title         *string  `json:"title" validate:"omitempty,course_title"`
	Slug          *string  `json:"slug" validate:"omitempty,slug,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	CategoryID    *uint    `json:"category_id"`
	Price         *float64 `json:"price" validate:"omitempty,min=0"`
	DiscountPrice *float64 `json:"discount_price" validate:"omitempty,min=0"`
	Tags          []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

// LessonCreateRequest represents the request structure for creating lessons
type LessonCreateRequest struct {
	CourseID uint    `json:"course_id" validate:"required"`
	Title    string  `json:"title" validate:"required,min=1,max=200"`
	Order    int     `json:"order" validate:"required,min=1"`
	Content  string  `json:"content" validate:"required"`
	VideoURL *string `json:"video_url" validate:"omitempty,url,max=500"`
	Duration *int    `json:"duration" validate:"omitempty,min=1,max=600"`
}

// LessonUpdateRequest represents the request structure for updating lessons
type LessonUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Order    *int    `json:"order" validate:"omitempty,min=1"`
	Content  *string `json:"content"`
	VideoURL *string `json:"video_url" validate:"omitempty,url,max=500"`
	Duration *int    `json:"duration" validate:"omitempty,min=1,max=600"`
}

// ReviewCreateRequest represents the request structure for creating reviews.
// The author is always the authenticated identity.
type ReviewCreateRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,rating"`
	Comment  string `json:"comment" validate:"required,max=2000"`
}

// ReviewUpdateRequest represents the request structure for updating reviews
type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,rating"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// CategoryCreateRequest represents the request structure for creating categories
type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Slug        string  `json:"slug" validate:"required,slug,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// CategoryUpdateRequest represents the request structure for updating categories
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// AddressCreateRequest represents the request structure for creating addresses
type AddressCreateRequest struct {
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// AddressUpdateRequest represents the request structure for updating addresses
type AddressUpdateRequest struct {
	Street     *string `json:"street" validate:"omitempty,max=255"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	State      *string `json:"state" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
}

// UserUpdateRequest represents the request structure for updating user
// profiles. Role is never updatable here; role transitions have dedicated
// admin-only endpoints.
type UserUpdateRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}
