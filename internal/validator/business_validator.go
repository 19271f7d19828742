package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/learnhub/lms-service/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		errors = append(errors, ValidationError{
			Field:   "discount_price",
			Message: "must be lower than price",
			Value:   *req.DiscountPrice,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateCourseUpdate validates course update business rules
func (bv *BusinessValidator) ValidateCourseUpdate(req *CourseUpdateRequest, existing *models.Course) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Discount must stay below the effective price after the update.
	price := existing.Price
	if req.Price != nil {
		price = *req.Price
	}
	discount := existing.DiscountPrice
	if req.DiscountPrice != nil {
		discount = req.DiscountPrice
	}
	if discount != nil && *discount >= price {
		errors = append(errors, ValidationError{
			Field:   "discount_price",
			Message: "must be lower than price",
			Value:   *discount,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateReviewCreate validates review creation business rules
func (bv *BusinessValidator) ValidateReviewCreate(req *ReviewCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateLessonCreate validates lesson creation business rules
func (bv *BusinessValidator) ValidateLessonCreate(req *LessonCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Review rating validation (1-5)
	bv.validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Int()
		return rating >= 1 && rating <= 5
	})

	// Slug validation (lowercase letters, digits, hyphen-separated)
	bv.validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	// Course title validation (1-200 characters, non-blank)
	bv.validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// User role validation against the closed role set
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}
