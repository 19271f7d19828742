package validator

import (
	"testing"

	"github.com/learnhub/lms-service/internal/models"
)

func TestValidateCourseCreate(t *testing.T) {
	bv := NewBusinessValidator()

	valid := func() *CourseCreateRequest {
		return &CourseCreateRequest{
			Title:       "Distributed Systems in Go",
			Slug:        "distributed-systems-in-go",
			Description: "Consensus, replication and failure handling",
			Price:       99.99,
		}
	}

	t.Run("valid request", func(t *testing.T) {
		if errs := bv.ValidateCourseCreate(valid()); len(errs) > 0 {
			t.Errorf("Expected no errors, got %v", errs)
		}
	})

	t.Run("valid discount", func(t *testing.T) {
		req := valid()
		discount := 49.99
		req.DiscountPrice = &discount
		if errs := bv.ValidateCourseCreate(req); len(errs) > 0 {
			t.Errorf("Expected no errors, got %v", errs)
		}
	})

	t.Run("discount at or above price", func(t *testing.T) {
		req := valid()
		discount := req.Price
		req.DiscountPrice = &discount

		errs := bv.ValidateCourseCreate(req)
		if len(errs) != 1 {
			t.Fatalf("Expected 1 error, got %v", errs)
		}
		if errs[0].Field != "discount_price" {
			t.Errorf("Expected discount_price field, got %s", errs[0].Field)
		}
	})

	t.Run("bad slugs", func(t *testing.T) {
		for _, slug := range []string{"UpperCase", "spaced slug", "trailing-", "-leading", "double--hyphen", ""} {
			req := valid()
			req.Slug = slug
			if errs := bv.ValidateCourseCreate(req); len(errs) == 0 {
				t.Errorf("Expected slug %q to be rejected", slug)
			}
		}
	})

	t.Run("blank title", func(t *testing.T) {
		req := valid()
		req.Title = "   "
		if errs := bv.ValidateCourseCreate(req); len(errs) == 0 {
			t.Error("Expected whitespace title to be rejected")
		}
	})

	t.Run("negative price", func(t *testing.T) {
		req := valid()
		req.Price = -5
		if errs := bv.ValidateCourseCreate(req); len(errs) == 0 {
			t.Error("Expected negative price to be rejected")
		}
	})
}

func TestValidateReviewCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{name: "minimum rating", rating: 1, wantErr: false},
		{name: "maximum rating", rating: 5, wantErr: false},
		{name: "zero rating", rating: 0, wantErr: true},
		{name: "rating above range", rating: 6, wantErr: true},
		{name: "negative rating", rating: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ReviewCreateRequest{CourseID: 1, Rating: tt.rating, Comment: "fine"}
			errs := bv.ValidateReviewCreate(req)
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("Expected rating %d to be rejected", tt.rating)
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("Expected rating %d to pass, got %v", tt.rating, errs)
			}
		})
	}
}

func TestValidateCourseUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	existing := &models.Course{Price: 80}

	t.Run("discount checked against new price", func(t *testing.T) {
		price := 40.0
		discount := 50.0
		req := &CourseUpdateRequest{Price: &price, DiscountPrice: &discount}
		if errs := bv.ValidateCourseUpdate(req, existing); len(errs) == 0 {
			t.Error("Expected discount above new price to be rejected")
		}
	})

	t.Run("discount checked against existing price", func(t *testing.T) {
		discount := 90.0
		req := &CourseUpdateRequest{DiscountPrice: &discount}
		if errs := bv.ValidateCourseUpdate(req, existing); len(errs) == 0 {
			t.Error("Expected discount above existing price to be rejected")
		}

		discount = 60.0
		req = &CourseUpdateRequest{DiscountPrice: &discount}
		if errs := bv.ValidateCourseUpdate(req, existing); len(errs) > 0 {
			t.Errorf("Expected valid discount to pass, got %v", errs)
		}
	})
}
