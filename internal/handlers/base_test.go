package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-service/internal/services"
	"github.com/learnhub/lms-service/internal/utils"
)

func newTestBaseHandler() BaseHandler {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewBaseHandler(logger)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleServiceError(t *testing.T) {
	h := newTestBaseHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation errors map to 400",
			err:        services.ValidationErrors{{Field: "slug", Message: "invalid"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "permission errors map to 403",
			err:        services.NewPermissionError("user-1", 1, "course", "update", "not owner"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing resources map to 404",
			err:        services.ErrCourseNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped sentinels still map to 404",
			err:        fmt.Errorf("looking up course: %w", services.ErrCourseNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "business rule violations map to 422",
			err:        services.NewBusinessRuleError("unique_slug", "slug taken"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown errors map to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			h.handleServiceError(c, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	h := newTestBaseHandler()

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 10, wantOffset: 0},
		{name: "explicit page and size", query: "page=3&size=20", wantLimit: 20, wantOffset: 40},
		{name: "size capped at 100", query: "size=500", wantLimit: 100, wantOffset: 0},
		{name: "invalid values fall back", query: "page=abc&size=-1", wantLimit: 10, wantOffset: 0},
		{name: "zero page clamps to first", query: "page=0&size=5", wantLimit: 5, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			limit, offset := h.parsePagination(c)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("Expected limit=%d offset=%d, got limit=%d offset=%d",
					tt.wantLimit, tt.wantOffset, limit, offset)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	h := newTestBaseHandler()

	t.Run("numeric id", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "42"}}
		if id := h.parseIDParam(c, "id"); id != 42 {
			t.Errorf("Expected 42, got %d", id)
		}
	})

	t.Run("malformed id writes 400", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "not-a-number"}}
		if id := h.parseIDParam(c, "id"); id != 0 {
			t.Errorf("Expected 0, got %d", id)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestRequireUserID(t *testing.T) {
	h := newTestBaseHandler()

	t.Run("authenticated", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set("user_id", "user-1")

		userID, ok := h.requireUserID(c)
		if !ok || userID != "user-1" {
			t.Errorf("Expected user-1, got %q ok=%v", userID, ok)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		c, w := newTestContext(t)

		_, ok := h.requireUserID(c)
		if ok {
			t.Error("Expected anonymous request to be refused")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}
