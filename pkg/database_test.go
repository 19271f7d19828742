package pkg

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/models"
)

func TestNewGormConfig(t *testing.T) {
	for _, environment := range []string{"production", "development"} {
		cfg := newGormConfig(environment)
		if !cfg.TranslateError {
			t.Errorf("Expected driver error translation to be enabled in %s", environment)
		}
		if cfg.Logger == nil {
			t.Errorf("Expected a logger to be configured in %s", environment)
		}
	}
}

func TestGormConfigTranslatesDuplicateKeys(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:pkg_database_test?mode=memory&cache=shared"), newGormConfig("production"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	user := &models.User{ID: "instructor-1", Email: "one@example.com", FullName: "One", Role: models.RoleInstructor}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	course := &models.Course{
		Title:        "First",
		Slug:         "shared-slug",
		Description:  "first course",
		InstructorID: "instructor-1",
		Price:        10,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	dup := &models.Course{
		Title:        "Second",
		Slug:         "shared-slug",
		Description:  "colliding slug",
		InstructorID: "instructor-1",
		Price:        10,
	}
	err = db.Create(dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected gorm.ErrDuplicatedKey on slug collision, got %v", err)
	}
}
