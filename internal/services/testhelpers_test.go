package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/learnhub/lms-service/internal/events"
	"github.com/learnhub/lms-service/internal/models"
	"github.com/learnhub/lms-service/internal/repositories"
	"github.com/learnhub/lms-service/internal/repositories/postgres"
	"github.com/learnhub/lms-service/internal/validator"
)

var testDBCounter atomic.Int64

// newTestDB opens an isolated in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps the shared in-memory database alive.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
		&models.Review{},
		&models.Enrollment{},
	); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	return db
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher

	courses     CourseService
	lessons     LessonService
	reviews     ReviewService
	users       UserService
	categories  CategoryService
	enrollments EnrollmentService
	exports     ExportService
}

// newTestEnv wires the full service stack over SQLite without a cache or a
// broker.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)

	return &testEnv{
		db:          db,
		repo:        repo,
		publisher:   publisher,
		courses:     NewCourseService(repo, db, logger, v, publisher),
		lessons:     NewLessonService(repo, db, logger, v),
		reviews:     NewReviewService(repo, db, logger, v),
		users:       NewUserService(repo, db, logger, v, publisher),
		categories:  NewCategoryService(repo, db, logger, v),
		enrollments: NewEnrollmentService(repo, db, logger, v, publisher),
		exports:     NewExportService(repo, db, logger),
	}
}

func seedUser(t *testing.T, env *testEnv, id string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		ID:       id,
		FullName: "Test " + id,
		Email:    id + "@example.com",
		Role:     role,
	}
	if err := env.repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
	return user
}

func seedCourse(t *testing.T, env *testEnv, instructorID, slug string, published bool) *models.Course {
	t.Helper()

	course := &models.Course{
		Title:        "Course " + slug,
		Slug:         slug,
		Description:  "Seeded course for tests",
		InstructorID: instructorID,
		Price:        49.99,
		IsPublished:  published,
	}
	if err := env.repo.Course().Create(context.Background(), env.db, course); err != nil {
		t.Fatalf("Failed to seed course %s: %v", slug, err)
	}
	return course
}

func seedLesson(t *testing.T, env *testEnv, courseID uint, order int) *models.Lesson {
	t.Helper()

	lesson := &models.Lesson{
		Title:    fmt.Sprintf("Lesson %d", order),
		CourseID: courseID,
		Order:    order,
		Content:  "Lesson content",
	}
	if err := env.repo.Lesson().Create(context.Background(), env.db, lesson); err != nil {
		t.Fatalf("Failed to seed lesson: %v", err)
	}
	return lesson
}
