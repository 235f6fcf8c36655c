package testutil

import (
	"context"
	"testing"
	"time"

	"feedback-system/internal/models"
	"feedback-system/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTestUser inserts a user with a hashed password and returns it.
func CreateTestUser(t *testing.T, repo *FakeUserRepository, name, email, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestFeedback inserts an open feedback for the given author.
func CreateTestFeedback(t *testing.T, repo *FakeFeedbackRepository, author primitive.ObjectID, rating int, comment string) *models.Feedback {
	t.Helper()

	feedback := &models.Feedback{
		RaisedBy: author,
		Rating:   rating,
		Comment:  comment,
		Type:     models.CategoryFeature,
		Category: models.CategoryFeature,
		Status:   models.StatusOpen,
	}
	if err := repo.Create(context.Background(), feedback); err != nil {
		t.Fatalf("Failed to create test feedback: %v", err)
	}
	return feedback
}

// CreateTestFeedbackAt inserts a feedback with an explicit creation time,
// useful for ordering and windowing assertions.
func CreateTestFeedbackAt(t *testing.T, repo *FakeFeedbackRepository, author primitive.ObjectID, rating int, comment string, createdAt time.Time) *models.Feedback {
	t.Helper()

	feedback := &models.Feedback{
		RaisedBy:  author,
		Rating:    rating,
		Comment:   comment,
		Type:      models.CategoryBug,
		Category:  models.CategoryBug,
		Status:    models.StatusOpen,
		CreatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), feedback); err != nil {
		t.Fatalf("Failed to create test feedback: %v", err)
	}
	return feedback
}
