package service

import (
	"context"
	"testing"

	"feedback-system/internal/models"
	"feedback-system/internal/testutil"
	"feedback-system/internal/utils"
	"feedback-system/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

func newUserService() (*UserService, *testutil.FakeUserRepository, *testutil.FakeFeedbackRepository) {
	users := testutil.NewFakeUserRepository()
	feedback := testutil.NewFakeFeedbackRepository(users)
	return NewUserService(users, feedback, testAccessSecret, testRefreshSecret), users, feedback
}

func TestRegister_Success(t *testing.T) {
	svc, _, _ := newUserService()

	user, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "Password123", "")

	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "alice@example.com", user.Email, "Email should be normalized to lowercase")
	assert.Equal(t, models.RoleUser, user.Role, "Role should default to user")
	assert.NotEqual(t, "Password123", user.Password, "Password must never be stored in plain text")

	match, err := utils.VerifyPassword("Password123", user.Password)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newUserService()

	testCases := []struct {
		name     string
		userName string
		email    string
		password string
		role     models.Role
	}{
		{"missing_name", "", "a@example.com", "Password123", ""},
		{"missing_email", "Alice", "", "Password123", ""},
		{"missing_password", "Alice", "a@example.com", "", ""},
		{"invalid_email", "Alice", "not-an-email", "Password123", ""},
		{"short_password", "Alice", "a@example.com", "short", ""},
		{"invalid_role", "Alice", "a@example.com", "Password123", "superuser"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.userName, tc.email, tc.password, tc.role)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "Password123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Another Alice", "alice@example.com", "Password456", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "Password123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Alice", "ALICE@EXAMPLE.COM", "Password456", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newUserService()

	registered, err := svc.Register(context.Background(), "Bob", "bob@example.com", "Password123", "")
	require.NoError(t, err)

	user, access, refresh, err := svc.Login(context.Background(), "bob@example.com", "Password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := utils.ValidateToken(access, testAccessSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.Register(context.Background(), "Bob", "bob@example.com", "Password123", "")
	require.NoError(t, err)

	// Unknown email and wrong password must produce the same error so
	// the endpoint cannot be used to enumerate accounts.
	_, _, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "Password123")
	_, _, _, wrongErr := svc.Login(context.Background(), "bob@example.com", "WrongPassword")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestUpdate_NameAndPassword(t *testing.T) {
	svc, _, _ := newUserService()

	user, err := svc.Register(context.Background(), "Carol", "carol@example.com", "Password123", "")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, "Caroline", "NewPassword456")
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.Name)

	_, _, _, err = svc.Login(context.Background(), "carol@example.com", "NewPassword456")
	assert.NoError(t, err, "New password should work after the update")

	_, _, _, err = svc.Login(context.Background(), "carol@example.com", "Password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "Old password should stop working")
}

func TestUpdate_NoFields(t *testing.T) {
	svc, _, _ := newUserService()

	user, err := svc.Register(context.Background(), "Carol", "carol@example.com", "Password123", "")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, "", "")
	assert.ErrorIs(t, err, ErrNoUpdates)
}

func TestUpdate_ShortPassword(t *testing.T) {
	svc, _, _ := newUserService()

	user, err := svc.Register(context.Background(), "Carol", "carol@example.com", "Password123", "")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, "", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdate_UserNotFound(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), "Name", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.GetByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers_WithFeedbackCounts(t *testing.T) {
	svc, users, feedback := newUserService()

	alice := testutil.CreateTestUser(t, users, "Alice", "alice@example.com", "Password123", models.RoleUser)
	bob := testutil.CreateTestUser(t, users, "Bob", "bob@example.com", "Password123", models.RoleUser)

	testutil.CreateTestFeedback(t, feedback, alice.ID, 5, "This is great, thank you!")
	testutil.CreateTestFeedback(t, feedback, alice.ID, 4, "Still pretty good overall.")

	listed, meta, err := svc.List(context.Background(), 1, 10, "")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	counts := map[primitive.ObjectID]int64{}
	for _, u := range listed {
		counts[u.ID] = u.FeedbackCount
	}
	assert.Equal(t, int64(2), counts[alice.ID])
	assert.Equal(t, int64(0), counts[bob.ID], "Users without feedback should report zero, not be omitted")

	assert.Equal(t, int64(2), meta.TotalItems)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, 1, meta.CurrentPage)
}

func TestListUsers_Search(t *testing.T) {
	svc, users, _ := newUserService()

	testutil.CreateTestUser(t, users, "Alice Smith", "alice@example.com", "Password123", models.RoleUser)
	testutil.CreateTestUser(t, users, "Bob Jones", "bob@example.com", "Password123", models.RoleUser)

	listed, meta, err := svc.List(context.Background(), 1, 10, "smith")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Alice Smith", listed[0].Name)
	assert.Equal(t, int64(1), meta.TotalItems)
}

func TestListUsers_Pagination(t *testing.T) {
	svc, users, _ := newUserService()

	for i := 0; i < 15; i++ {
		email := string(rune('a'+i)) + "@example.com"
		testutil.CreateTestUser(t, users, "User", email, "Password123", models.RoleUser)
	}

	listed, meta, err := svc.List(context.Background(), 2, 10, "")
	require.NoError(t, err)
	assert.Len(t, listed, 5)
	assert.Equal(t, int64(15), meta.TotalItems)
	assert.Equal(t, 2, meta.TotalPages)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 5, meta.ItemCount)
}
