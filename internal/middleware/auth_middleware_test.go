package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedback-system/internal/models"
	"feedback-system/internal/testutil"
	"feedback-system/internal/utils"
	"feedback-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccessSecret = "test-access-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitNop()
	m.Run()
}

func setupAuthRouter(users *testutil.FakeUserRepository) *gin.Engine {
	router := gin.New()
	router.GET("/protected", Authenticate(users, testAccessSecret), func(c *gin.Context) {
		userID, _ := UserIDFromContext(c)
		role, _ := RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"userId": userID.Hex(),
			"role":   role,
		})
	})
	router.GET("/admin",
		Authenticate(users, testAccessSecret),
		RequireRoles(models.RoleAdmin),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return router
}

func requestWithToken(t *testing.T, router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// expiredToken signs a token whose expiry is already in the past.
func expiredToken(t *testing.T, userID string) string {
	t.Helper()

	claims := &utils.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	return token
}

func TestAuthenticate_NoToken(t *testing.T) {
	router := setupAuthRouter(testutil.NewFakeUserRepository())

	rec := requestWithToken(t, router, "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token provided")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	user := testutil.CreateTestUser(t, users, "Alice", "alice@example.com", "Password123", models.RoleUser)
	router := setupAuthRouter(users)

	rec := requestWithToken(t, router, "/protected", expiredToken(t, user.ID.Hex()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session expired",
		"Expired tokens must be reported differently from invalid ones")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	router := setupAuthRouter(testutil.NewFakeUserRepository())

	rec := requestWithToken(t, router, "/protected", "not-a-real-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuthenticate_UserNoLongerExists(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	user := testutil.CreateTestUser(t, users, "Ghost", "ghost@example.com", "Password123", models.RoleUser)

	token, err := utils.GenerateAccessToken(user.ID.Hex(), testAccessSecret)
	require.NoError(t, err)

	users.Delete(user.ID)
	router := setupAuthRouter(users)

	rec := requestWithToken(t, router, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer exists")
}

func TestAuthenticate_Success(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	user := testutil.CreateTestUser(t, users, "Bob", "bob@example.com", "Password123", models.RoleUser)
	router := setupAuthRouter(users)

	token, err := utils.GenerateAccessToken(user.ID.Hex(), testAccessSecret)
	require.NoError(t, err)

	rec := requestWithToken(t, router, "/protected", token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID.Hex())
	assert.Contains(t, rec.Body.String(), string(models.RoleUser))
}

func TestRequireRoles(t *testing.T) {
	users := testutil.NewFakeUserRepository()
	regular := testutil.CreateTestUser(t, users, "User", "user@example.com", "Password123", models.RoleUser)
	admin := testutil.CreateTestUser(t, users, "Admin", "admin@example.com", "Password123", models.RoleAdmin)
	router := setupAuthRouter(users)

	testCases := []struct {
		name     string
		userID   string
		expected int
	}{
		{"regular_user_forbidden", regular.ID.Hex(), http.StatusForbidden},
		{"admin_allowed", admin.ID.Hex(), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := utils.GenerateAccessToken(tc.userID, testAccessSecret)
			require.NoError(t, err)

			rec := requestWithToken(t, router, "/admin", token)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}
