package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"feedback-system/internal/models"
	"feedback-system/internal/repository"
	"feedback-system/internal/utils"
	"feedback-system/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 8

// UserWithFeedbackCount is a listed user together with the number of
// feedback documents they authored.
type UserWithFeedbackCount struct {
	models.User
	FeedbackCount int64 `json:"feedbackCount"`
}

type UserService struct {
	users         repository.UserRepository
	feedback      repository.FeedbackRepository
	accessSecret  string
	refreshSecret string
}

func NewUserService(users repository.UserRepository, feedback repository.FeedbackRepository, accessSecret, refreshSecret string) *UserService {
	return &UserService{
		users:         users,
		feedback:      feedback,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// Register creates a new account. The role defaults to user when absent;
// the password is hashed before it ever reaches the store.
func (s *UserService) Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: please provide a valid email", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, ErrEmailExists
		}
		logger.Log.Error("Failed to create user",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", email),
	)
	return user, nil
}

// Login verifies credentials and issues both session tokens. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	if email == "" || password == "" {
		return nil, "", "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", "", err
	}
	if user == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	match, err := utils.VerifyPassword(password, user.Password)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err),
		)
		return nil, "", "", err
	}
	if !match {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID.Hex()),
		)
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), s.accessSecret)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex(), s.refreshSecret)
	if err != nil {
		return nil, "", "", err
	}

	logger.Log.Info("User logged in",
		zap.String("user_id", user.ID.Hex()),
	)
	return user, accessToken, refreshToken, nil
}

// Update applies a self-update of name and/or password.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, name, password string) (*models.User, error) {
	update := repository.UserUpdate{}
	if name != "" {
		update.Name = &name
	}
	if password != "" {
		if len(password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
		}
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		update.Password = &hashed
	}

	if update.Name == nil && update.Password == nil {
		return nil, ErrNoUpdates
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		logger.Log.Error("Failed to update user",
			zap.String("user_id", id.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	logger.Log.Info("User updated", zap.String("user_id", id.Hex()))
	return user, nil
}

// GetByID resolves an account, failing with ErrUserNotFound when the id
// no longer maps to a record.
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns a page of users with their feedback counts. The counts
// come from one grouped aggregate over the page's author ids.
func (s *UserService) List(ctx context.Context, page, limit int, search string) ([]UserWithFeedbackCount, PaginationMeta, error) {
	page, limit = normalizePagination(page, limit)

	users, total, err := s.users.List(ctx, repository.ListUsersParams{
		Page:   page,
		Limit:  limit,
		Search: search,
	})
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return nil, PaginationMeta{}, err
	}

	ids := make([]primitive.ObjectID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	counts, err := s.feedback.CountByAuthors(ctx, ids)
	if err != nil {
		logger.Log.Error("Failed to count feedback per user", zap.Error(err))
		return nil, PaginationMeta{}, err
	}

	result := make([]UserWithFeedbackCount, len(users))
	for i, u := range users {
		result[i] = UserWithFeedbackCount{
			User:          u,
			FeedbackCount: counts[u.ID],
		}
	}

	meta := PaginationMeta{
		TotalItems:   total,
		ItemCount:    len(result),
		ItemsPerPage: limit,
		TotalPages:   totalPages(total, limit),
		CurrentPage:  page,
	}
	return result, meta, nil
}
