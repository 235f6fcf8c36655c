package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"feedback-system/internal/models"
	"feedback-system/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FakeUserRepository is an in-memory repository.UserRepository for tests.
// No Mongo required; fast and isolated.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	seq   map[primitive.ObjectID]int64
	next  int64
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{
		users: make(map[primitive.ObjectID]models.User),
		seq:   make(map[primitive.ObjectID]int64),
	}
}

func (r *FakeUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.next++
	r.users[user.ID] = *user
	r.seq[user.ID] = r.next
	return nil
}

func (r *FakeUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *FakeUserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u := user
	return &u, nil
}

func (r *FakeUserRepository) Update(_ context.Context, id primitive.ObjectID, update repository.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user

	u := user
	return &u, nil
}

func (r *FakeUserRepository) List(_ context.Context, params repository.ListUsersParams) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.User{}
	search := strings.ToLower(params.Search)
	for _, user := range r.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		matched = append(matched, user)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return r.seq[matched[i].ID] > r.seq[matched[j].ID]
	})

	total := int64(len(matched))
	return paginate(matched, params.Page, params.Limit), total, nil
}

// Delete removes a user directly; test setup only.
func (r *FakeUserRepository) Delete(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// FakeFeedbackRepository is an in-memory repository.FeedbackRepository.
// Author projections resolve against the paired user repository, the
// same way the Mongo implementation resolves them with a $lookup.
type FakeFeedbackRepository struct {
	mu       sync.Mutex
	feedback map[primitive.ObjectID]models.Feedback
	seq      map[primitive.ObjectID]int64
	next     int64
	users    *FakeUserRepository
}

func NewFakeFeedbackRepository(users *FakeUserRepository) *FakeFeedbackRepository {
	return &FakeFeedbackRepository{
		feedback: make(map[primitive.ObjectID]models.Feedback),
		seq:      make(map[primitive.ObjectID]int64),
		users:    users,
	}
}

func (r *FakeFeedbackRepository) Create(_ context.Context, feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now
	}
	feedback.UpdatedAt = now

	r.next++
	r.feedback[feedback.ID] = *feedback
	r.seq[feedback.ID] = r.next
	return nil
}

func (r *FakeFeedbackRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	feedback, ok := r.feedback[id]
	if !ok {
		return nil, nil
	}
	f := feedback
	return &f, nil
}

func (r *FakeFeedbackRepository) List(_ context.Context, params repository.ListFeedbackParams) ([]models.FeedbackWithAuthor, int64, error) {
	r.mu.Lock()
	matched := []models.Feedback{}
	for _, feedback := range r.feedback {
		if params.Status != "" && feedback.Status != params.Status {
			continue
		}
		if params.Category != "" && feedback.Category != params.Category {
			continue
		}
		if params.MinRating > 0 && feedback.Rating < params.MinRating {
			continue
		}
		matched = append(matched, feedback)
	}
	r.sortNewestFirst(matched)
	r.mu.Unlock()

	total := int64(len(matched))
	page := paginate(matched, params.Page, params.Limit)
	return r.populate(page), total, nil
}

func (r *FakeFeedbackRepository) ListByAuthor(_ context.Context, author primitive.ObjectID, page, limit int) ([]models.FeedbackWithAuthor, int64, error) {
	r.mu.Lock()
	matched := []models.Feedback{}
	for _, feedback := range r.feedback {
		if feedback.RaisedBy == author {
			matched = append(matched, feedback)
		}
	}
	r.sortNewestFirst(matched)
	r.mu.Unlock()

	total := int64(len(matched))
	items := paginate(matched, page, limit)
	return r.populate(items), total, nil
}

func (r *FakeFeedbackRepository) Update(_ context.Context, id primitive.ObjectID, update repository.FeedbackUpdate) (*models.FeedbackWithAuthor, error) {
	r.mu.Lock()
	feedback, ok := r.feedback[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil
	}
	if update.Rating != nil {
		feedback.Rating = *update.Rating
	}
	if update.Comment != nil {
		feedback.Comment = *update.Comment
	}
	if update.Type != nil {
		feedback.Type = *update.Type
	}
	if update.Category != nil {
		feedback.Category = *update.Category
	}
	if update.Status != nil {
		feedback.Status = *update.Status
	}
	feedback.UpdatedAt = time.Now().UTC()
	r.feedback[id] = feedback
	r.mu.Unlock()

	populated := r.populate([]models.Feedback{feedback})
	return &populated[0], nil
}

func (r *FakeFeedbackRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.feedback, id)
	return nil
}

func (r *FakeFeedbackRepository) CountByAuthors(_ context.Context, authors []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[primitive.ObjectID]int64, len(authors))
	wanted := make(map[primitive.ObjectID]bool, len(authors))
	for _, id := range authors {
		wanted[id] = true
	}
	for _, feedback := range r.feedback {
		if wanted[feedback.RaisedBy] {
			counts[feedback.RaisedBy]++
		}
	}
	return counts, nil
}

func (r *FakeFeedbackRepository) sortNewestFirst(items []models.Feedback) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return r.seq[items[i].ID] > r.seq[items[j].ID]
	})
}

func (r *FakeFeedbackRepository) populate(items []models.Feedback) []models.FeedbackWithAuthor {
	populated := make([]models.FeedbackWithAuthor, len(items))
	for i, feedback := range items {
		author := models.Author{ID: feedback.RaisedBy}
		if user, _ := r.users.GetByID(context.Background(), feedback.RaisedBy); user != nil {
			author.Name = user.Name
			author.Email = user.Email
		}
		populated[i] = models.FeedbackWithAuthor{
			ID:        feedback.ID,
			Rating:    feedback.Rating,
			Comment:   feedback.Comment,
			Type:      feedback.Type,
			Category:  feedback.Category,
			Status:    feedback.Status,
			CreatedAt: feedback.CreatedAt,
			UpdatedAt: feedback.UpdatedAt,
			Author:    author,
		}
	}
	return populated
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
