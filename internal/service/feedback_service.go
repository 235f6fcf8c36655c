package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"feedback-system/internal/models"
	"feedback-system/internal/repository"
	"feedback-system/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FeedbackService struct {
	feedback repository.FeedbackRepository
}

func NewFeedbackService(feedback repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

type CreateFeedbackInput struct {
	Rating   int                     `json:"rating"`
	Comment  string                  `json:"comment"`
	Type     models.FeedbackCategory `json:"type"`
	Category models.FeedbackCategory `json:"category"`
}

// Create persists a new feedback document for the authenticated author.
// The status is always forced to open regardless of client input.
func (s *FeedbackService) Create(ctx context.Context, author primitive.ObjectID, in CreateFeedbackInput) (*models.Feedback, error) {
	comment := strings.TrimSpace(in.Comment)

	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if err := validateComment(comment); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be one of suggestion, bug, feature", ErrValidation)
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: category must be one of suggestion, bug, feature", ErrValidation)
	}

	feedback := &models.Feedback{
		RaisedBy: author,
		Rating:   in.Rating,
		Comment:  comment,
		Type:     in.Type,
		Category: in.Category,
		Status:   models.StatusOpen,
	}

	if err := s.feedback.Create(ctx, feedback); err != nil {
		logger.Log.Error("Failed to create feedback",
			zap.String("author", author.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Feedback created",
		zap.String("feedback_id", feedback.ID.Hex()),
		zap.String("author", author.Hex()),
	)
	return feedback, nil
}

type ListFeedbackInput struct {
	Status    models.FeedbackStatus
	Category  models.FeedbackCategory
	MinRating int
	Page      int
	Limit     int
}

// FeedbackListMeta is the pagination block for the public feedback
// listing, including previous/next page links.
type FeedbackListMeta struct {
	TotalResults    int64 `json:"totalResults"`
	TotalPages      int   `json:"totalPages"`
	CurrentPage     int   `json:"currentPage"`
	ResultsPerPage  int   `json:"resultsPerPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	PreviousPage    *int  `json:"previousPage"`
	NextPage        *int  `json:"nextPage"`
}

// List returns a filtered, paginated page of feedback sorted by creation
// time descending, each item with its author's name and email.
func (s *FeedbackService) List(ctx context.Context, in ListFeedbackInput) ([]models.FeedbackWithAuthor, FeedbackListMeta, error) {
	page, limit := normalizePagination(in.Page, in.Limit)

	items, total, err := s.feedback.List(ctx, repository.ListFeedbackParams{
		Status:    in.Status,
		Category:  in.Category,
		MinRating: in.MinRating,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		logger.Log.Error("Failed to list feedback", zap.Error(err))
		return nil, FeedbackListMeta{}, err
	}

	pages := totalPages(total, limit)
	meta := FeedbackListMeta{
		TotalResults:    total,
		TotalPages:      pages,
		CurrentPage:     page,
		ResultsPerPage:  limit,
		HasPreviousPage: page > 1,
		HasNextPage:     page < pages,
	}
	if meta.HasPreviousPage {
		prev := page - 1
		meta.PreviousPage = &prev
	}
	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}

	return items, meta, nil
}

// Get fetches a single feedback by id. A malformed id is treated the
// same as a missing document.
func (s *FeedbackService) Get(ctx context.Context, id string) (*models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFeedbackNotFound
	}

	feedback, err := s.feedback.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, ErrFeedbackNotFound
	}
	return feedback, nil
}

type UpdateFeedbackInput struct {
	Rating   *int                     `json:"rating"`
	Comment  *string                  `json:"comment"`
	Type     *models.FeedbackCategory `json:"type"`
	Category *models.FeedbackCategory `json:"category"`
	Status   *models.FeedbackStatus   `json:"status"`
}

// Update applies a partial update after the ownership check: only the
// author or an admin may modify a feedback.
func (s *FeedbackService) Update(ctx context.Context, id string, actor primitive.ObjectID, actorRole models.Role, in UpdateFeedbackInput) (*models.FeedbackWithAuthor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFeedbackNotFound
	}

	feedback, err := s.feedback.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, ErrFeedbackNotFound
	}

	if feedback.RaisedBy != actor && actorRole != models.RoleAdmin {
		return nil, ErrNotOwner
	}

	update := repository.FeedbackUpdate{}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
		update.Rating = in.Rating
	}
	if in.Comment != nil {
		comment := strings.TrimSpace(*in.Comment)
		if err := validateComment(comment); err != nil {
			return nil, err
		}
		update.Comment = &comment
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, fmt.Errorf("%w: type must be one of suggestion, bug, feature", ErrValidation)
		}
		update.Type = in.Type
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, fmt.Errorf("%w: category must be one of suggestion, bug, feature", ErrValidation)
		}
		update.Category = in.Category
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: status must be one of open, in-progress, resolved", ErrValidation)
		}
		update.Status = in.Status
	}

	updated, err := s.feedback.Update(ctx, oid, update)
	if err != nil {
		logger.Log.Error("Failed to update feedback",
			zap.String("feedback_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if updated == nil {
		return nil, ErrFeedbackNotFound
	}

	logger.Log.Info("Feedback updated",
		zap.String("feedback_id", id),
		zap.String("actor", actor.Hex()),
	)
	return updated, nil
}

// Delete hard-deletes a feedback after the same ownership check as
// Update.
func (s *FeedbackService) Delete(ctx context.Context, id string, actor primitive.ObjectID, actorRole models.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrFeedbackNotFound
	}

	feedback, err := s.feedback.GetByID(ctx, oid)
	if err != nil {
		return err
	}
	if feedback == nil {
		return ErrFeedbackNotFound
	}

	if feedback.RaisedBy != actor && actorRole != models.RoleAdmin {
		return ErrNotOwner
	}

	if err := s.feedback.Delete(ctx, oid); err != nil {
		logger.Log.Error("Failed to delete feedback",
			zap.String("feedback_id", id),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Feedback deleted",
		zap.String("feedback_id", id),
		zap.String("actor", actor.Hex()),
	)
	return nil
}

// ListByUser returns the given user's feedback, newest first.
func (s *FeedbackService) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.FeedbackWithAuthor, PaginationMeta, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, PaginationMeta{}, ErrUserNotFound
	}

	page, limit = normalizePagination(page, limit)

	items, total, err := s.feedback.ListByAuthor(ctx, oid, page, limit)
	if err != nil {
		logger.Log.Error("Failed to list feedback by user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, PaginationMeta{}, err
	}

	meta := PaginationMeta{
		TotalItems:   total,
		ItemCount:    len(items),
		ItemsPerPage: limit,
		TotalPages:   totalPages(total, limit),
		CurrentPage:  page,
	}
	return items, meta, nil
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, models.MinRating, models.MaxRating)
	}
	return nil
}

func validateComment(comment string) error {
	length := utf8.RuneCountInString(comment)
	if length < models.MinCommentLength || length > models.MaxCommentLength {
		return fmt.Errorf("%w: comment must be between %d and %d characters", ErrValidation, models.MinCommentLength, models.MaxCommentLength)
	}
	return nil
}
