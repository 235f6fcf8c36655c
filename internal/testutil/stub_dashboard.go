package testutil

import (
	"context"
	"time"

	"feedback-system/internal/models"
	"feedback-system/internal/repository"
)

// StubDashboardRepository returns canned aggregate values. Set Err to
// make every method fail, which is how the whole-request-fails behavior
// is exercised.
type StubDashboardRepository struct {
	Users             int64
	Feedback          int64
	ByCategory        []repository.CategoryCount
	ByStatus          []repository.StatusCount
	Daily             []repository.DailyCount
	AvgRating         float64
	Recent            []models.FeedbackWithAuthor
	Activity          []repository.UserActivity
	AvgResolution     float64
	TopRated          []models.FeedbackWithAuthor
	Buckets           []repository.RatingBucket
	CurrentAll        int64
	PreviousAll       int64
	CurrentResolved   int64
	PreviousResolved  int64
	Err               error
}

func (s *StubDashboardRepository) CountUsers(context.Context) (int64, error) {
	return s.Users, s.Err
}

func (s *StubDashboardRepository) CountFeedback(context.Context) (int64, error) {
	return s.Feedback, s.Err
}

func (s *StubDashboardRepository) FeedbackByCategory(context.Context) ([]repository.CategoryCount, error) {
	return s.ByCategory, s.Err
}

func (s *StubDashboardRepository) FeedbackByStatus(context.Context) ([]repository.StatusCount, error) {
	return s.ByStatus, s.Err
}

func (s *StubDashboardRepository) DailyFeedbackCounts(context.Context, time.Time) ([]repository.DailyCount, error) {
	return s.Daily, s.Err
}

func (s *StubDashboardRepository) AverageRating(context.Context) (float64, error) {
	return s.AvgRating, s.Err
}

func (s *StubDashboardRepository) RecentFeedback(context.Context, int) ([]models.FeedbackWithAuthor, error) {
	return s.Recent, s.Err
}

func (s *StubDashboardRepository) TopUserActivity(context.Context, int) ([]repository.UserActivity, error) {
	return s.Activity, s.Err
}

func (s *StubDashboardRepository) AverageResolutionDays(context.Context) (float64, error) {
	return s.AvgResolution, s.Err
}

func (s *StubDashboardRepository) TopRatedFeedback(context.Context, int) ([]models.FeedbackWithAuthor, error) {
	return s.TopRated, s.Err
}

func (s *StubDashboardRepository) RatingDistribution(context.Context) ([]repository.RatingBucket, error) {
	return s.Buckets, s.Err
}

func (s *StubDashboardRepository) CountFeedbackInWindow(_ context.Context, from, to time.Time, status models.FeedbackStatus) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	// The current window ends "now"; the previous one ends where the
	// current begins. Telling them apart by recency is enough here.
	current := time.Since(to) < time.Minute
	switch {
	case status == "" && current:
		return s.CurrentAll, nil
	case status == "" && !current:
		return s.PreviousAll, nil
	case current:
		return s.CurrentResolved, nil
	default:
		return s.PreviousResolved, nil
	}
}
