package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"feedback-system/internal/cache"
	"feedback-system/internal/models"
	"feedback-system/internal/repository"
	"feedback-system/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	trendWindowDays     = 30
	comparisonDays      = 7
	recentFeedbackLimit = 5
	userActivityLimit   = 5
	topRatedLimit       = 3
)

// DashboardSummary holds the headline card numbers.
type DashboardSummary struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalFeedback     int64   `json:"totalFeedback"`
	OpenFeedback      int64   `json:"openFeedback"`
	ResolvedFeedback  int64   `json:"resolvedFeedback"`
	AverageRating     float64 `json:"averageRating"`
	OpenPercentage    int     `json:"openPercentage"`
	ResolutionRate    int     `json:"resolutionRate"`
	AvgResolutionDays float64 `json:"avgResolutionDays"`
}

type DashboardCharts struct {
	ByCategory []repository.CategoryCount `json:"byCategory"`
	ByStatus   []repository.StatusCount   `json:"byStatus"`
	Trend      []repository.DailyCount    `json:"trend"`
	ByRating   []repository.RatingBucket  `json:"byRating"`
}

type DashboardActivity struct {
	RecentFeedback   []models.FeedbackWithAuthor `json:"recentFeedback"`
	UserActivity     []repository.UserActivity   `json:"userActivity"`
	TopRatedFeedback []models.FeedbackWithAuthor `json:"topRatedFeedback"`
}

// PeriodComparison compares the current window against the preceding one.
// Change is a percentage with one decimal, or "N/A" when the previous
// window was empty.
type PeriodComparison struct {
	Current  int64  `json:"current"`
	Previous int64  `json:"previous"`
	Change   string `json:"change"`
}

type DashboardTrends struct {
	FeedbackLast7Days   PeriodComparison `json:"feedbackLast7Days"`
	ResolutionLast7Days PeriodComparison `json:"resolutionLast7Days"`
}

type DashboardData struct {
	Summary  DashboardSummary  `json:"summary"`
	Charts   DashboardCharts   `json:"charts"`
	Activity DashboardActivity `json:"activity"`
	Trends   DashboardTrends   `json:"trends"`
}

type DashboardService struct {
	repo  repository.DashboardRepository
	cache *cache.DashboardCache // nil disables caching
}

func NewDashboardService(repo repository.DashboardRepository, cache *cache.DashboardCache) *DashboardService {
	return &DashboardService{repo: repo, cache: cache}
}

// GetDashboard assembles the full dashboard payload. All sub-aggregates
// are independent and run concurrently; the response is built only after
// every one of them has completed, and any single failure fails the whole
// request.
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx); ok {
			data := &DashboardData{}
			if err := json.Unmarshal(payload, data); err == nil {
				return data, nil
			}
			logger.Log.Warn("Discarding undecodable dashboard cache entry")
		}
	}

	now := time.Now().UTC()
	trendSince := now.AddDate(0, 0, -trendWindowDays)
	windowStart := now.AddDate(0, 0, -comparisonDays)
	prevWindowStart := now.AddDate(0, 0, -2*comparisonDays)

	var (
		totalUsers, totalFeedback          int64
		byCategory                         []repository.CategoryCount
		byStatus                           []repository.StatusCount
		trend                              []repository.DailyCount
		byRating                           []repository.RatingBucket
		averageRating, avgResolutionDays   float64
		recent, topRated                   []models.FeedbackWithAuthor
		activity                           []repository.UserActivity
		feedbackCurrent, feedbackPrevious  int64
		resolvedCurrent, resolvedPrevious  int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		totalUsers, err = s.repo.CountUsers(gctx)
		return
	})
	g.Go(func() (err error) {
		totalFeedback, err = s.repo.CountFeedback(gctx)
		return
	})
	g.Go(func() (err error) {
		byCategory, err = s.repo.FeedbackByCategory(gctx)
		return
	})
	g.Go(func() (err error) {
		byStatus, err = s.repo.FeedbackByStatus(gctx)
		return
	})
	g.Go(func() (err error) {
		trend, err = s.repo.DailyFeedbackCounts(gctx, trendSince)
		return
	})
	g.Go(func() (err error) {
		averageRating, err = s.repo.AverageRating(gctx)
		return
	})
	g.Go(func() (err error) {
		recent, err = s.repo.RecentFeedback(gctx, recentFeedbackLimit)
		return
	})
	g.Go(func() (err error) {
		activity, err = s.repo.TopUserActivity(gctx, userActivityLimit)
		return
	})
	g.Go(func() (err error) {
		avgResolutionDays, err = s.repo.AverageResolutionDays(gctx)
		return
	})
	g.Go(func() (err error) {
		topRated, err = s.repo.TopRatedFeedback(gctx, topRatedLimit)
		return
	})
	g.Go(func() (err error) {
		byRating, err = s.repo.RatingDistribution(gctx)
		return
	})
	g.Go(func() (err error) {
		feedbackCurrent, err = s.repo.CountFeedbackInWindow(gctx, windowStart, now, "")
		return
	})
	g.Go(func() (err error) {
		feedbackPrevious, err = s.repo.CountFeedbackInWindow(gctx, prevWindowStart, windowStart, "")
		return
	})
	g.Go(func() (err error) {
		resolvedCurrent, err = s.repo.CountFeedbackInWindow(gctx, windowStart, now, models.StatusResolved)
		return
	})
	g.Go(func() (err error) {
		resolvedPrevious, err = s.repo.CountFeedbackInWindow(gctx, prevWindowStart, windowStart, models.StatusResolved)
		return
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("Dashboard aggregation failed", zap.Error(err))
		return nil, err
	}

	openCount := statusCount(byStatus, models.StatusOpen)
	resolvedCount := statusCount(byStatus, models.StatusResolved)

	data := &DashboardData{
		Summary: DashboardSummary{
			TotalUsers:        totalUsers,
			TotalFeedback:     totalFeedback,
			OpenFeedback:      openCount,
			ResolvedFeedback:  resolvedCount,
			AverageRating:     roundToOneDecimal(averageRating),
			OpenPercentage:    percentage(openCount, totalFeedback),
			ResolutionRate:    percentage(resolvedCount, totalFeedback),
			AvgResolutionDays: roundToOneDecimal(avgResolutionDays),
		},
		Charts: DashboardCharts{
			ByCategory: byCategory,
			ByStatus:   byStatus,
			Trend:      trend,
			ByRating:   byRating,
		},
		Activity: DashboardActivity{
			RecentFeedback:   recent,
			UserActivity:     activity,
			TopRatedFeedback: topRated,
		},
		Trends: DashboardTrends{
			FeedbackLast7Days:   comparePeriods(feedbackCurrent, feedbackPrevious),
			ResolutionLast7Days: comparePeriods(resolvedCurrent, resolvedPrevious),
		},
	}

	if s.cache != nil {
		if payload, err := json.Marshal(data); err == nil {
			s.cache.Set(ctx, payload)
		}
	}

	return data, nil
}

func statusCount(counts []repository.StatusCount, status models.FeedbackStatus) int64 {
	for _, c := range counts {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}

// percentage returns count/total as a whole percentage, 0 when total is 0.
func percentage(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func comparePeriods(current, previous int64) PeriodComparison {
	change := "N/A"
	if previous > 0 {
		pct := float64(current-previous) / float64(previous) * 100
		change = strconv.FormatFloat(pct, 'f', 1, 64)
	}
	return PeriodComparison{
		Current:  current,
		Previous: previous,
		Change:   change,
	}
}
