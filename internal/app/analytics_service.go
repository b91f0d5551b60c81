package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"budget_notification_engine/internal/domain/analytics"
	"budget_notification_engine/internal/domain/transaction"

	"github.com/sirupsen/logrus"
)

// DefaultLookbackMonths is the aggregation window used when the caller does
// not supply one.
const DefaultLookbackMonths = 6

var (
	// ErrInvalidTotalBudget is returned when an allocation is requested with a
	// non-positive total.
	ErrInvalidTotalBudget = errors.New("total budget must be positive")
	// ErrInvalidLookback is returned for a negative lookback window.
	ErrInvalidLookback = errors.New("lookback months must not be negative")
)

// AnalyticsService implements the budget recommendation path: monthly
// aggregation, trend fitting, per-category suggestions and proportional
// allocation of a fixed total.
//
// "Not enough data" is a normal outcome here, not an error: every method
// returns a nil result for it and callers are expected to check.
type AnalyticsService struct {
	txRepo transaction.Repository
	logger *logrus.Logger
	now    func() time.Time
}

func NewAnalyticsService(txRepo transaction.Repository, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		txRepo: txRepo,
		logger: logger,
		now:    time.Now,
	}
}

// AggregateMonthlySpending groups the user's expense transactions for one
// category into per-month totals over the lookback window. Months with no
// activity are not synthesized. Returns nil when there are no transactions.
func (s *AnalyticsService) AggregateMonthlySpending(ctx context.Context, userID int64, category string, months int) (*analytics.MonthlySeries, error) {
	if months < 0 {
		return nil, ErrInvalidLookback
	}
	if months == 0 {
		months = DefaultLookbackMonths
	}

	end := s.now()
	start := end.AddDate(0, -months, 0)

	txs, err := s.txRepo.Find(ctx, userID, transaction.Filter{
		Category: category,
		Kind:     transaction.KindExpense,
		From:     start,
		To:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for category %q: %w", category, err)
	}
	if len(txs) == 0 {
		return nil, nil
	}

	totals := make(map[string]float64)
	for _, tx := range txs {
		totals[tx.Date.Format("2006-01")] += tx.Amount
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys) // YYYY-MM keys sort chronologically

	series := &analytics.MonthlySeries{Category: category}
	for _, k := range keys {
		series.Points = append(series.Points, analytics.MonthPoint{Month: k, Total: totals[k]})
	}
	return series, nil
}

// AnalyzeTrend fits an ordinary least-squares line over the series, with each
// month assigned its chronological index 0..n-1. A single point yields a flat
// trend. Returns nil for a nil or empty series.
func (s *AnalyticsService) AnalyzeTrend(series *analytics.MonthlySeries) *analytics.TrendAnalysis {
	if series == nil || len(series.Points) == 0 {
		return nil
	}

	totals := series.Totals()
	slope, intercept := fitLine(totals)

	var sum float64
	for _, v := range totals {
		sum += v
	}
	n := float64(len(totals))

	return &analytics.TrendAnalysis{
		Category:        series.Category,
		MonthlyTotals:   series.Points,
		AverageSpending: sum / n,
		TrendSlope:      slope,
		PredictedNext:   slope*n + intercept,
	}
}

// AnalyzeCategorySpending runs aggregation and trend fitting in one step.
func (s *AnalyticsService) AnalyzeCategorySpending(ctx context.Context, userID int64, category string, months int) (*analytics.TrendAnalysis, error) {
	series, err := s.AggregateMonthlySpending(ctx, userID, category, months)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTrend(series), nil
}

// SuggestBudget converts a category's trend into a recommendation. Rising
// spend pads the average by 10%, falling spend trims it by 10%. Returns nil
// when the category has no analyzable history.
func (s *AnalyticsService) SuggestBudget(ctx context.Context, userID int64, category string) (*analytics.Recommendation, error) {
	trend, err := s.AnalyzeCategorySpending(ctx, userID, category, DefaultLookbackMonths)
	if err != nil {
		return nil, err
	}
	if trend == nil {
		return nil, nil
	}

	suggested := trend.AverageSpending
	switch {
	case trend.TrendSlope > 0:
		suggested = trend.AverageSpending * 1.10
	case trend.TrendSlope < 0:
		suggested = trend.AverageSpending * 0.90
	}

	return &analytics.Recommendation{
		Category:        category,
		SuggestedAmount: suggested,
		AverageSpending: trend.AverageSpending,
		TrendSlope:      trend.TrendSlope,
		Confidence:      confidence(trend.TrendSlope, trend.AverageSpending),
	}, nil
}

// CategoryRecommendations builds a recommendation for every expense category
// the user has history in, ranked descending by confidence.
func (s *AnalyticsService) CategoryRecommendations(ctx context.Context, userID int64) ([]*analytics.Recommendation, error) {
	categories, err := s.txRepo.DistinctExpenseCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense categories: %w", err)
	}

	recs := make([]*analytics.Recommendation, 0, len(categories))
	for _, category := range categories {
		rec, err := s.SuggestBudget(ctx, userID, category)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	return recs, nil
}

// OptimizeBudget distributes totalBudget across the user's recommended
// categories proportionally to their suggested amounts. An empty result means
// there was nothing to allocate.
func (s *AnalyticsService) OptimizeBudget(ctx context.Context, userID int64, totalBudget float64) ([]*analytics.AllocatedBudget, error) {
	if totalBudget <= 0 {
		return nil, ErrInvalidTotalBudget
	}

	recs, err := s.CategoryRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}

	var totalSuggested float64
	for _, rec := range recs {
		totalSuggested += rec.SuggestedAmount
	}
	if totalSuggested == 0 {
		return nil, nil
	}

	allocated := make([]*analytics.AllocatedBudget, 0, len(recs))
	for _, rec := range recs {
		allocated = append(allocated, &analytics.AllocatedBudget{
			Category:        rec.Category,
			SuggestedAmount: rec.SuggestedAmount,
			OptimizedAmount: totalBudget * (rec.SuggestedAmount / totalSuggested),
			Confidence:      rec.Confidence,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"categories": len(allocated),
		"total":      totalBudget,
	}).Debug("budget allocation computed")
	return allocated, nil
}

// fitLine computes the OLS slope and intercept for the points
// (0, y[0]) .. (n-1, y[n-1]). One point defines a flat line.
func fitLine(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if len(y) == 1 {
		return 0, y[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// confidence normalizes trend strength against average spend, clamped to [0,1].
func confidence(slope, average float64) float64 {
	if average <= 0 {
		return 0
	}
	c := slope / average
	if c < 0 {
		c = -c
	}
	if c > 1 {
		c = 1
	}
	return c
}
