package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"budget_notification_engine/internal/domain/transaction"
)

const floatTolerance = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// expenseOn builds an expense transaction for a user on a given day.
func expenseOn(userID int64, category string, amount float64, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		UserID:   userID,
		Amount:   amount,
		Kind:     transaction.KindExpense,
		Category: category,
		Date:     date,
	}
}

// monthlyExpenses spreads one expense per month ending the month before asOf.
func monthlyExpenses(userID int64, category string, asOf time.Time, amounts ...float64) []*transaction.Transaction {
	txs := make([]*transaction.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		date := asOf.AddDate(0, -(len(amounts) - i), 0)
		txs = append(txs, expenseOn(userID, category, amount, date))
	}
	return txs
}

func TestAggregateMonthlySpending(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	repo := &memTransactionRepo{}
	repo.txs = append(repo.txs, monthlyExpenses(1, "Food", asOf, 1000, 1100, 1200)...)
	// Noise that must not leak into the series.
	repo.txs = append(repo.txs,
		expenseOn(1, "Transport", 300, asOf.AddDate(0, -1, 0)),
		expenseOn(2, "Food", 999, asOf.AddDate(0, -1, 0)),
		&transaction.Transaction{UserID: 1, Amount: 5000, Kind: transaction.KindIncome, Category: "Food", Date: asOf.AddDate(0, -1, 0)},
	)

	svc := NewAnalyticsService(repo, testLogger())
	svc.now = fixedNow(asOf)

	series, err := svc.AggregateMonthlySpending(context.Background(), 1, "Food", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series == nil {
		t.Fatal("expected a series, got nil")
	}
	if len(series.Points) != 3 {
		t.Fatalf("expected 3 monthly points, got %d", len(series.Points))
	}
	want := []float64{1000, 1100, 1200}
	for i, p := range series.Points {
		if p.Total != want[i] {
			t.Errorf("point %d: total = %v, want %v", i, p.Total, want[i])
		}
	}
	for i := 1; i < len(series.Points); i++ {
		if series.Points[i-1].Month >= series.Points[i].Month {
			t.Errorf("months out of order: %s before %s", series.Points[i-1].Month, series.Points[i].Month)
		}
	}
}

func TestAggregateMonthlySpendingNoData(t *testing.T) {
	svc := NewAnalyticsService(&memTransactionRepo{}, testLogger())

	series, err := svc.AggregateMonthlySpending(context.Background(), 1, "Food", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series != nil {
		t.Fatalf("expected nil series for empty history, got %+v", series)
	}
}

func TestAggregateMonthlySpendingNegativeLookback(t *testing.T) {
	svc := NewAnalyticsService(&memTransactionRepo{}, testLogger())

	_, err := svc.AggregateMonthlySpending(context.Background(), 1, "Food", -1)
	if !errors.Is(err, ErrInvalidLookback) {
		t.Fatalf("expected ErrInvalidLookback, got %v", err)
	}
}

func TestAnalyzeTrendRisingSeries(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	repo := &memTransactionRepo{txs: monthlyExpenses(1, "Food", asOf, 1000, 1100, 1200)}
	svc := NewAnalyticsService(repo, testLogger())
	svc.now = fixedNow(asOf)

	trend, err := svc.AnalyzeCategorySpending(context.Background(), 1, "Food", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend == nil {
		t.Fatal("expected a trend, got nil")
	}
	if !almostEqual(trend.AverageSpending, 1100) {
		t.Errorf("average = %v, want 1100", trend.AverageSpending)
	}
	if !almostEqual(trend.TrendSlope, 100) {
		t.Errorf("slope = %v, want 100", trend.TrendSlope)
	}
	// Next index on the fitted line: 100*3 + 1000.
	if !almostEqual(trend.PredictedNext, 1300) {
		t.Errorf("predicted = %v, want 1300", trend.PredictedNext)
	}
}

func TestAnalyzeTrendSinglePointIsFlat(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	repo := &memTransactionRepo{txs: monthlyExpenses(1, "Food", asOf, 750)}
	svc := NewAnalyticsService(repo, testLogger())
	svc.now = fixedNow(asOf)

	trend, err := svc.AnalyzeCategorySpending(context.Background(), 1, "Food", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.TrendSlope != 0 {
		t.Errorf("slope = %v, want 0 for one point", trend.TrendSlope)
	}
	if !almostEqual(trend.PredictedNext, 750) {
		t.Errorf("predicted = %v, want 750", trend.PredictedNext)
	}
}

func TestSuggestBudget(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		amounts       []float64
		wantSuggested float64
	}{
		{"rising pads by 10%", []float64{1000, 1100, 1200}, 1210}, // 1100 * 1.10
		{"falling trims by 10%", []float64{500, 400, 400}, 390},   // 433.33 * 0.90
		{"flat keeps the average", []float64{600, 600, 600}, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memTransactionRepo{txs: monthlyExpenses(1, "Food", asOf, tt.amounts...)}
			svc := NewAnalyticsService(repo, testLogger())
			svc.now = fixedNow(asOf)

			rec, err := svc.SuggestBudget(context.Background(), 1, "Food")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec == nil {
				t.Fatal("expected a recommendation, got nil")
			}
			if !almostEqual(rec.SuggestedAmount, tt.wantSuggested) {
				t.Errorf("suggested = %v, want %v", rec.SuggestedAmount, tt.wantSuggested)
			}
			if rec.Confidence < 0 || rec.Confidence > 1 {
				t.Errorf("confidence = %v, want within [0, 1]", rec.Confidence)
			}
		})
	}
}

func TestSuggestBudgetNoHistory(t *testing.T) {
	svc := NewAnalyticsService(&memTransactionRepo{}, testLogger())

	rec, err := svc.SuggestBudget(context.Background(), 1, "Food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil recommendation, got %+v", rec)
	}
}

func TestCategoryRecommendationsRankedByConfidence(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	repo := &memTransactionRepo{}
	// Steep relative trend for Transport, shallow one for Food.
	repo.txs = append(repo.txs, monthlyExpenses(1, "Food", asOf, 1000, 1010, 1020)...)
	repo.txs = append(repo.txs, monthlyExpenses(1, "Transport", asOf, 100, 200, 300)...)

	svc := NewAnalyticsService(repo, testLogger())
	svc.now = fixedNow(asOf)

	recs, err := svc.CategoryRecommendations(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Category != "Transport" {
		t.Errorf("expected Transport ranked first, got %s", recs[0].Category)
	}
	if recs[0].Confidence < recs[1].Confidence {
		t.Errorf("recommendations not sorted by confidence: %v then %v", recs[0].Confidence, recs[1].Confidence)
	}
}

func TestOptimizeBudgetProportionalAllocation(t *testing.T) {
	asOf := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	repo := &memTransactionRepo{}
	repo.txs = append(repo.txs, monthlyExpenses(1, "Food", asOf, 1000, 1100, 1200)...)    // suggested 1210
	repo.txs = append(repo.txs, monthlyExpenses(1, "Transport", asOf, 500, 400, 400)...) // suggested 390

	svc := NewAnalyticsService(repo, testLogger())
	svc.now = fixedNow(asOf)

	allocated, err := svc.OptimizeBudget(context.Background(), 1, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allocated) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocated))
	}

	byCategory := make(map[string]float64)
	var sum float64
	for _, a := range allocated {
		byCategory[a.Category] = a.OptimizedAmount
		sum += a.OptimizedAmount
	}
	// 2000 split proportionally over suggested 1210 and 390.
	if !almostEqual(byCategory["Food"], 1512.5) {
		t.Errorf("Food allocation = %v, want 1512.5", byCategory["Food"])
	}
	if !almostEqual(byCategory["Transport"], 487.5) {
		t.Errorf("Transport allocation = %v, want 487.5", byCategory["Transport"])
	}
	if !almostEqual(sum, 2000) {
		t.Errorf("allocations sum to %v, want the full total 2000", sum)
	}
}

func TestOptimizeBudgetInvalidTotal(t *testing.T) {
	svc := NewAnalyticsService(&memTransactionRepo{}, testLogger())

	for _, total := range []float64{0, -50} {
		if _, err := svc.OptimizeBudget(context.Background(), 1, total); !errors.Is(err, ErrInvalidTotalBudget) {
			t.Errorf("total %v: expected ErrInvalidTotalBudget, got %v", total, err)
		}
	}
}

func TestOptimizeBudgetNothingToAllocate(t *testing.T) {
	svc := NewAnalyticsService(&memTransactionRepo{}, testLogger())

	allocated, err := svc.OptimizeBudget(context.Background(), 1, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allocated != nil {
		t.Fatalf("expected nil allocation for empty history, got %+v", allocated)
	}
}

func TestConfidenceBounds(t *testing.T) {
	tests := []struct {
		name    string
		slope   float64
		average float64
		want    float64
	}{
		{"zero average", 100, 0, 0},
		{"negative slope uses magnitude", -55, 110, 0.5},
		{"steep slope clamps to one", 900, 100, 1},
		{"flat trend", 0, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidence(tt.slope, tt.average); !almostEqual(got, tt.want) {
				t.Errorf("confidence(%v, %v) = %v, want %v", tt.slope, tt.average, got, tt.want)
			}
		})
	}
}
