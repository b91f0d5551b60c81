// Package analytics holds the derived, non-persisted result types produced by
// the budget analytics path: trend analyses, recommendations, allocations and
// budget performance snapshots.
package analytics

import "time"

// MonthPoint is one month of aggregated spending. Month uses the YYYY-MM key.
type MonthPoint struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlySeries is an ordered per-month spending series for one category.
// Only months with at least one transaction appear; order is chronological.
type MonthlySeries struct {
	Category string       `json:"category"`
	Points   []MonthPoint `json:"points"`
}

// Totals returns the amounts in chronological order.
func (s *MonthlySeries) Totals() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Total
	}
	return out
}

// TrendAnalysis is the OLS fit over a monthly series.
type TrendAnalysis struct {
	Category        string       `json:"category"`
	MonthlyTotals   []MonthPoint `json:"monthly_totals"`
	AverageSpending float64      `json:"average_spending"`
	TrendSlope      float64      `json:"trend_slope"`
	PredictedNext   float64      `json:"predicted_next_period"`
}

// Recommendation is a suggested budget for one category.
type Recommendation struct {
	Category        string  `json:"category"`
	SuggestedAmount float64 `json:"suggested_amount"`
	AverageSpending float64 `json:"average_spending"`
	TrendSlope      float64 `json:"trend_slope"`
	Confidence      float64 `json:"confidence"` // always in [0,1]
}

// AllocatedBudget is one category's share of a fixed total budget.
type AllocatedBudget struct {
	Category        string  `json:"category"`
	SuggestedAmount float64 `json:"suggested_amount"`
	OptimizedAmount float64 `json:"optimized_amount"`
	Confidence      float64 `json:"confidence"`
}

// DayPoint is one day of spending inside a budget window.
type DayPoint struct {
	Day   string  `json:"day"` // YYYY-MM-DD
	Total float64 `json:"total"`
}

// Performance is a live snapshot of one budget against its limit.
// Remaining is deliberately unclamped and goes negative on overrun, while
// PercentUsed is clamped to 100 for display.
type Performance struct {
	BudgetID          int64      `json:"budget_id"`
	Category          string     `json:"category"`
	TotalBudget       float64    `json:"total_budget"`
	TotalSpent        float64    `json:"total_spent"`
	Remaining         float64    `json:"remaining"`
	PercentUsed       float64    `json:"percent_used"`
	DailyAverage      float64    `json:"daily_average"`
	RemainingDays     int        `json:"remaining_days"`
	ProjectedSpending float64    `json:"projected_spending"`
	DailySpending     []DayPoint `json:"daily_spending"`
	AsOf              time.Time  `json:"as_of"`
}
