package goal

import "time"

// Priority orders goals for presentation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Goal is a savings target with a deadline.
type Goal struct {
	ID            int64
	UserID        int64
	Name          string
	TargetAmount  float64 // always positive
	CurrentAmount float64 // never negative
	Deadline      time.Time
	Priority      Priority
	CreatedAt     time.Time
}

// Progress returns completion as a percentage. A zero target is treated as 0%
// rather than dividing by zero.
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

// DaysLeft returns whole days from today until the deadline, negative if past.
func (g *Goal) DaysLeft(today time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(g.Deadline.Year(), g.Deadline.Month(), g.Deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}
