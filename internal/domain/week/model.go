package week

import "time"

// Week is one scoring period. Weeks are identified by small integers and
// bounded by [StartAt, EndAt]; a moment belongs to the week whose bounds
// contain it.
type Week struct {
	ID      int
	StartAt time.Time
	EndAt   time.Time
}

func (w Week) Contains(at time.Time) bool {
	return !at.Before(w.StartAt) && !at.After(w.EndAt)
}
