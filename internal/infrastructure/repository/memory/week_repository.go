package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gridironpool/pickem/internal/domain/week"
)

type WeekRepository struct {
	mu    sync.RWMutex
	items []week.Week
}

func NewWeekRepository(weeks []week.Week) *WeekRepository {
	items := make([]week.Week, len(weeks))
	copy(items, weeks)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return &WeekRepository{items: items}
}

func (r *WeekRepository) List(_ context.Context) ([]week.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]week.Week, len(r.items))
	copy(out, r.items)

	return out, nil
}

func (r *WeekRepository) GetByTime(_ context.Context, at time.Time) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.items {
		if w.Contains(at) {
			return w, true, nil
		}
	}

	return week.Week{}, false, nil
}
