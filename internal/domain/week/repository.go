package week

import (
	"context"
	"time"
)

type Repository interface {
	List(ctx context.Context) ([]Week, error)
	GetByTime(ctx context.Context, at time.Time) (Week, bool, error)
}
