package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gridironpool/pickem/internal/domain/pick"
)

type pickKey struct {
	userID string
	gameID string
}

// PickRepository needs a GameRepository to serve the joined listing; the
// memory backend has no query planner to lean on.
type PickRepository struct {
	mu    sync.RWMutex
	items map[pickKey]pick.Pick

	games *GameRepository
}

func NewPickRepository(games *GameRepository, picks []pick.Pick) *PickRepository {
	items := make(map[pickKey]pick.Pick, len(picks))
	for _, p := range picks {
		items[pickKey{userID: p.UserID, gameID: p.GameID}] = p
	}

	return &PickRepository{
		items: items,
		games: games,
	}
}

func (r *PickRepository) List(_ context.Context) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(func(pick.Pick) bool { return true }), nil
}

func (r *PickRepository) ListByGameIDs(_ context.Context, gameIDs []string) ([]pick.Pick, error) {
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(func(p pick.Pick) bool {
		_, ok := wanted[p.GameID]
		return ok
	}), nil
}

func (r *PickRepository) ListByUser(_ context.Context, userID string, gameIDs []string) ([]pick.Pick, error) {
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(func(p pick.Pick) bool {
		if p.UserID != userID {
			return false
		}
		if len(wanted) == 0 {
			return true
		}
		_, ok := wanted[p.GameID]
		return ok
	}), nil
}

func (r *PickRepository) ListByUserWithGames(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	picks, err := r.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	out := make([]pick.WithGame, 0, len(picks))
	for _, p := range picks {
		joined := pick.WithGame{Pick: p}
		g, found, err := r.games.GetByID(ctx, p.GameID)
		if err != nil {
			return nil, err
		}
		if found {
			if weekID != nil && g.Week != *weekID {
				continue
			}
			joined.Game = &g
		} else if weekID != nil {
			// orphan picks only show up in the unscoped listing
			continue
		}
		out = append(out, joined)
	}

	return out, nil
}

func (r *PickRepository) Upsert(_ context.Context, picks []pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range picks {
		r.items[pickKey{userID: p.UserID, gameID: p.GameID}] = p
	}

	return nil
}

// snapshot returns a stable ordering regardless of map iteration. Callers
// must hold at least the read lock.
func (r *PickRepository) snapshot(keep func(pick.Pick) bool) []pick.Pick {
	out := make([]pick.Pick, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].GameID < out[j].GameID
	})

	return out
}
