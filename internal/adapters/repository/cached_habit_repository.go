package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const (
	habitListKeyPrefix = "habits:"
	habitListTTL       = 30 * time.Minute
)

// CachedHabitRepository caches the per-user habit list in Redis in front of
// the Postgres repository. The list is read on every insights request but
// changes rarely, so it is the only thing worth caching; every write path
// drops the key and lets the next read repopulate it.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{next: next, cache: cache}
}

func habitListKey(userID string) string {
	return habitListKeyPrefix + userID
}

func (r *CachedHabitRepository) dropList(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, habitListKey(userID)).Err(); err != nil {
		log.Printf("cache: drop habit list for user %s: %v", userID, err)
	}
}

// dropListByHabit resolves the owner first; used by the ID-only write paths.
func (r *CachedHabitRepository) dropListByHabit(ctx context.Context, habitID string) {
	habit, err := r.next.GetByID(ctx, habitID)
	if err != nil || habit == nil {
		return
	}
	r.dropList(ctx, habit.UserID)
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := habitListKey(userID)

	raw, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var habits []*domain.Habit
		if jsonErr := json.Unmarshal(raw, &habits); jsonErr == nil {
			return habits, nil
		}
		log.Printf("cache: corrupted habit list for user %s, dropping key", userID)
		r.cache.Del(ctx, key)
	case err != redis.Nil:
		log.Printf("cache: read error: %v", err)
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(habits); jsonErr == nil {
		if setErr := r.cache.Set(ctx, key, data, habitListTTL).Err(); setErr != nil {
			log.Printf("cache: write error: %v", setErr)
		}
	}

	return habits, nil
}

// Single-habit reads and sync deltas bypass the cache entirely.

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.dropList(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.dropList(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	r.dropListByHabit(ctx, id)
	return r.next.Delete(ctx, id)
}

// UpdateStreaks comes from the stats worker rather than a user request, but
// the cached list embeds the streak counters, so it invalidates too.
func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	if err := r.next.UpdateStreaks(ctx, id, current, longest); err != nil {
		return err
	}
	r.dropListByHabit(ctx, id)
	return nil
}
