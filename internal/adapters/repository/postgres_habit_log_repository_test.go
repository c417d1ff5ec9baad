package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

func TestPostgresLogRepository_Integration(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	repo := NewPostgresLogRepository(db)
	habitRepo := NewPostgresHabitRepository(db)

	uid := seedUser(t, db)
	habit := mustNewHabit(t, uid, "Stretching")
	require.NoError(t, habitRepo.Create(ctx, habit))

	day := func(n int) time.Time {
		return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
	}

	t.Run("Full CRUD Lifecycle & Soft Delete", func(t *testing.T) {
		log := domain.NewHabitLog(habit.ID, uid, day(1), domain.StatusCompleted, 1)
		log.Notes = "Original Note"
		require.NoError(t, repo.Create(ctx, log))
		assert.NotEmpty(t, log.ID, "Create must assign an ID when the client sends none")

		fetched, err := repo.GetByID(ctx, log.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original Note", fetched.Notes)
		assert.Equal(t, 1, fetched.Version)

		fetched.Status = domain.StatusPartial
		fetched.Notes = "Updated Note"
		require.NoError(t, repo.Update(ctx, fetched))
		assert.Equal(t, 2, fetched.Version)

		updated, err := repo.GetByID(ctx, log.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPartial, updated.Status)
		assert.Equal(t, 2, updated.Version)

		require.NoError(t, repo.Delete(ctx, log.ID, uid))

		_, err = repo.GetByID(ctx, log.ID)
		assert.ErrorIs(t, err, domain.ErrLogNotFound)

		var exists bool
		err = db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM habit_logs WHERE id=$1 AND deleted_at IS NOT NULL)", log.ID)
		require.NoError(t, err)
		assert.True(t, exists, "Record must remain physically in DB with deleted_at for sync purposes")
	})

	t.Run("Unique Constraint: one log per habit per day", func(t *testing.T) {
		first := domain.NewHabitLog(habit.ID, uid, day(2), domain.StatusCompleted, 1)
		require.NoError(t, repo.Create(ctx, first))

		dup := domain.NewHabitLog(habit.ID, uid, day(2), domain.StatusMissed, 0)
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrLogConflict)
	})

	t.Run("Optimistic Locking: Version Conflict", func(t *testing.T) {
		log := domain.NewHabitLog(habit.ID, uid, day(3), domain.StatusMissed, 0)
		require.NoError(t, repo.Create(ctx, log))

		clientA, err := repo.GetByID(ctx, log.ID)
		require.NoError(t, err)
		clientB, err := repo.GetByID(ctx, log.ID)
		require.NoError(t, err)

		clientA.Status = domain.StatusCompleted
		require.NoError(t, repo.Update(ctx, clientA))

		clientB.Status = domain.StatusSkipped
		err = repo.Update(ctx, clientB)
		assert.ErrorIs(t, err, domain.ErrLogConflict, "Update must fail if base version on DB (2) != expected previous version (1)")
	})

	t.Run("Security: Delete enforces ownership", func(t *testing.T) {
		log := domain.NewHabitLog(habit.ID, uid, day(4), domain.StatusCompleted, 1)
		require.NoError(t, repo.Create(ctx, log))

		assert.ErrorIs(t, repo.Delete(ctx, log.ID, "intruder"), domain.ErrLogNotFound)

		_, err := repo.GetByID(ctx, log.ID)
		assert.NoError(t, err, "A foreign delete attempt must leave the record intact")
	})

	t.Run("List Methods: Worker vs API", func(t *testing.T) {
		localHabit := mustNewHabit(t, uid, "Isolated Habit")
		require.NoError(t, habitRepo.Create(ctx, localHabit))

		for _, n := range []int{10, 13, 15} {
			log := domain.NewHabitLog(localHabit.ID, uid, day(n), domain.StatusCompleted, 1)
			require.NoError(t, repo.Create(ctx, log))
		}

		workerList, err := repo.ListByHabitID(ctx, localHabit.ID)
		require.NoError(t, err)
		assert.Len(t, workerList, 3, "Worker should see the complete history")
		assert.Equal(t, day(10), workerList[0].Date, "History must be ordered oldest first")

		apiList, err := repo.ListByUserIDAndDateRange(ctx, uid, day(12), day(16))
		require.NoError(t, err)

		found := 0
		for _, l := range apiList {
			if l.HabitID == localHabit.ID {
				found++
			}
		}
		assert.Equal(t, 2, found, "Range query should filter by log_date inclusively")
	})

	t.Run("Sync Engine: GetChanges Delta", func(t *testing.T) {
		checkpoint := time.Now().UTC()
		time.Sleep(10 * time.Millisecond)

		log := domain.NewHabitLog(habit.ID, uid, day(20), domain.StatusCompleted, 1)
		log.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Create(ctx, log))

		changes, err := repo.GetChanges(ctx, uid, checkpoint)
		require.NoError(t, err)

		found := false
		for _, c := range changes {
			if c.ID == log.ID {
				found = true
			}
		}
		assert.True(t, found, "GetChanges must return records created after the checkpoint")
	})
}
