package workers

import (
	"context"
	"log"
)

// StatsRecalculator is implemented by the gamification service. The worker
// only schedules work; the formulas live with the analytics engine.
type StatsRecalculator interface {
	RecalculateHabit(ctx context.Context, habitID string) error
	RecalculateUser(ctx context.Context, userID string) error
}

type StatsJob struct {
	HabitID string
	UserID  string
}

// StatsWorker recomputes streaks and gamification state in the background
// after every log write, so request latency never pays for the recompute.
type StatsWorker struct {
	recalc StatsRecalculator
	jobs   chan StatsJob
}

func NewStatsWorker(recalc StatsRecalculator) *StatsWorker {
	return &StatsWorker{
		recalc: recalc,
		jobs:   make(chan StatsJob, 100),
	}
}

func (w *StatsWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Stats Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Stats Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StatsWorker) Enqueue(habitID, userID string) {
	select {
	case w.jobs <- StatsJob{HabitID: habitID, UserID: userID}:
	default:
		log.Printf("Stats Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StatsWorker) processJob(ctx context.Context, job StatsJob) {
	if err := w.recalc.RecalculateHabit(ctx, job.HabitID); err != nil {
		log.Printf("Worker Error recalculating habit %s: %v", job.HabitID, err)
	}

	if err := w.recalc.RecalculateUser(ctx, job.UserID); err != nil {
		log.Printf("Worker Error recalculating user stats %s: %v", job.UserID, err)
	}
}
