package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spotlist/api-go/models"
)

const defaultReconcileBatch = 50

// Reconciler applies cascade tasks: closing every report on a post after one
// of them was approved, and deleting the reports of a deleted post. Each
// step is idempotent, so a task can be re-run any number of times.
type Reconciler struct {
	posts     PostRepository
	reports   ReportRepository
	cascades  CascadeRepository
	now       func() time.Time
	batchSize int
}

func NewReconciler(posts PostRepository, reports ReportRepository, cascades CascadeRepository) *Reconciler {
	return &Reconciler{
		posts:     posts,
		reports:   reports,
		cascades:  cascades,
		now:       time.Now,
		batchSize: defaultReconcileBatch,
	}
}

// ReconcileSiblings makes sure the post is inactive and every report on it
// is approved by the given admin at the given time.
func (r *Reconciler) ReconcileSiblings(ctx context.Context, postID, adminID uint, at time.Time) error {
	if _, err := r.posts.Deactivate(ctx, postID); err != nil {
		return err
	}
	if _, err := r.reports.CloseByPost(ctx, postID, adminID, at); err != nil {
		return err
	}
	return nil
}

// Apply runs one cascade task and records the outcome on it.
func (r *Reconciler) Apply(ctx context.Context, task *models.CascadeTask) error {
	if task == nil {
		return nil
	}

	var err error
	switch task.Kind {
	case models.CascadeCloseReports:
		if task.HandledByID == nil || task.HandledAt == nil {
			err = fmt.Errorf("cascade task %d is missing its handler", task.ID)
			break
		}
		err = r.ReconcileSiblings(ctx, task.PostID, *task.HandledByID, *task.HandledAt)
	case models.CascadeDeleteReports:
		_, err = r.reports.DeleteByPost(ctx, task.PostID)
	default:
		err = fmt.Errorf("unknown cascade task kind %q", task.Kind)
	}

	if err != nil {
		if markErr := r.cascades.MarkFailed(ctx, task.ID, err.Error()); markErr != nil {
			log.Printf("Failed to record failure of cascade task %d: %v", task.ID, markErr)
		}
		return err
	}
	return r.cascades.MarkDone(ctx, task.ID, r.now())
}

// RunPending re-applies every incomplete cascade task and returns how many
// completed.
func (r *Reconciler) RunPending(ctx context.Context) (int, error) {
	tasks, err := r.cascades.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range tasks {
		if err := r.Apply(ctx, &tasks[i]); err != nil {
			log.Printf("Cascade task %d (%s, post %d) failed: %v", tasks[i].ID, tasks[i].Kind, tasks[i].PostID, err)
			continue
		}
		done++
	}
	return done, nil
}

// Start runs RunPending on every tick until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := r.RunPending(ctx)
				if err != nil {
					log.Printf("Reconcile pass failed: %v", err)
				} else if n > 0 {
					log.Printf("Reconciled %d cascade task(s)", n)
				}
			}
		}
	}()
}
