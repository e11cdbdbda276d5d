package repository

import (
	"context"
	"time"

	"github.com/spotlist/api-go/models"
	"gorm.io/gorm"
)

type CascadeRepository struct {
	base
}

func NewCascadeRepository(db *gorm.DB, timeout time.Duration) *CascadeRepository {
	return &CascadeRepository{base: newBase(db, timeout)}
}

func (r *CascadeRepository) ListPending(ctx context.Context, limit int) ([]models.CascadeTask, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var tasks []models.CascadeTask
	err := db.Where("completed_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, transient("list cascade tasks", err)
	}
	return tasks, nil
}

func (r *CascadeRepository) MarkDone(ctx context.Context, id uint, at time.Time) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	err := db.Model(&models.CascadeTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed_at": at,
			"last_error":   "",
		}).Error
	return transient("complete cascade task", err)
}

func (r *CascadeRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	err := db.Model(&models.CascadeTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": reason,
		}).Error
	return transient("fail cascade task", err)
}
