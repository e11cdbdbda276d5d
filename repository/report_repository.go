package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spotlist/api-go/models"
	"github.com/spotlist/api-go/services"
	"gorm.io/gorm"
)

type ReportRepository struct {
	base
}

func NewReportRepository(db *gorm.DB, timeout time.Duration) *ReportRepository {
	return &ReportRepository{base: newBase(db, timeout)}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	err := db.Create(report).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return services.ErrDuplicateReport
	}
	return transient("create report", err)
}

func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var report models.Report
	err := db.First(&report, id).Error
	if isNotFound(err) {
		return nil, services.NewNotFoundError("report", id)
	}
	if err != nil {
		return nil, transient("get report", err)
	}
	return &report, nil
}

func (r *ReportRepository) FindByUserAndPost(ctx context.Context, userID, postID uint) (*models.Report, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var reports []models.Report
	err := db.Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).
		Find(&reports).Error
	if err != nil {
		return nil, transient("find report", err)
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

func (r *ReportRepository) List(ctx context.Context, f services.ReportFilter) ([]models.Report, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	q := db.Model(&models.Report{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.PostID != nil {
		q = q.Where("post_id = ?", *f.PostID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var reports []models.Report
	err := q.Preload("User", userSummary).
		Preload("Post").
		Preload("Post.User", userSummary).
		Preload("HandledBy", adminSummary).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, transient("list reports", err)
	}
	return reports, nil
}

func (r *ReportRepository) Delete(ctx context.Context, ids []uint) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Where("id IN ?", ids).Delete(&models.Report{})
	if res.Error != nil {
		return 0, transient("delete reports", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ReportRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Where("post_id = ?", postID).Delete(&models.Report{})
	if res.Error != nil {
		return 0, transient("delete post reports", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ReportRepository) Decide(ctx context.Context, d services.ReportDecision) (bool, *models.CascadeTask, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var (
		applied bool
		task    *models.CascadeTask
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", d.ReportID, models.ReportStatusPending).
			Updates(map[string]interface{}{
				"status":        d.Status,
				"handled_by_id": d.HandledBy,
				"handled_at":    d.HandledAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if d.Status != models.ReportStatusApproved {
			return nil
		}

		var report models.Report
		if err := tx.Select("id", "post_id").First(&report, d.ReportID).Error; err != nil {
			return err
		}
		handledBy, handledAt := d.HandledBy, d.HandledAt
		task = &models.CascadeTask{
			Kind:        models.CascadeCloseReports,
			PostID:      report.PostID,
			HandledByID: &handledBy,
			HandledAt:   &handledAt,
		}
		return tx.Create(task).Error
	})
	if err != nil {
		return false, nil, transient("decide report", err)
	}
	return applied, task, nil
}

func (r *ReportRepository) CloseByPost(ctx context.Context, postID, adminID uint, at time.Time) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Report{}).
		Where("post_id = ?", postID).
		Updates(map[string]interface{}{
			"status":        models.ReportStatusApproved,
			"handled_by_id": adminID,
			"handled_at":    at,
		})
	if res.Error != nil {
		return 0, transient("close post reports", res.Error)
	}
	return res.RowsAffected, nil
}
