package repository

import (
	"context"
	"time"

	"github.com/spotlist/api-go/models"
	"github.com/spotlist/api-go/services"
	"gorm.io/gorm"
)

type PostRepository struct {
	base
}

func NewPostRepository(db *gorm.DB, timeout time.Duration) *PostRepository {
	return &PostRepository{base: newBase(db, timeout)}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	if err := db.Create(post).Error; err != nil {
		return transient("create post", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var post models.Post
	err := db.Preload("User", userSummary).
		Preload("ApprovedBy", adminSummary).
		First(&post, id).Error
	if isNotFound(err) {
		return nil, services.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, transient("get post", err)
	}
	return &post, nil
}

func (r *PostRepository) List(ctx context.Context, f services.PostFilter) ([]models.Post, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	q := applyPostFilter(db.Model(&models.Post{}), f)

	var posts []models.Post
	err := q.Preload("User", userSummary).
		Preload("ApprovedBy", adminSummary).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, transient("list posts", err)
	}
	return posts, nil
}

func applyPostFilter(q *gorm.DB, f services.PostFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Approved != nil {
		q = q.Where("approved = ?", *f.Approved)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.BedCount != nil {
		q = q.Where("bed_count >= ?", *f.BedCount)
	}
	if f.BathCount != nil {
		q = q.Where("bath_count >= ?", *f.BathCount)
	}
	if f.NumberOfSpots != nil {
		q = q.Where("number_of_spots >= ?", *f.NumberOfSpots)
	}
	if f.StartDateRange != nil {
		q = q.Where("start_date_range >= ?", *f.StartDateRange)
	}
	if f.EndDateRange != nil {
		q = q.Where("end_date_range <= ?", *f.EndDateRange)
	}

	for _, m := range []struct{ column, value string }{
		{"city", f.City},
		{"state", f.State},
		{"zip", f.Zip},
		{"title", f.Title},
		{"description", f.Description},
	} {
		if m.value != "" {
			q = q.Where(m.column+" ILIKE ?", contains(m.value))
		}
	}
	return q
}

func (r *PostRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return transient("update post", res.Error)
	}
	if res.RowsAffected == 0 {
		return services.NewNotFoundError("post", id)
	}
	return nil
}

func (r *PostRepository) Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Post{}).
		Where("id = ? AND approved = ? AND active = ?", id, false, true).
		Updates(map[string]interface{}{
			"approved":       true,
			"approved_by_id": adminID,
			"approved_at":    at,
		})
	if res.Error != nil {
		return false, transient("approve post", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PostRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Post{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, transient("deactivate post", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PostRepository) Delete(ctx context.Context, id uint) (*models.CascadeTask, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var task *models.CascadeTask
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.NewNotFoundError("post", id)
		}

		task = &models.CascadeTask{Kind: models.CascadeDeleteReports, PostID: id}
		return tx.Create(task).Error
	})
	if services.IsNotFound(err) {
		return nil, err
	}
	if err != nil {
		return nil, transient("delete post", err)
	}
	return task, nil
}
