package repository

import (
	"context"
	"time"

	"github.com/spotlist/api-go/models"
	"github.com/spotlist/api-go/services"
	"gorm.io/gorm"
)

type UserRepository struct {
	base
}

func NewUserRepository(db *gorm.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{base: newBase(db, timeout)}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	err := db.First(&user, id).Error
	if isNotFound(err) {
		return nil, services.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, transient("get user", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var users []models.User
	if err := db.Where("email = ?", email).Limit(1).Find(&users).Error; err != nil {
		return nil, transient("get user by email", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

type userStatsRow struct {
	ID            uint
	Name          string
	Email         string
	CreatedAt     time.Time
	NumberOfPosts int64
}

func applyUserFilter(q *gorm.DB, f services.UserFilter) *gorm.DB {
	if f.CreatedFrom != nil {
		q = q.Where("users.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("users.created_at <= ?", *f.CreatedTo)
	}
	return q
}

func (r *UserRepository) ListWithStats(ctx context.Context, filter services.UserFilter) ([]services.UserStats, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var rows []userStatsRow
	q := db.Model(&models.User{}).
		Select("users.id, users.name, users.email, users.created_at, COUNT(posts.id) AS number_of_posts").
		Joins("LEFT JOIN posts ON posts.user_id = users.id")
	err := applyUserFilter(q, filter).
		Group("users.id").
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, transient("list users", err)
	}

	out := make([]services.UserStats, len(rows))
	for i, row := range rows {
		out[i] = services.UserStats{
			User: models.User{
				ID:        row.ID,
				Name:      row.Name,
				Email:     row.Email,
				CreatedAt: row.CreatedAt,
			},
			NumberOfPosts: row.NumberOfPosts,
		}
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return transient("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return services.NewNotFoundError("user", id)
	}
	return nil
}

type AdminRepository struct {
	base
}

func NewAdminRepository(db *gorm.DB, timeout time.Duration) *AdminRepository {
	return &AdminRepository{base: newBase(db, timeout)}
}

func (r *AdminRepository) GetByID(ctx context.Context, id uint) (*models.AdminUser, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var admin models.AdminUser
	err := db.First(&admin, id).Error
	if isNotFound(err) {
		return nil, services.NewNotFoundError("admin user", id)
	}
	if err != nil {
		return nil, transient("get admin user", err)
	}
	return &admin, nil
}

type SubscriptionRepository struct {
	base
}

func NewSubscriptionRepository(db *gorm.DB, timeout time.Duration) *SubscriptionRepository {
	return &SubscriptionRepository{base: newBase(db, timeout)}
}

func (r *SubscriptionRepository) ListByUsers(ctx context.Context, userIDs []uint) (map[uint][]models.PaymentSubscription, error) {
	out := make(map[uint][]models.PaymentSubscription)
	if len(userIDs) == 0 {
		return out, nil
	}

	db, cancel := r.conn(ctx)
	defer cancel()

	var subs []models.PaymentSubscription
	if err := db.Where("user_id IN ?", userIDs).Find(&subs).Error; err != nil {
		return nil, transient("list subscriptions", err)
	}
	for _, s := range subs {
		out[s.UserID] = append(out[s.UserID], s)
	}
	return out, nil
}
