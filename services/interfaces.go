package services

import (
	"context"
	"io"
	"time"

	"github.com/spotlist/api-go/models"
)

// PostFilter narrows post listings. Nil pointers and empty strings are
// treated as unset; an explicit zero is a real bound.
type PostFilter struct {
	UserID         *uint
	Approved       *bool
	Active         *bool
	PriceMin       *float64
	PriceMax       *float64
	BedCount       *int
	BathCount      *int
	NumberOfSpots  *int
	StartDateRange *time.Time
	EndDateRange   *time.Time
	City           string
	State          string
	Zip            string
	Title          string
	Description    string
}

// UserFilter bounds the admin user listing by creation time. Both bounds
// are inclusive.
type UserFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ReportFilter struct {
	UserID *uint
	PostID *uint
	Status string
}

// ReportDecision is the write applied when an admin adjudicates a report.
type ReportDecision struct {
	ReportID  uint
	Status    string
	HandledBy uint
	HandledAt time.Time
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)

	// List returns posts matching the filter, newest first, with owner and
	// approving admin populated.
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)

	// Update applies column updates; returns a NotFoundError if no row matched.
	Update(ctx context.Context, id uint, fields map[string]interface{}) error

	// Approve sets approved/approvedBy/approvedAt only if the post is still
	// unapproved and active. It reports whether the row changed.
	Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error)

	// Deactivate clears active only if it is currently set.
	Deactivate(ctx context.Context, id uint) (bool, error)

	// Delete removes the post and records a delete_reports cascade task in the
	// same transaction. Returns a NotFoundError if the post does not exist.
	Delete(ctx context.Context, id uint) (*models.CascadeTask, error)
}

type ReportRepository interface {
	// Create returns ErrDuplicateReport when the (user, post) index fires.
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)

	// FindByUserAndPost returns nil, nil when no report exists.
	FindByUserAndPost(ctx context.Context, userID, postID uint) (*models.Report, error)

	// List returns reports newest first with reporter, post (and its owner)
	// and handler populated.
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	Delete(ctx context.Context, ids []uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)

	// Decide moves a pending report to the decision's status. When the status
	// is approved a close_reports cascade task is written in the same
	// transaction and returned.
	Decide(ctx context.Context, d ReportDecision) (bool, *models.CascadeTask, error)

	// CloseByPost forces every report on the post to approved.
	CloseByPost(ctx context.Context, postID, adminID uint, at time.Time) (int64, error)
}

type CascadeRepository interface {
	ListPending(ctx context.Context, limit int) ([]models.CascadeTask, error)
	MarkDone(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error
}

// UserStats is a user row with aggregated post count.
type UserStats struct {
	models.User
	NumberOfPosts int64
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListWithStats(ctx context.Context, filter UserFilter) ([]UserStats, error)

	// Delete removes the user row; returns a NotFoundError if none matched.
	Delete(ctx context.Context, id uint) error
}

type AdminRepository interface {
	GetByID(ctx context.Context, id uint) (*models.AdminUser, error)
}

type SubscriptionRepository interface {
	// ListByUsers groups subscription records by user id.
	ListByUsers(ctx context.Context, userIDs []uint) (map[uint][]models.PaymentSubscription, error)
}

// Photo is an uploaded image waiting to be stored.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PhotoStorage interface {
	Upload(ctx context.Context, ownerID uint, photos []Photo) ([]string, error)
}

// Notifier delivers email asynchronously. Send must not block on delivery.
type Notifier interface {
	Send(recipients []string, subject, summary, body string)
}
