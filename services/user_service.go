package services

import (
	"context"
	"fmt"
	"time"

	"github.com/spotlist/api-go/models"
)

// UserOverview is the admin listing row for a user.
type UserOverview struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"createdAt"`
	NumberOfPosts      int64     `json:"numberOfPosts"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
}

// RecentSignupWindow is how far back ListRecentUsers looks.
const RecentSignupWindow = 30 * 24 * time.Hour

type UserService struct {
	users         UserRepository
	admins        AdminRepository
	subscriptions SubscriptionRepository
	posts         *PostService
	now           func() time.Time
}

func NewUserService(users UserRepository, admins AdminRepository, subscriptions SubscriptionRepository, posts *PostService) *UserService {
	return &UserService{
		users:         users,
		admins:        admins,
		subscriptions: subscriptions,
		posts:         posts,
		now:           time.Now,
	}
}

// ResolveActor loads the identity record behind an authenticated token. The
// kind selects the table, so a user id can never resolve to an admin.
func (s *UserService) ResolveActor(ctx context.Context, kind ActorKind, id uint) (*Actor, error) {
	switch kind {
	case ActorAdmin:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return AdminActor(admin), nil
	case ActorUser:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return UserActor(user), nil
	default:
		return nil, ErrNotAuthorized
	}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns users with their post count and derived subscription
// status, optionally bounded by creation time.
func (s *UserService) ListUsers(ctx context.Context, actor *Actor, filter UserFilter) ([]UserOverview, error) {
	if err := actor.require(CapListUsers); err != nil {
		return nil, err
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return nil, NewValidationError("createdTo", "createdTo must not be before createdFrom")
	}

	rows, err := s.users.ListWithStats(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	subs, err := s.subscriptions.ListByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]UserOverview, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserOverview{
			ID:                 r.ID,
			Name:               r.Name,
			Email:              r.Email,
			CreatedAt:          r.CreatedAt,
			NumberOfPosts:      r.NumberOfPosts,
			SubscriptionStatus: ResolveSubscriptionStatus(subs[r.ID], now),
		})
	}
	return out, nil
}

// ListRecentUsers lists users created within RecentSignupWindow.
func (s *UserService) ListRecentUsers(ctx context.Context, actor *Actor) ([]UserOverview, error) {
	from := s.now().Add(-RecentSignupWindow)
	return s.ListUsers(ctx, actor, UserFilter{CreatedFrom: &from})
}

// Delete removes a user after deleting each of their posts together with the
// reports filed against them. It stops at the first post that fails, leaving
// the user in place so the call can be retried.
func (s *UserService) Delete(ctx context.Context, actor *Actor, id uint) error {
	if err := actor.require(CapDeleteUsers); err != nil {
		return err
	}
	if id == 0 {
		return NewValidationError("id", "user ID is required")
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	posts, err := s.posts.ListByUser(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range posts {
		err := s.posts.Delete(ctx, actor, p.ID)
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("delete post %d of user %d: %w", p.ID, id, err)
		}
	}
	return s.users.Delete(ctx, id)
}
