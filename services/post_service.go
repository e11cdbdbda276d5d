package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spotlist/api-go/models"
	"github.com/spotlist/api-go/notifications"
)

type CreatePostInput struct {
	Title          string
	Description    string
	Price          *float64
	BedCount       int
	BathCount      int
	NumberOfSpots  int
	StartDateRange time.Time
	EndDateRange   time.Time
	City           string
	State          string
	Zip            string
}

func (in CreatePostInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return NewValidationError("title", "title is required")
	case strings.TrimSpace(in.Description) == "":
		return NewValidationError("description", "description is required")
	case in.Price == nil:
		return NewValidationError("price", "price is required")
	case *in.Price < 0:
		return NewValidationError("price", "price cannot be negative")
	case in.BedCount < 0 || in.BathCount < 0 || in.NumberOfSpots < 0:
		return NewValidationError("counts", "bed, bath and spot counts cannot be negative")
	case strings.TrimSpace(in.City) == "":
		return NewValidationError("city", "city is required")
	case strings.TrimSpace(in.State) == "":
		return NewValidationError("state", "state is required")
	case strings.TrimSpace(in.Zip) == "":
		return NewValidationError("zip", "zip is required")
	case in.StartDateRange.IsZero() || in.EndDateRange.IsZero():
		return NewValidationError("dateRange", "startDateRange and endDateRange are required")
	case in.EndDateRange.Before(in.StartDateRange):
		return NewValidationError("dateRange", "endDateRange must not be before startDateRange")
	}
	return nil
}

// PostUpdate holds the only fields an update may touch. Nil means unchanged.
type PostUpdate struct {
	StartDateRange *time.Time
	EndDateRange   *time.Time
	Price          *float64
	BedCount       *int
	BathCount      *int
	NumberOfSpots  *int
}

func (u PostUpdate) fields() (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if u.StartDateRange != nil {
		fields["start_date_range"] = *u.StartDateRange
	}
	if u.EndDateRange != nil {
		fields["end_date_range"] = *u.EndDateRange
	}
	if u.StartDateRange != nil && u.EndDateRange != nil && u.EndDateRange.Before(*u.StartDateRange) {
		return nil, NewValidationError("dateRange", "endDateRange must not be before startDateRange")
	}
	if u.Price != nil {
		if *u.Price < 0 {
			return nil, NewValidationError("price", "price cannot be negative")
		}
		fields["price"] = *u.Price
	}
	for name, v := range map[string]*int{
		"bed_count":       u.BedCount,
		"bath_count":      u.BathCount,
		"number_of_spots": u.NumberOfSpots,
	} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, NewValidationError(name, "value cannot be negative")
		}
		fields[name] = *v
	}
	return fields, nil
}

type PostService struct {
	posts      PostRepository
	users      UserRepository
	photos     PhotoStorage
	notifier   Notifier
	reconciler *Reconciler
	now        func() time.Time
}

func NewPostService(posts PostRepository, users UserRepository, photos PhotoStorage, notifier Notifier, reconciler *Reconciler) *PostService {
	return &PostService{
		posts:      posts,
		users:      users,
		photos:     photos,
		notifier:   notifier,
		reconciler: reconciler,
		now:        time.Now,
	}
}

// Create stores a new unapproved, active post owned by the actor. Photos are
// uploaded before the row is written so the stored URLs are final.
func (s *PostService) Create(ctx context.Context, owner *Actor, in CreatePostInput, photos []Photo) (*models.Post, error) {
	if err := owner.require(CapCreatePosts); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var urls []string
	if len(photos) > 0 {
		var err error
		urls, err = s.photos.Upload(ctx, owner.ID, photos)
		if err != nil {
			if IsValidationError(err) || IsUploadError(err) {
				return nil, err
			}
			return nil, &UploadError{Err: err}
		}
	}

	post := &models.Post{
		UserID:         owner.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Price:          *in.Price,
		BedCount:       in.BedCount,
		BathCount:      in.BathCount,
		NumberOfSpots:  in.NumberOfSpots,
		StartDateRange: in.StartDateRange,
		EndDateRange:   in.EndDateRange,
		City:           strings.TrimSpace(in.City),
		State:          strings.TrimSpace(in.State),
		Zip:            strings.TrimSpace(in.Zip),
		Photos:         urls,
		Active:         true,
		Approved:       false,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.notifier.Send(
		[]string{owner.Email},
		"New Post",
		"A new post has been created",
		notifications.RenderPostCreated(owner.Name, post.Title),
	)
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if id == 0 {
		return nil, NewValidationError("id", "post ID is required")
	}
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.posts.List(ctx, PostFilter{UserID: &userID})
}

// ListPublic returns only approved, active posts regardless of the flags set
// on the filter.
func (s *PostService) ListPublic(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	yes := true
	filter.Approved = &yes
	filter.Active = &yes
	filter.UserID = nil
	return s.posts.List(ctx, filter)
}

// ListAll is the admin view. An unknown userEmail yields an empty result.
func (s *PostService) ListAll(ctx context.Context, filter PostFilter, userEmail string) ([]models.Post, error) {
	if userEmail != "" {
		user, err := s.users.GetByEmail(ctx, userEmail)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return []models.Post{}, nil
		}
		filter.UserID = &user.ID
	}
	return s.posts.List(ctx, filter)
}

// Update applies whitelisted field changes. Only the owner or an admin may
// update a post.
func (s *PostService) Update(ctx context.Context, actor *Actor, id uint, upd PostUpdate) (*models.Post, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (actor == nil || post.UserID != actor.ID) {
		return nil, ErrNotAuthorized
	}

	fields, err := upd.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return post, nil
	}
	if err := s.posts.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// Approve marks the post approved by the acting admin. It succeeds at most
// once per post; the write is conditional so concurrent approvals cannot both
// land.
func (s *PostService) Approve(ctx context.Context, id uint, actor *Actor) (*models.Post, error) {
	if id == 0 {
		return nil, NewValidationError("id", "post ID is required")
	}
	if err := actor.require(CapApprovePosts); err != nil {
		return nil, err
	}

	applied, err := s.posts.Approve(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		switch {
		case post.Approved:
			return nil, ErrAlreadyApproved
		case !post.Active:
			return nil, ErrInactive
		default:
			return nil, NewTransientError("approve post", errors.New("approval was not applied"))
		}
	}

	s.notifyOwner(post, "Post Approved", "Your post has been approved",
		notifications.RenderPostApproved)
	return post, nil
}

// ApproveAll approves every unapproved, active post. Posts approved by a
// concurrent caller are skipped.
func (s *PostService) ApproveAll(ctx context.Context, actor *Actor) (int, error) {
	if err := actor.require(CapApprovePosts); err != nil {
		return 0, err
	}

	no, yes := false, true
	pending, err := s.posts.List(ctx, PostFilter{Approved: &no, Active: &yes})
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, &NotFoundError{Resource: "posts to approve"}
	}

	approved := 0
	for _, p := range pending {
		_, err := s.Approve(ctx, p.ID, actor)
		switch {
		case err == nil:
			approved++
		case errors.Is(err, ErrAlreadyApproved), errors.Is(err, ErrInactive), IsNotFound(err):
			continue
		default:
			return approved, fmt.Errorf("approve post %d: %w", p.ID, err)
		}
	}
	return approved, nil
}

// Deactivate takes a post out of public listings for good. Calling it on an
// inactive post returns ErrNotDeactivated.
func (s *PostService) Deactivate(ctx context.Context, id uint) (*models.Post, error) {
	applied, err := s.posts.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrNotDeactivated
	}

	s.notifyOwner(post, "Post Deactivated", "Your post has been deactivated",
		notifications.RenderPostDeactivated)
	return post, nil
}

// DeactivateAs is the admin-facing variant of Deactivate.
func (s *PostService) DeactivateAs(ctx context.Context, actor *Actor, id uint) (*models.Post, error) {
	if err := actor.require(CapDeactivatePosts); err != nil {
		return nil, err
	}
	return s.Deactivate(ctx, id)
}

// Delete removes a post and every report filed against it. The report
// deletion is recorded as a cascade task with the post delete. If it fails the
// delete returns a TransientError and the reconciler finishes the task.
func (s *PostService) Delete(ctx context.Context, actor *Actor, id uint) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && (actor == nil || post.UserID != actor.ID) {
		return ErrNotAuthorized
	}

	task, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	// The post is gone but its reports are not: the caller sees a failed
	// delete while the pending task is retried by the reconciler.
	if err := s.reconciler.Apply(ctx, task); err != nil {
		return NewTransientError(fmt.Sprintf("delete reports for post %d", id), err)
	}
	return nil
}

func (s *PostService) notifyOwner(post *models.Post, subject, summary string, render func(name, title string) string) {
	owner := post.User
	if owner == nil || owner.Email == "" {
		log.Printf("Post %d has no loaded owner, skipping %q email", post.ID, subject)
		return
	}
	s.notifier.Send([]string{owner.Email}, subject, summary, render(owner.Name, post.Title))
}
