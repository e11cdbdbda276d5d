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

type CreateReportInput struct {
	PostID  uint
	Reason  string
	Content string
}

// ReportQuery filters the admin report listing.
type ReportQuery struct {
	UserEmail string
	Status    string
	PostID    *uint
}

type ReportService struct {
	reports    ReportRepository
	posts      *PostService
	users      UserRepository
	reconciler *Reconciler
	notifier   Notifier
	now        func() time.Time
}

func NewReportService(reports ReportRepository, posts *PostService, users UserRepository, reconciler *Reconciler, notifier Notifier) *ReportService {
	return &ReportService{
		reports:    reports,
		posts:      posts,
		users:      users,
		reconciler: reconciler,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Create files a report against an approved, active post that the reporter
// does not own. A reporter may report a given post only once.
func (s *ReportService) Create(ctx context.Context, reporter *Actor, in CreateReportInput) (*models.Report, error) {
	if err := reporter.require(CapFileReports); err != nil {
		return nil, err
	}
	if in.PostID == 0 {
		return nil, NewValidationError("postId", "post ID is required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, NewValidationError("reason", "reason is required")
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	switch {
	case post.UserID == reporter.ID:
		return nil, ErrSelfReport
	case !post.Active:
		return nil, ErrPostInactive
	case !post.Approved:
		return nil, ErrPostUnapproved
	}

	existing, err := s.reports.FindByUserAndPost(ctx, reporter.ID, post.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateReport
	}

	report := &models.Report{
		UserID:  reporter.ID,
		PostID:  post.ID,
		Reason:  strings.TrimSpace(in.Reason),
		Content: in.Content,
		Status:  models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.notifier.Send(
		[]string{reporter.Email},
		"New Report",
		"A new report has been created",
		notifications.RenderReportCreated(reporter.Name, post.Title, report.Reason, report.Content),
	)
	return report, nil
}

func (s *ReportService) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	if id == 0 {
		return nil, NewValidationError("id", "report ID is required")
	}
	return s.reports.GetByID(ctx, id)
}

func (s *ReportService) ListByUser(ctx context.Context, userID uint) ([]models.Report, error) {
	return s.reports.List(ctx, ReportFilter{UserID: &userID})
}

func (s *ReportService) ListByPost(ctx context.Context, postID uint) ([]models.Report, error) {
	return s.reports.List(ctx, ReportFilter{PostID: &postID})
}

// ListAll is a fail-open read: any internal error is logged and an empty
// list returned. An empty result therefore does not prove there are no
// reports.
func (s *ReportService) ListAll(ctx context.Context, q ReportQuery) []models.Report {
	filter := ReportFilter{PostID: q.PostID, Status: q.Status}

	if q.UserEmail != "" {
		user, err := s.users.GetByEmail(ctx, q.UserEmail)
		if err != nil {
			log.Printf("Failed to resolve report filter email %q: %v", q.UserEmail, err)
			return []models.Report{}
		}
		if user == nil {
			return []models.Report{}
		}
		filter.UserID = &user.ID
	}

	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		log.Printf("Failed to list reports: %v", err)
		return []models.Report{}
	}
	if reports == nil {
		return []models.Report{}
	}
	return reports
}

// Delete removes one or more reports by id.
func (s *ReportService) Delete(ctx context.Context, actor *Actor, ids ...uint) (int64, error) {
	if err := actor.require(CapManageReports); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, NewValidationError("ids", "at least one report ID is required")
	}
	return s.reports.Delete(ctx, ids)
}

// Adjudicate records an admin decision on a pending report. Approving a
// report deactivates its post and approves every other report on the post
// with the same handler and timestamp, overwriting earlier rejections.
func (s *ReportService) Adjudicate(ctx context.Context, id uint, actor *Actor, status string) (*models.Report, error) {
	if id == 0 || actor == nil || status == "" {
		return nil, NewValidationError("request", "report ID, handler and status are required")
	}
	if !models.ValidReportDecision(status) {
		return nil, ErrInvalidStatus
	}
	if err := actor.require(CapAdjudicateReports); err != nil {
		return nil, err
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at := s.now()
	applied, task, err := s.reports.Decide(ctx, ReportDecision{
		ReportID:  id,
		Status:    status,
		HandledBy: actor.ID,
		HandledAt: at,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrReportAlreadyHandled
	}

	report.Status = status
	report.HandledByID = &actor.ID
	report.HandledAt = &at

	if status != models.ReportStatusApproved {
		return report, nil
	}

	// The decision and its cascade task are committed. A failure from here on
	// is reported to the caller and the task stays pending for the reconciler.
	if _, err := s.posts.Deactivate(ctx, report.PostID); err != nil &&
		!errors.Is(err, ErrNotDeactivated) && !IsNotFound(err) {
		return nil, NewTransientError(fmt.Sprintf("deactivate post %d for report %d", report.PostID, id), err)
	}
	if err := s.reconciler.Apply(ctx, task); err != nil {
		return nil, NewTransientError(fmt.Sprintf("close reports on post %d", report.PostID), err)
	}
	return report, nil
}
