package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spotlist/api-go/models"
	"github.com/stretchr/testify/mock"
)

// memStore backs the in-memory repositories with the same conditional
// semantics as the gorm implementations.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	users   map[uint]*models.User
	admins  map[uint]*models.AdminUser
	posts   map[uint]*models.Post
	reports map[uint]*models.Report
	tasks   map[uint]*models.CascadeTask

	// failCloseByPost makes CloseByPost fail this many times.
	failCloseByPost int
	// failDeleteByPost makes DeleteByPost fail this many times.
	failDeleteByPost int
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uint]*models.User),
		admins:  make(map[uint]*models.AdminUser),
		posts:   make(map[uint]*models.Post),
		reports: make(map[uint]*models.Report),
		tasks:   make(map[uint]*models.CascadeTask),
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name, email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.id(), Name: name, Email: email, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addAdmin(first, last, email string) *models.AdminUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &models.AdminUser{ID: m.id(), FirstName: first, LastName: last, Email: email}
	m.admins[a.ID] = a
	return a
}

func (m *memStore) post(id uint) models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.posts[id]
}

func (m *memStore) report(id uint) models.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.reports[id]
}

func (m *memStore) pendingTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if t.CompletedAt == nil {
			n++
		}
	}
	return n
}

func (m *memStore) addTask(task *models.CascadeTask) *models.CascadeTask {
	task.ID = m.id()
	task.CreatedAt = time.Now()
	stored := *task
	m.tasks[task.ID] = &stored
	return task
}

type memPostRepo struct{ *memStore }

func (r memPostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.id()
	post.CreatedAt = time.Now()
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r memPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, NewNotFoundError("post", id)
	}
	out := *p
	out.User = r.users[p.UserID]
	return &out, nil
}

func (r memPostRepo) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.posts {
		if f.UserID != nil && p.UserID != *f.UserID {
			continue
		}
		if f.Approved != nil && p.Approved != *f.Approved {
			continue
		}
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		if f.PriceMin != nil && p.Price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && p.Price > *f.PriceMax {
			continue
		}
		if f.City != "" && p.City != f.City {
			continue
		}
		cp := *p
		cp.User = r.users[p.UserID]
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memPostRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return NewNotFoundError("post", id)
	}
	for k, v := range fields {
		switch k {
		case "price":
			p.Price = v.(float64)
		case "bed_count":
			p.BedCount = v.(int)
		case "bath_count":
			p.BathCount = v.(int)
		case "number_of_spots":
			p.NumberOfSpots = v.(int)
		case "start_date_range":
			p.StartDateRange = v.(time.Time)
		case "end_date_range":
			p.EndDateRange = v.(time.Time)
		}
	}
	return nil
}

func (r memPostRepo) Approve(ctx context.Context, id, adminID uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.Approved || !p.Active {
		return false, nil
	}
	p.Approved = true
	p.ApprovedByID = &adminID
	p.ApprovedAt = &at
	return true, nil
}

func (r memPostRepo) Deactivate(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || !p.Active {
		return false, nil
	}
	p.Active = false
	return true, nil
}

func (r memPostRepo) Delete(ctx context.Context, id uint) (*models.CascadeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return nil, NewNotFoundError("post", id)
	}
	delete(r.posts, id)
	return r.addTask(&models.CascadeTask{Kind: models.CascadeDeleteReports, PostID: id}), nil
}

type memReportRepo struct{ *memStore }

func (r memReportRepo) Create(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.UserID == report.UserID && existing.PostID == report.PostID {
			return ErrDuplicateReport
		}
	}
	report.ID = r.id()
	report.CreatedAt = time.Now()
	stored := *report
	r.reports[report.ID] = &stored
	return nil
}

func (r memReportRepo) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, NewNotFoundError("report", id)
	}
	out := *rep
	return &out, nil
}

func (r memReportRepo) FindByUserAndPost(ctx context.Context, userID, postID uint) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.UserID == userID && rep.PostID == postID {
			out := *rep
			return &out, nil
		}
	}
	return nil, nil
}

func (r memReportRepo) List(ctx context.Context, f ReportFilter) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Report{}
	for _, rep := range r.reports {
		if f.UserID != nil && rep.UserID != *f.UserID {
			continue
		}
		if f.PostID != nil && rep.PostID != *f.PostID {
			continue
		}
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memReportRepo) Delete(ctx context.Context, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.reports[id]; ok {
			delete(r.reports, id)
			n++
		}
	}
	return n, nil
}

func (r memReportRepo) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDeleteByPost > 0 {
		r.failDeleteByPost--
		return 0, NewTransientError("delete reports", context.DeadlineExceeded)
	}
	var n int64
	for id, rep := range r.reports {
		if rep.PostID == postID {
			delete(r.reports, id)
			n++
		}
	}
	return n, nil
}

func (r memReportRepo) Decide(ctx context.Context, d ReportDecision) (bool, *models.CascadeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[d.ReportID]
	if !ok || rep.Status != models.ReportStatusPending {
		return false, nil, nil
	}
	rep.Status = d.Status
	handler, at := d.HandledBy, d.HandledAt
	rep.HandledByID = &handler
	rep.HandledAt = &at
	if d.Status != models.ReportStatusApproved {
		return true, nil, nil
	}
	task := r.addTask(&models.CascadeTask{
		Kind:        models.CascadeCloseReports,
		PostID:      rep.PostID,
		HandledByID: &handler,
		HandledAt:   &at,
	})
	return true, task, nil
}

func (r memReportRepo) CloseByPost(ctx context.Context, postID, adminID uint, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCloseByPost > 0 {
		r.failCloseByPost--
		return 0, NewTransientError("close reports", context.DeadlineExceeded)
	}
	var n int64
	for _, rep := range r.reports {
		if rep.PostID != postID {
			continue
		}
		handler, when := adminID, at
		rep.Status = models.ReportStatusApproved
		rep.HandledByID = &handler
		rep.HandledAt = &when
		n++
	}
	return n, nil
}

type memCascadeRepo struct{ *memStore }

func (r memCascadeRepo) ListPending(ctx context.Context, limit int) ([]models.CascadeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.CascadeTask{}
	for _, t := range r.tasks {
		if t.CompletedAt == nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memCascadeRepo) MarkDone(ctx context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.CompletedAt = &at
	}
	return nil
}

func (r memCascadeRepo) MarkFailed(ctx context.Context, id uint, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Attempts++
		t.LastError = reason
	}
	return nil
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, NewNotFoundError("user", id)
	}
	out := *u
	return &out, nil
}

func (r memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) ListWithStats(ctx context.Context, f UserFilter) ([]UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []UserStats{}
	for _, u := range r.users {
		if f.CreatedFrom != nil && u.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && u.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		var n int64
		for _, p := range r.posts {
			if p.UserID == u.ID {
				n++
			}
		}
		out = append(out, UserStats{User: *u, NumberOfPosts: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return NewNotFoundError("user", id)
	}
	delete(r.users, id)
	return nil
}

// recordingNotifier keeps every message it is asked to send.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

func (n *recordingNotifier) Send(recipients []string, subject, summary, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: recipients, Subject: subject, Body: body})
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.Subject
	}
	return out
}

// MockPhotoStorage is a testify mock of PhotoStorage.
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Upload(ctx context.Context, ownerID uint, photos []Photo) ([]string, error) {
	args := m.Called(ctx, ownerID, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// testEnv wires the services over one memStore.
type testEnv struct {
	store      *memStore
	notifier   *recordingNotifier
	photos     *MockPhotoStorage
	reconciler *Reconciler
	posts      *PostService
	reports    *ReportService
	users      *UserService
	now        time.Time
}

func newTestEnv() *testEnv {
	store := newMemStore()
	notifier := &recordingNotifier{}
	photos := &MockPhotoStorage{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	reconciler := NewReconciler(memPostRepo{store}, memReportRepo{store}, memCascadeRepo{store})
	reconciler.now = clock
	posts := NewPostService(memPostRepo{store}, memUserRepo{store}, photos, notifier, reconciler)
	posts.now = clock
	reports := NewReportService(memReportRepo{store}, posts, memUserRepo{store}, reconciler, notifier)
	reports.now = clock
	users := NewUserService(memUserRepo{store}, nil, nil, posts)
	users.now = clock

	return &testEnv{
		store:      store,
		notifier:   notifier,
		photos:     photos,
		reconciler: reconciler,
		posts:      posts,
		reports:    reports,
		users:      users,
		now:        now,
	}
}

func (e *testEnv) newPost(owner *models.User) *models.Post {
	price := 120.0
	post, err := e.posts.Create(context.Background(), UserActor(owner), CreatePostInput{
		Title:          "Garage spot downtown",
		Description:    "Covered parking",
		Price:          &price,
		NumberOfSpots:  2,
		StartDateRange: e.now,
		EndDateRange:   e.now.AddDate(0, 1, 0),
		City:           "Austin",
		State:          "TX",
		Zip:            "78701",
	}, nil)
	if err != nil {
		panic(err)
	}
	return post
}

func (e *testEnv) approvedPost(owner *models.User, admin *models.AdminUser) *models.Post {
	post := e.newPost(owner)
	if _, err := e.posts.Approve(context.Background(), post.ID, AdminActor(admin)); err != nil {
		panic(err)
	}
	return post
}
