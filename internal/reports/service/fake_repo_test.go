package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/repository"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/geo"

	"github.com/google/uuid"
)

type storedReport struct {
	repository.Report
	seq int
}

type storedTask struct {
	repository.Task
	seq int
}

// fakeRepo is an in-memory Repository with the same ordering and ownership
// rules as the SQL implementation.
type fakeRepo struct {
	mu        sync.Mutex
	reports   map[uuid.UUID]*storedReport
	tasks     map[uuid.UUID]*storedTask
	responses []repository.Response
	seq       int
	clock     time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reports: map[uuid.UUID]*storedReport{},
		tasks:   map[uuid.UUID]*storedTask{},
		clock:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// seedReport stores a report with an explicit creation time and status.
func (f *fakeRepo) seedReport(owner uuid.UUID, title string, status domain.ReportStatus, createdAt time.Time) repository.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r := &storedReport{
		Report: repository.Report{
			ID:        uuid.New(),
			Title:     title,
			Details:   "details",
			Status:    status,
			Lat:       10,
			Lng:       106,
			UserID:    owner,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		seq: f.seq,
	}
	f.reports[r.ID] = r
	return r.Report
}

func (f *fakeRepo) CreateReport(_ context.Context, params repository.CreateReportParams) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := f.tick()
	r := &storedReport{
		Report: repository.Report{
			ID:             uuid.New(),
			Title:          params.Title,
			Details:        params.Details,
			Status:         domain.ReportPending,
			AttachmentPath: params.AttachmentPath,
			Lat:            params.Lat,
			Lng:            params.Lng,
			UserID:         params.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		seq: f.seq,
	}
	f.reports[r.ID] = r
	return r.Report, nil
}

func (f *fakeRepo) GetReport(_ context.Context, id uuid.UUID) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFoundf("report", id)
	}
	return r.Report, nil
}

func (f *fakeRepo) sortedReports(match func(repository.Report) bool) []*storedReport {
	out := make([]*storedReport, 0, len(f.reports))
	for _, r := range f.reports {
		if match(r.Report) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func (f *fakeRepo) ListReports(_ context.Context, filter repository.ListFilter) ([]repository.Report, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.sortedReports(func(r repository.Report) bool {
		if filter.Status != nil && r.Status != *filter.Status {
			return false
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			return false
		}
		if filter.CreatedAfter != nil && r.CreatedAt.Before(*filter.CreatedAfter) {
			return false
		}
		if filter.CreatedBefore != nil && r.CreatedAt.After(*filter.CreatedBefore) {
			return false
		}
		return true
	})

	total := len(matched)
	items := make([]repository.Report, 0, filter.Limit)
	for i := filter.Offset; i < total && i < filter.Offset+filter.Limit; i++ {
		items = append(items, matched[i].Report)
	}
	return items, total, nil
}

func (f *fakeRepo) ListReportsInBounds(_ context.Context, b geo.Bounds, limit int) ([]repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.sortedReports(func(r repository.Report) bool {
		return r.Lat >= b.MinLat && r.Lat <= b.MaxLat && r.Lng >= b.MinLng && r.Lng <= b.MaxLng
	})
	items := make([]repository.Report, 0, len(matched))
	for i := 0; i < len(matched) && i < limit; i++ {
		items = append(items, matched[i].Report)
	}
	return items, nil
}

func (f *fakeRepo) UpdateReportStatus(_ context.Context, id uuid.UUID, status domain.ReportStatus) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFoundf("report", id)
	}
	r.Status = status
	r.UpdatedAt = f.tick()
	return r.Report, nil
}

func (f *fakeRepo) DeleteReport(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return apperr.NotFoundf("report", id)
	}
	delete(f.reports, id)
	for tid, t := range f.tasks {
		if t.ReportID == id {
			delete(f.tasks, tid)
		}
	}
	return nil
}

func (f *fakeRepo) GetTask(_ context.Context, id uuid.UUID) (repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return repository.Task{}, apperr.NotFoundf("task", id)
	}
	return t.Task, nil
}

func (f *fakeRepo) ListTasksForReport(_ context.Context, reportID uuid.UUID) ([]repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*storedTask{}
	for _, t := range f.tasks {
		if t.ReportID == reportID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	tasks := make([]repository.Task, 0, len(out))
	for _, t := range out {
		tasks = append(tasks, t.Task)
	}
	return tasks, nil
}

func (f *fakeRepo) ListAssignedTasks(_ context.Context, assigneeID uuid.UUID) ([]repository.AssignedTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*storedTask{}
	for _, t := range f.tasks {
		if t.AssignedTo == assigneeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].seq < out[j].seq
	})
	items := make([]repository.AssignedTask, 0, len(out))
	for _, t := range out {
		items = append(items, repository.AssignedTask{
			Task:     t.Task,
			Report:   f.reports[t.ReportID].Report,
			Assigner: repository.UserRef{ID: t.AssignedBy, Email: "admin@example.com"},
		})
	}
	return items, nil
}

func (f *fakeRepo) CreateTask(_ context.Context, params repository.CreateTaskParams) (repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[params.ReportID]
	if !ok {
		return repository.Task{}, apperr.NotFoundf("report", params.ReportID)
	}
	f.seq++
	now := f.tick()
	t := &storedTask{
		Task: repository.Task{
			ID:         uuid.New(),
			ReportID:   params.ReportID,
			AssignedBy: params.AssignedBy,
			AssignedTo: params.AssignedTo,
			Details:    params.Details,
			Status:     domain.TaskNotReceived,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		seq: f.seq,
	}
	f.tasks[t.ID] = t
	if params.AdvanceTo != "" && params.AdvanceTo != params.AdvanceFrom && r.Status == params.AdvanceFrom {
		r.Status = params.AdvanceTo
		r.UpdatedAt = now
	}
	return t.Task, nil
}

func (f *fakeRepo) MutateTask(_ context.Context, reportID, taskID uuid.UUID, fn repository.TaskMutator) (repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.ReportID != reportID {
		return repository.Task{}, apperr.NotFoundf("task", taskID)
	}
	working := t.Task
	if err := fn(&working); err != nil {
		return repository.Task{}, err
	}
	working.UpdatedAt = f.tick()
	t.Task = working
	return t.Task, nil
}

func (f *fakeRepo) UpdateTaskStatus(_ context.Context, id uuid.UUID, status domain.TaskStatus) (repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return repository.Task{}, apperr.NotFoundf("task", id)
	}
	t.Status = status
	t.UpdatedAt = f.tick()
	return t.Task, nil
}

func (f *fakeRepo) ResolveTask(_ context.Context, reportID, taskID, assigneeID uuid.UUID) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.ReportID != reportID || t.AssignedTo != assigneeID {
		return repository.Report{}, apperr.NotFoundf("task", taskID)
	}
	r, ok := f.reports[reportID]
	if !ok {
		return repository.Report{}, apperr.NotFoundf("report", reportID)
	}
	now := f.tick()
	t.Status = domain.TaskCompleted
	t.UpdatedAt = now
	r.Status = domain.ReportResolved
	r.UpdatedAt = now
	return r.Report, nil
}

func (f *fakeRepo) CreateResponse(_ context.Context, params repository.CreateResponseParams) (repository.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := repository.Response{
		ID:          uuid.New(),
		ReportID:    params.ReportID,
		TaskID:      params.TaskID,
		RespondedBy: params.RespondedBy,
		Text:        params.Text,
		RespondedAt: f.tick(),
	}
	f.responses = append(f.responses, resp)
	return resp, nil
}

func (f *fakeRepo) ListResponses(_ context.Context, reportID uuid.UUID) ([]repository.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []repository.Response{}
	for _, r := range f.responses {
		if r.ReportID == reportID {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

type fakeDirectory map[uuid.UUID]DirectoryUser

func (d fakeDirectory) LookupUser(_ context.Context, id uuid.UUID) (DirectoryUser, error) {
	u, ok := d[id]
	if !ok {
		return DirectoryUser{}, apperr.NotFoundf("user", id)
	}
	return u, nil
}
