package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	identitydomain "github.com/y0shih/AlertMe-Nest/internal/identity/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/domain"
	"github.com/y0shih/AlertMe-Nest/internal/reports/transport"
	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/google/uuid"
)

type fixture struct {
	repo  *fakeRepo
	bus   *recordingBus
	dir   fakeDirectory
	svc   *Service
	admin uuid.UUID
	staff uuid.UUID
	user  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:  newFakeRepo(),
		bus:   &recordingBus{},
		dir:   fakeDirectory{},
		admin: uuid.New(),
		staff: uuid.New(),
		user:  uuid.New(),
	}
	f.dir[f.admin] = DirectoryUser{ID: f.admin, Role: identitydomain.RoleAdmin}
	f.dir[f.staff] = DirectoryUser{ID: f.staff, Role: identitydomain.RoleStaff}
	f.dir[f.user] = DirectoryUser{ID: f.user, Role: identitydomain.RoleUser}

	f.svc = New(f.repo, f.bus, nil, "", nil)
	f.svc.SetUserDirectory(f.dir)
	return f
}

func (f *fixture) citizen() Actor { return Actor{ID: f.user, Roles: []string{identitydomain.RoleUser}} }
func (f *fixture) staffer() Actor { return Actor{ID: f.staff, Roles: []string{identitydomain.RoleStaff}} }

func ptr[T any](v T) *T { return &v }

func mustKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.GetKind(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func TestListReportsPaginatesNewestFirst(t *testing.T) {
	f := newFixture()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		f.repo.seedReport(f.user, "report", domain.ReportPending, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.svc.ListReports(context.Background(), f.staffer(), transport.ListReportsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := pagination.Meta{Page: 1, Limit: 20, Total: 45, TotalPages: 3}
	if first.Pagination != want {
		t.Fatalf("expected meta %+v, got %+v", want, first.Pagination)
	}
	if len(first.Data) != 20 {
		t.Fatalf("expected 20 items, got %d", len(first.Data))
	}
	for i := 1; i < len(first.Data); i++ {
		if first.Data[i].CreatedAt.After(first.Data[i-1].CreatedAt) {
			t.Fatalf("items not newest first at index %d", i)
		}
	}

	last, err := f.svc.ListReports(context.Background(), f.staffer(), transport.ListReportsRequest{Page: 3})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(last.Data) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(last.Data))
	}
}

func TestListReportsEmptyHasOnePage(t *testing.T) {
	f := newFixture()
	out, err := f.svc.ListReports(context.Background(), f.staffer(), transport.ListReportsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Pagination.TotalPages != 1 || out.Pagination.Total != 0 {
		t.Fatalf("unexpected meta %+v", out.Pagination)
	}
	if out.Data == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestListReportsTieBreakIsStable(t *testing.T) {
	f := newFixture()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a := f.repo.seedReport(f.user, "first", domain.ReportPending, at)
	b := f.repo.seedReport(f.user, "second", domain.ReportPending, at)

	for i := 0; i < 3; i++ {
		out, err := f.svc.ListReports(context.Background(), f.staffer(), transport.ListReportsRequest{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if out.Data[0].ID != a.ID.String() || out.Data[1].ID != b.ID.String() {
			t.Fatalf("tie-break order changed on run %d", i)
		}
	}
}

func TestListReportsDateRangeIsInclusive(t *testing.T) {
	f := newFixture()
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	f.repo.seedReport(f.user, "before", domain.ReportPending, from.Add(-time.Second))
	f.repo.seedReport(f.user, "at start", domain.ReportPending, from)
	f.repo.seedReport(f.user, "at end", domain.ReportPending, to)
	f.repo.seedReport(f.user, "after", domain.ReportPending, to.Add(time.Second))

	out, err := f.svc.ListReports(context.Background(), f.staffer(), transport.ListReportsRequest{
		DateFrom: from.Format(time.RFC3339),
		DateTo:   to.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Pagination.Total != 2 {
		t.Fatalf("expected 2 reports in range, got %d", out.Pagination.Total)
	}
}

func TestListReportsRejectsBadFilters(t *testing.T) {
	f := newFixture()
	cases := map[string]transport.ListReportsRequest{
		"unknown status": {Status: "archived"},
		"bad user id":    {UserID: "nope"},
		"bad date":       {DateFrom: "yesterday"},
		"inverted range": {DateFrom: "2026-02-03T00:00:00Z", DateTo: "2026-02-01T00:00:00Z"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ListReports(context.Background(), f.staffer(), req)
			mustKind(t, err, apperr.KindValidation)
		})
	}
}

func TestCitizenSeesOnlyOwnReports(t *testing.T) {
	f := newFixture()
	other := uuid.New()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mine := f.repo.seedReport(f.user, "mine", domain.ReportPending, at)
	theirs := f.repo.seedReport(other, "theirs", domain.ReportPending, at)

	out, err := f.svc.ListReports(context.Background(), f.citizen(), transport.ListReportsRequest{UserID: other.String()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].ID != mine.ID.String() {
		t.Fatalf("citizen listing leaked other reports: %+v", out.Data)
	}

	_, err = f.svc.GetReport(context.Background(), f.citizen(), theirs.ID)
	mustKind(t, err, apperr.KindNotFound)

	if _, err := f.svc.GetReport(context.Background(), f.staffer(), theirs.ID); err != nil {
		t.Fatalf("staff get: %v", err)
	}
}

func TestCreateReportValidatesCoordinates(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name     string
		lat, lng *float64
	}{
		{"missing lat", nil, ptr(106.7)},
		{"lat too high", ptr(90.5), ptr(106.7)},
		{"lng too low", ptr(10.7), ptr(-180.1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateReport(context.Background(), f.citizen(), transport.CreateReportRequest{
				Title:   "Broken street light",
				Details: "Dark at night",
				Lat:     tc.lat,
				Lng:     tc.lng,
			})
			mustKind(t, err, apperr.KindValidation)
		})
	}
	if len(f.repo.reports) != 0 {
		t.Fatalf("expected no reports stored, got %d", len(f.repo.reports))
	}
}

func TestCreateReportStartsPending(t *testing.T) {
	f := newFixture()
	out, err := f.svc.CreateReport(context.Background(), f.citizen(), transport.CreateReportRequest{
		Title:   "  Pothole on Main St ",
		Details: "Deep enough to damage tyres",
		Lat:     ptr(90.0),
		Lng:     ptr(-180.0),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Status != string(domain.ReportPending) {
		t.Fatalf("expected pending, got %s", out.Status)
	}
	if out.Title != "Pothole on Main St" {
		t.Fatalf("expected trimmed title, got %q", out.Title)
	}
	if out.UserID != f.user.String() {
		t.Fatalf("expected owner %s, got %s", f.user, out.UserID)
	}
	if names := f.bus.names(); len(names) != 1 || names[0] != (events.ReportCreated{}).EventName() {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestCreateReportStripsMarkup(t *testing.T) {
	f := newFixture()
	out, err := f.svc.CreateReport(context.Background(), f.citizen(), transport.CreateReportRequest{
		Title:   "<b>Fallen tree</b>",
		Details: "Blocking <i>both</i> lanes",
		Lat:     ptr(10.0),
		Lng:     ptr(106.0),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Title != "Fallen tree" || out.Details != "Blocking both lanes" {
		t.Fatalf("expected markup stripped, got %q / %q", out.Title, out.Details)
	}

	_, err = f.svc.CreateReport(context.Background(), f.citizen(), transport.CreateReportRequest{
		Title:   "<p>ab</p>",
		Details: "too short once stripped",
		Lat:     ptr(10.0),
		Lng:     ptr(106.0),
	})
	mustKind(t, err, apperr.KindValidation)
}

func TestAssignStaffAdvancesPendingReport(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Flooded underpass", domain.ReportPending, time.Now())

	task, err := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if task.Status != string(domain.TaskNotReceived) {
		t.Fatalf("expected not_received task, got %s", task.Status)
	}
	if !strings.Contains(task.Details, "Flooded underpass") {
		t.Fatalf("expected default details to reference title, got %q", task.Details)
	}
	if task.AssignedBy != f.admin.String() || task.AssignedTo != f.staff.String() {
		t.Fatalf("unexpected assignment %+v", task)
	}

	got, _ := f.repo.GetReport(context.Background(), report.ID)
	if got.Status != domain.ReportInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}

	names := f.bus.names()
	if len(names) != 2 || names[0] != (events.ReportStatusChanged{}).EventName() || names[1] != (events.StaffAssigned{}).EventName() {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestAssignStaffLeavesOtherStatusesAlone(t *testing.T) {
	for _, status := range []domain.ReportStatus{domain.ReportInProgress, domain.ReportReviewed, domain.ReportResolved, domain.ReportClosed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			report := f.repo.seedReport(f.user, "Graffiti", status, time.Now())

			if _, err := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, ptr("Repaint wall")); err != nil {
				t.Fatalf("assign: %v", err)
			}
			got, _ := f.repo.GetReport(context.Background(), report.ID)
			if got.Status != status {
				t.Fatalf("expected %s unchanged, got %s", status, got.Status)
			}
		})
	}
}

func TestAssignStaffChecksReportBeforeAssignee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.AssignStaff(context.Background(), uuid.New(), uuid.New(), f.admin, nil)
	mustKind(t, err, apperr.KindNotFound)
	if !strings.Contains(err.Error(), "report") {
		t.Fatalf("expected report not found, got %v", err)
	}
}

func TestAssignStaffRejectsUnknownOrNonStaffAssignee(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Fallen tree", domain.ReportPending, time.Now())

	_, err := f.svc.AssignStaff(context.Background(), report.ID, uuid.New(), f.admin, nil)
	mustKind(t, err, apperr.KindNotFound)

	_, err = f.svc.AssignStaff(context.Background(), report.ID, f.user, f.admin, nil)
	mustKind(t, err, apperr.KindValidation)

	if len(f.repo.tasks) != 0 {
		t.Fatalf("expected no tasks created, got %d", len(f.repo.tasks))
	}
	got, _ := f.repo.GetReport(context.Background(), report.ID)
	if got.Status != domain.ReportPending {
		t.Fatalf("expected report still pending, got %s", got.Status)
	}
}

func TestAddNotesTransitionsOnlyFromNotReceived(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Noise", domain.ReportPending, time.Now())
	task, err := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	taskID := uuid.MustParse(task.ID)

	first, err := f.svc.AddNotes(context.Background(), report.ID, taskID, f.staff, "On site")
	if err != nil {
		t.Fatalf("first note: %v", err)
	}
	if first.Status != string(domain.TaskInProgress) {
		t.Fatalf("expected in_progress after first note, got %s", first.Status)
	}
	if !strings.HasSuffix(first.Details, "\n\nNotes: On site") {
		t.Fatalf("unexpected details %q", first.Details)
	}

	if _, err := f.svc.UpdateTaskStatus(context.Background(), taskID, "received"); err != nil {
		t.Fatalf("set received: %v", err)
	}
	second, err := f.svc.AddNotes(context.Background(), report.ID, taskID, f.staff, "Parts ordered")
	if err != nil {
		t.Fatalf("second note: %v", err)
	}
	if second.Status != string(domain.TaskReceived) {
		t.Fatalf("expected received to stick, got %s", second.Status)
	}
	if strings.Count(second.Details, "Notes: ") != 2 {
		t.Fatalf("expected two notes, got %q", second.Details)
	}
}

func TestAddNotesOnEmptyDetails(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Noise", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	taskID := uuid.MustParse(task.ID)
	f.repo.tasks[taskID].Details = ""

	out, err := f.svc.AddNotes(context.Background(), report.ID, taskID, f.staff, "Checked")
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if out.Details != "Notes: Checked" {
		t.Fatalf("unexpected details %q", out.Details)
	}
}

func TestAddNotesStripsTagsButKeepsComparisons(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Water main", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	taskID := uuid.MustParse(task.ID)
	f.repo.tasks[taskID].Details = ""

	out, err := f.svc.AddNotes(context.Background(), report.ID, taskID, f.staff, "<b>pressure</b> < 5 and > 2")
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if out.Details != "Notes: pressure < 5 and > 2" {
		t.Fatalf("unexpected details %q", out.Details)
	}
}

func TestAddNotesRequiresTaskOnReport(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Noise", domain.ReportPending, time.Now())
	other := f.repo.seedReport(f.user, "Other", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)

	_, err := f.svc.AddNotes(context.Background(), other.ID, uuid.MustParse(task.ID), f.staff, "x")
	mustKind(t, err, apperr.KindNotFound)
}

func TestResolveReportByAssignee(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Blocked drain", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	taskID := uuid.MustParse(task.ID)

	out, err := f.svc.ResolveReport(context.Background(), report.ID, taskID, f.staff)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Status != string(domain.ReportResolved) {
		t.Fatalf("expected resolved, got %s", out.Status)
	}
	stored, _ := f.repo.GetTask(context.Background(), taskID)
	if stored.Status != domain.TaskCompleted {
		t.Fatalf("expected completed task, got %s", stored.Status)
	}
}

func TestResolveReportByOtherStaffIsNotFound(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Blocked drain", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	taskID := uuid.MustParse(task.ID)

	_, err := f.svc.ResolveReport(context.Background(), report.ID, taskID, uuid.New())
	mustKind(t, err, apperr.KindNotFound)

	stored, _ := f.repo.GetTask(context.Background(), taskID)
	if stored.Status != domain.TaskNotReceived {
		t.Fatalf("task changed to %s", stored.Status)
	}
	got, _ := f.repo.GetReport(context.Background(), report.ID)
	if got.Status != domain.ReportInProgress {
		t.Fatalf("report changed to %s", got.Status)
	}
}

func TestUpdateTaskStatusIsIdempotent(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Litter", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil)
	taskID := uuid.MustParse(task.ID)

	before := len(f.bus.names())
	for i := 0; i < 2; i++ {
		out, err := f.svc.UpdateTaskStatus(context.Background(), taskID, "COMPLETED")
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if out.Status != string(domain.TaskCompleted) {
			t.Fatalf("expected completed, got %s", out.Status)
		}
	}
	if got := len(f.bus.names()) - before; got != 1 {
		t.Fatalf("expected a single status change event, got %d", got)
	}

	_, err := f.svc.UpdateTaskStatus(context.Background(), taskID, "done")
	mustKind(t, err, apperr.KindValidation)
}

func TestUpdateReportStatusIsPermissive(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Litter", domain.ReportClosed, time.Now())

	out, err := f.svc.UpdateReportStatus(context.Background(), report.ID, "pending")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Status != string(domain.ReportPending) {
		t.Fatalf("expected pending, got %s", out.Status)
	}

	_, err = f.svc.UpdateReportStatus(context.Background(), report.ID, "archived")
	mustKind(t, err, apperr.KindValidation)

	_, err = f.svc.UpdateReportStatus(context.Background(), uuid.New(), "closed")
	mustKind(t, err, apperr.KindNotFound)
}

func TestGetAssignedTasksNewestFirstWithReport(t *testing.T) {
	f := newFixture()
	r1 := f.repo.seedReport(f.user, "One", domain.ReportPending, time.Now())
	r2 := f.repo.seedReport(f.user, "Two", domain.ReportPending, time.Now())
	if _, err := f.svc.AssignStaff(context.Background(), r1.ID, f.staff, f.admin, nil); err != nil {
		t.Fatalf("assign 1: %v", err)
	}
	if _, err := f.svc.AssignStaff(context.Background(), r2.ID, f.staff, f.admin, nil); err != nil {
		t.Fatalf("assign 2: %v", err)
	}
	if _, err := f.svc.AssignStaff(context.Background(), r2.ID, f.admin, f.admin, nil); err != nil {
		t.Fatalf("assign admin: %v", err)
	}

	out, err := f.svc.GetAssignedTasks(context.Background(), f.staff)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	if len(out.Data) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out.Data))
	}
	if out.Data[0].Report.Title != "Two" || out.Data[1].Report.Title != "One" {
		t.Fatalf("expected newest first, got %s then %s", out.Data[0].Report.Title, out.Data[1].Report.Title)
	}
	if out.Data[0].Assigner.ID != f.admin.String() {
		t.Fatalf("expected assigner %s, got %s", f.admin, out.Data[0].Assigner.ID)
	}
}

func TestAddResponseRejectsForeignTask(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Noise", domain.ReportPending, time.Now())
	other := f.repo.seedReport(f.user, "Other", domain.ReportPending, time.Now())
	task, _ := f.svc.AssignStaff(context.Background(), other.ID, f.staff, f.admin, nil)

	_, err := f.svc.AddResponse(context.Background(), f.staffer(), report.ID, transport.CreateResponseRequest{
		TaskID: ptr(task.ID),
		Text:   "We are on it",
	})
	mustKind(t, err, apperr.KindNotFound)

	entry, err := f.svc.AddResponse(context.Background(), f.staffer(), report.ID, transport.CreateResponseRequest{Text: "We are on it"})
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	detail, err := f.svc.GetReport(context.Background(), f.staffer(), report.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Responses) != 1 || detail.Responses[0].ID != entry.ID {
		t.Fatalf("expected response on report detail, got %+v", detail.Responses)
	}
}

func TestNearbyReportsSortsByDistance(t *testing.T) {
	f := newFixture()
	near := f.repo.seedReport(f.user, "near", domain.ReportPending, time.Now())
	mid := f.repo.seedReport(f.user, "mid", domain.ReportPending, time.Now())
	far := f.repo.seedReport(f.user, "far", domain.ReportPending, time.Now())
	f.repo.reports[near.ID].Lat, f.repo.reports[near.ID].Lng = 10.001, 106.0
	f.repo.reports[mid.ID].Lat, f.repo.reports[mid.ID].Lng = 10.02, 106.0
	f.repo.reports[far.ID].Lat, f.repo.reports[far.ID].Lng = 11.0, 106.0

	out, err := f.svc.NearbyReports(context.Background(), transport.NearbyReportsRequest{Lat: ptr(10.0), Lng: ptr(106.0)})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if out.RadiusKM != 5 {
		t.Fatalf("expected default radius 5, got %v", out.RadiusKM)
	}
	if len(out.Data) != 2 || out.Data[0].ID != near.ID.String() || out.Data[1].ID != mid.ID.String() {
		t.Fatalf("unexpected nearby result %+v", out.Data)
	}
	if out.Data[0].DistanceKM > out.Data[1].DistanceKM {
		t.Fatal("expected ascending distance")
	}
}

func TestNearbyReportsValidatesRadius(t *testing.T) {
	f := newFixture()
	for _, r := range []float64{0, -1, 100.5, math.NaN(), math.Inf(1)} {
		_, err := f.svc.NearbyReports(context.Background(), transport.NearbyReportsRequest{Lat: ptr(10.0), Lng: ptr(106.0), RadiusKM: ptr(r)})
		mustKind(t, err, apperr.KindValidation)
	}
	_, err := f.svc.NearbyReports(context.Background(), transport.NearbyReportsRequest{Lat: ptr(95.0), Lng: ptr(106.0)})
	mustKind(t, err, apperr.KindValidation)
}

func TestPresignAttachmentWithoutStorage(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PresignAttachment(context.Background(), f.citizen(), transport.PresignAttachmentRequest{
		FileName: "photo.jpg", ContentType: "image/jpeg", SizeBytes: 1024,
	})
	mustKind(t, err, apperr.KindBadRequest)
}

func TestDeleteReportRemovesTasks(t *testing.T) {
	f := newFixture()
	report := f.repo.seedReport(f.user, "Litter", domain.ReportPending, time.Now())
	if _, err := f.svc.AssignStaff(context.Background(), report.ID, f.staff, f.admin, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := f.svc.DeleteReport(context.Background(), report.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.repo.tasks) != 0 {
		t.Fatalf("expected tasks removed, got %d", len(f.repo.tasks))
	}
	mustKind(t, f.svc.DeleteReport(context.Background(), report.ID), apperr.KindNotFound)
}
