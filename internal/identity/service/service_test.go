package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/identity/domain"
	"github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	"github.com/y0shih/AlertMe-Nest/internal/identity/transport"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	users   map[uuid.UUID]repository.User
	roles   map[uuid.UUID]repository.Role
	creates int
	linked  map[uuid.UUID]string
	clock   time.Time
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{
		users:  map[uuid.UUID]repository.User{},
		roles:  map[uuid.UUID]repository.Role{},
		linked: map[uuid.UUID]string{},
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, name := range []string{domain.RoleUser, domain.RoleStaff, domain.RoleAdmin, domain.RoleSuperAdmin} {
		id, _ := domain.RoleIDByName(name)
		r.roles[id] = repository.Role{ID: id, Name: name}
	}
	return r
}

func (r *fakeRepo) add(email, username, role string) repository.User {
	roleID, _ := domain.RoleIDByName(role)
	r.clock = r.clock.Add(time.Minute)
	u := repository.User{
		ID:        uuid.New(),
		Email:     email,
		RoleID:    roleID,
		RoleName:  role,
		Username:  &username,
		CreatedAt: r.clock,
		UpdatedAt: r.clock,
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := r.users[id]
	if !ok {
		return repository.User{}, apperr.NotFoundf("user", id)
	}
	return u, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFoundf("user", email)
}

func (r *fakeRepo) GetByExternalID(_ context.Context, externalID string) (repository.User, error) {
	for _, u := range r.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFoundf("user", externalID)
}

func (r *fakeRepo) ListByRole(_ context.Context, role string) ([]repository.User, error) {
	out := []repository.User{}
	for _, u := range r.users {
		if u.RoleName == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.User, int, error) {
	all := []repository.User{}
	for _, u := range r.users {
		if params.Role != "" && u.RoleName != params.Role {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	end := params.Offset + params.Limit
	if params.Offset > total {
		return []repository.User{}, total, nil
	}
	if end > total {
		end = total
	}
	return all[params.Offset:end], total, nil
}

func (r *fakeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ExistsByUsername(_ context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	for _, u := range r.users {
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		if u.Username != nil && strings.EqualFold(*u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.User, error) {
	r.creates++
	role := r.roles[params.RoleID]
	username := params.Username
	r.clock = r.clock.Add(time.Minute)
	u := repository.User{
		ID:         uuid.New(),
		ExternalID: params.ExternalID,
		Email:      params.Email,
		RoleID:     params.RoleID,
		RoleName:   role.Name,
		Username:   &username,
		Phone:      params.Phone,
		CreatedAt:  r.clock,
		UpdatedAt:  r.clock,
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.User, error) {
	u, ok := r.users[params.ID]
	if !ok {
		return repository.User{}, apperr.NotFoundf("user", params.ID)
	}
	if params.Username != nil {
		name := *params.Username
		u.Username = &name
	}
	if params.RoleID != nil {
		u.RoleID = *params.RoleID
		u.RoleName = r.roles[*params.RoleID].Name
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return apperr.NotFoundf("user", id)
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) LinkExternalID(_ context.Context, id uuid.UUID, externalID string) error {
	u, ok := r.users[id]
	if !ok || u.ExternalID != nil {
		return apperr.NotFoundf("user", id)
	}
	u.ExternalID = &externalID
	r.users[id] = u
	r.linked[id] = externalID
	return nil
}

func (r *fakeRepo) UpdateContact(_ context.Context, params repository.ContactParams) (repository.User, error) {
	u, ok := r.users[params.ID]
	if !ok {
		return repository.User{}, apperr.NotFoundf("user", params.ID)
	}
	u.Phone = params.Phone
	u.DeviceToken = params.DeviceToken
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeRepo) ListRoles(_ context.Context) ([]repository.Role, error) {
	out := make([]repository.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *fakeRepo) GetRole(_ context.Context, id uuid.UUID) (repository.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return repository.Role{}, apperr.NotFoundf("role", id)
	}
	return role, nil
}

func TestCreateUserRejectsDuplicateEmailBeforeUsername(t *testing.T) {
	repo := newFakeRepo()
	repo.add("ann@example.com", "ann", domain.RoleUser)
	svc := New(repo, "US", nil)

	_, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    "ANN@example.com",
		Username: "ann",
		RoleID:   domain.RoleUserID.String(),
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected email conflict to be reported first, got %q", err.Error())
	}
	if repo.creates != 0 {
		t.Fatal("expected no insert on conflict")
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	repo.add("ann@example.com", "ann", domain.RoleUser)
	svc := New(repo, "US", nil)

	_, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    "other@example.com",
		Username: "Ann",
		RoleID:   domain.RoleUserID.String(),
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, "US", nil)

	_, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    "new@example.com",
		Username: "newbie",
		RoleID:   uuid.NewString(),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateUserNormalizesPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, "US", nil)
	raw := "(201) 555-0123"

	resp, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    " New@Example.com ",
		Username: "newbie",
		RoleID:   domain.RoleStaffID.String(),
		Phone:    &raw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Email != "new@example.com" {
		t.Fatalf("expected normalised email, got %q", resp.Email)
	}
	if resp.Phone == nil || *resp.Phone != "+12015550123" {
		t.Fatalf("expected E.164 phone, got %v", resp.Phone)
	}
	if resp.Role.Name != domain.RoleStaff {
		t.Fatalf("expected staff role, got %q", resp.Role.Name)
	}
}

func TestUpdateUserAllowsKeepingOwnUsername(t *testing.T) {
	repo := newFakeRepo()
	u := repo.add("ann@example.com", "ann", domain.RoleUser)
	svc := New(repo, "US", nil)

	same := "ann"
	role := domain.RoleStaffID.String()
	resp, err := svc.UpdateUser(context.Background(), u.ID, transport.UpdateUserRequest{Username: &same, RoleID: &role})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Role.Name != domain.RoleStaff {
		t.Fatalf("expected role change to staff, got %q", resp.Role.Name)
	}
}

func TestUpdateUserMissingIsNotFound(t *testing.T) {
	svc := New(newFakeRepo(), "US", nil)

	_, err := svc.UpdateUser(context.Background(), uuid.New(), transport.UpdateUserRequest{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsersDefaultsToTenPerPage(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 12; i++ {
		repo.add(uuid.NewString()+"@example.com", uuid.NewString(), domain.RoleUser)
	}
	svc := New(repo, "US", nil)

	resp, err := svc.ListUsers(context.Background(), transport.ListUsersRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 10 {
		t.Fatalf("expected 10 users, got %d", len(resp.Data))
	}
	if resp.Pagination.Total != 12 || resp.Pagination.TotalPages != 2 || resp.Pagination.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", resp.Pagination)
	}
}

func TestResolveSubjectLinksByEmailOnce(t *testing.T) {
	repo := newFakeRepo()
	u := repo.add("staff@example.com", "staffer", domain.RoleStaff)
	svc := New(repo, "US", nil)

	id, role, err := svc.ResolveSubject(context.Background(), "idp-123", "staff@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != u.ID || role != domain.RoleStaff {
		t.Fatalf("expected %s/staff, got %s/%s", u.ID, id, role)
	}
	if repo.linked[u.ID] != "idp-123" {
		t.Fatal("expected subject to be linked")
	}

	// Second lookup resolves by subject without an email.
	id, _, err = svc.ResolveSubject(context.Background(), "idp-123", "")
	if err != nil || id != u.ID {
		t.Fatalf("expected subject lookup to succeed, got %s, %v", id, err)
	}
}

func TestResolveSubjectRejectsEmailBoundToAnotherSubject(t *testing.T) {
	repo := newFakeRepo()
	u := repo.add("staff@example.com", "staffer", domain.RoleStaff)
	other := "idp-original"
	u.ExternalID = &other
	repo.users[u.ID] = u
	svc := New(repo, "US", nil)

	_, _, err := svc.ResolveSubject(context.Background(), "idp-intruder", "staff@example.com")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateContactClearsAndNormalizes(t *testing.T) {
	repo := newFakeRepo()
	u := repo.add("ann@example.com", "ann", domain.RoleUser)
	svc := New(repo, "US", nil)

	phoneNumber := "201-555-0123"
	token := "device-token"
	resp, err := svc.UpdateContact(context.Background(), u.ID, transport.UpdateContactRequest{Phone: &phoneNumber, DeviceToken: &token})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Phone == nil || *resp.Phone != "+12015550123" || !resp.HasDeviceToken {
		t.Fatalf("unexpected contact state %+v", resp)
	}

	empty := ""
	resp, err = svc.UpdateContact(context.Background(), u.ID, transport.UpdateContactRequest{Phone: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Phone != nil {
		t.Fatalf("expected phone to be cleared, got %v", *resp.Phone)
	}
	if !resp.HasDeviceToken {
		t.Fatal("expected device token to be kept when not supplied")
	}

	bad := "12"
	if _, err := svc.UpdateContact(context.Background(), u.ID, transport.UpdateContactRequest{Phone: &bad}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for bad phone, got %v", err)
	}
}
