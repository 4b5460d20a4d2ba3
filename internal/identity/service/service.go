package service

import (
	"context"
	"strings"

	"github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	"github.com/y0shih/AlertMe-Nest/internal/identity/transport"
	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
	"github.com/y0shih/AlertMe-Nest/platform/phone"

	"github.com/google/uuid"
)

const (
	userListDefaultLimit = 10

	msgEmailTaken    = "email already exists"
	msgUsernameTaken = "username already exists"
	msgInvalidRole   = "invalid role ID provided"
	msgInvalidPhone  = "invalid phone number"
)

type Service struct {
	repo        repository.Repository
	phoneRegion string
	log         *logger.Logger
}

func New(repo repository.Repository, phoneRegion string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, phoneRegion: phoneRegion, log: log}
}

func (s *Service) ListUsers(ctx context.Context, req transport.ListUsersRequest) (transport.UserListResponse, error) {
	page := pagination.Normalize(req.Page, req.Limit, userListDefaultLimit)

	users, total, err := s.repo.List(ctx, repository.ListParams{
		Search: strings.TrimSpace(req.Search),
		Role:   req.Role,
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return transport.UserListResponse{}, err
	}

	data := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}

	return transport.UserListResponse{
		Data:       data,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// CreateUser checks email, then username, then role before inserting the
// identity and profile together.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if taken {
		return transport.UserResponse{}, apperr.Conflict(msgEmailTaken)
	}

	taken, err = s.repo.ExistsByUsername(ctx, username, nil)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if taken {
		return transport.UserResponse{}, apperr.Conflict(msgUsernameTaken)
	}

	roleID, err := s.resolveRole(ctx, req.RoleID)
	if err != nil {
		return transport.UserResponse{}, err
	}

	var phoneNumber *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		normalized, err := phone.NormalizeE164(*req.Phone, s.phoneRegion)
		if err != nil {
			return transport.UserResponse{}, apperr.Validation(msgInvalidPhone)
		}
		phoneNumber = &normalized
	}

	user, err := s.repo.Create(ctx, repository.CreateParams{
		ExternalID: trimmedOrNil(req.ExternalID),
		Email:      email,
		RoleID:     roleID,
		Username:   username,
		Phone:      phoneNumber,
	})
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user created", "userId", user.ID, "role", user.RoleName)
	return toUserResponse(user), nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return transport.UserResponse{}, err
	}

	params := repository.UpdateParams{ID: id}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		taken, err := s.repo.ExistsByUsername(ctx, username, &id)
		if err != nil {
			return transport.UserResponse{}, err
		}
		if taken {
			return transport.UserResponse{}, apperr.Conflict(msgUsernameTaken)
		}
		params.Username = &username
	}

	if req.RoleID != nil {
		roleID, err := s.resolveRole(ctx, *req.RoleID)
		if err != nil {
			return transport.UserResponse{}, err
		}
		params.RoleID = &roleID
	}

	user, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.log.Info("user updated", "userId", user.ID, "role", user.RoleName)
	return toUserResponse(user), nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "userId", id)
	return nil
}

func (s *Service) ListRoles(ctx context.Context) (transport.RoleListResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return transport.RoleListResponse{}, err
	}

	out := make([]transport.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, transport.RoleResponse{ID: r.ID.String(), Name: r.Name})
	}
	return transport.RoleListResponse{Roles: out}, nil
}

// Me returns the caller's own record.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	return s.GetUser(ctx, userID)
}

// UpdateContact stores the caller's phone (normalised to E.164) and push
// device token used by the SMS and push notification channels.
func (s *Service) UpdateContact(ctx context.Context, userID uuid.UUID, req transport.UpdateContactRequest) (transport.UserResponse, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}

	params := repository.ContactParams{
		ID:          userID,
		Phone:       current.Phone,
		DeviceToken: current.DeviceToken,
	}

	if req.Phone != nil {
		if strings.TrimSpace(*req.Phone) == "" {
			params.Phone = nil
		} else {
			normalized, err := phone.NormalizeE164(*req.Phone, s.phoneRegion)
			if err != nil {
				return transport.UserResponse{}, apperr.Validation(msgInvalidPhone)
			}
			params.Phone = &normalized
		}
	}
	if req.DeviceToken != nil {
		params.DeviceToken = trimmedOrNil(req.DeviceToken)
	}

	user, err := s.repo.UpdateContact(ctx, params)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// ResolveSubject maps an identity-provider subject to a local user and role.
// A user provisioned by email without a subject is bound on first sight.
func (s *Service) ResolveSubject(ctx context.Context, subject, email string) (uuid.UUID, string, error) {
	user, err := s.repo.GetByExternalID(ctx, subject)
	if err == nil {
		return user.ID, user.RoleName, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return uuid.Nil, "", err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return uuid.Nil, "", err
	}

	user, err = s.repo.GetByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, "", err
	}
	if user.ExternalID != nil {
		// Bound to a different subject.
		return uuid.Nil, "", apperr.NotFoundf("user", subject)
	}

	if err := s.repo.LinkExternalID(ctx, user.ID, subject); err != nil {
		return uuid.Nil, "", err
	}
	s.log.Info("identity linked", "userId", user.ID)

	return user.ID, user.RoleName, nil
}

// ListByRole exposes the directory lookup used for notification fan-out.
func (s *Service) ListByRole(ctx context.Context, role string) ([]repository.User, error) {
	return s.repo.ListByRole(ctx, role)
}

// GetByID exposes the directory lookup used by task assignment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) resolveRole(ctx context.Context, raw string) (uuid.UUID, error) {
	roleID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation(msgInvalidRole)
	}
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return uuid.Nil, apperr.Validation(msgInvalidRole)
		}
		return uuid.Nil, err
	}
	return roleID, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toUserResponse(u repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:             u.ID.String(),
		Email:          u.Email,
		Username:       u.Username,
		Role:           transport.RoleResponse{ID: u.RoleID.String(), Name: u.RoleName},
		Phone:          u.Phone,
		HasDeviceToken: u.DeviceToken != nil && *u.DeviceToken != "",
		Linked:         u.ExternalID != nil,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
