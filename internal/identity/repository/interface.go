package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an identity joined with its role name and profile.
type User struct {
	ID          uuid.UUID
	ExternalID  *string
	Email       string
	RoleID      uuid.UUID
	RoleName    string
	Username    *string
	Phone       *string
	DeviceToken *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// ListParams filters the admin user listing. Empty fields do not constrain.
type ListParams struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

type CreateParams struct {
	ExternalID *string
	Email      string
	RoleID     uuid.UUID
	Username   string
	Phone      *string
}

// UpdateParams changes username and/or role. Nil fields are left alone.
type UpdateParams struct {
	ID       uuid.UUID
	Username *string
	RoleID   *uuid.UUID
}

// ContactParams replaces the notification contact channels of a user.
type ContactParams struct {
	ID          uuid.UUID
	Phone       *string
	DeviceToken *string
}

// UserReader is the read-only directory other modules depend on.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	// ListByRole returns every user holding role, oldest first.
	ListByRole(ctx context.Context, role string) ([]User, error)
	List(ctx context.Context, params ListParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
}

type UserWriter interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	Update(ctx context.Context, params UpdateParams) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	UpdateContact(ctx context.Context, params ContactParams) (User, error)
}

type RoleReader interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (Role, error)
}

// Repository is the full identity store.
type Repository interface {
	UserReader
	UserWriter
	RoleReader
}

var _ Repository = (*Repo)(nil)
