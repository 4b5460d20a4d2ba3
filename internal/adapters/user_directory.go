package adapters

import (
	"context"

	identityrepo "github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	reportsvc "github.com/y0shih/AlertMe-Nest/internal/reports/service"

	"github.com/google/uuid"
)

// IdentityGetter is the narrow identity read assignment needs.
type IdentityGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (identityrepo.User, error)
}

// UserDirectoryAdapter implements reports/service.UserDirectory.
type UserDirectoryAdapter struct {
	users IdentityGetter
}

func NewUserDirectory(users IdentityGetter) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{users: users}
}

// LookupUser returns the identity's role. A missing identity surfaces the
// identity repository's NotFound unchanged.
func (a *UserDirectoryAdapter) LookupUser(ctx context.Context, id uuid.UUID) (reportsvc.DirectoryUser, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return reportsvc.DirectoryUser{}, err
	}
	return reportsvc.DirectoryUser{ID: u.ID, Role: u.RoleName}, nil
}
