package adapters

import (
	"context"

	identityrepo "github.com/y0shih/AlertMe-Nest/internal/identity/repository"
	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
)

// IdentityLister is the narrow identity read the dispatcher needs.
type IdentityLister interface {
	ListByRole(ctx context.Context, role string) ([]identityrepo.User, error)
}

// RecipientDirectoryAdapter implements dispatch.RecipientDirectory over the
// identity service. Order is preserved: oldest identity first.
type RecipientDirectoryAdapter struct {
	users IdentityLister
}

func NewRecipientDirectory(users IdentityLister) *RecipientDirectoryAdapter {
	return &RecipientDirectoryAdapter{users: users}
}

func (a *RecipientDirectoryAdapter) ListByRole(ctx context.Context, role string) ([]dispatch.Recipient, error) {
	users, err := a.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]dispatch.Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, toRecipient(u))
	}
	return out, nil
}

func toRecipient(u identityrepo.User) dispatch.Recipient {
	return dispatch.Recipient{
		ID:          u.ID,
		Role:        u.RoleName,
		Email:       u.Email,
		Username:    deref(u.Username),
		Phone:       deref(u.Phone),
		DeviceToken: deref(u.DeviceToken),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
