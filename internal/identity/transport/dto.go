package transport

import (
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
)

type ListUsersRequest struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Search string `form:"search" validate:"omitempty,min=1,max=100"`
	Role   string `form:"role" validate:"omitempty,oneof=user staff admin superadmin"`
}

type CreateUserRequest struct {
	Email      string  `json:"email" validate:"required,email,max=254"`
	Username   string  `json:"username" validate:"required,notblank,min=3,max=50"`
	RoleID     string  `json:"roleId" validate:"required,uuid"`
	ExternalID *string `json:"externalId" validate:"omitempty,min=1,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank,min=3,max=50"`
	RoleID   *string `json:"roleId" validate:"omitempty,uuid"`
}

// UpdateContactRequest replaces both channels. An empty string clears one.
type UpdateContactRequest struct {
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	DeviceToken *string `json:"deviceToken" validate:"omitempty,max=4096"`
}

type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Username       *string      `json:"username,omitempty"`
	Role           RoleResponse `json:"role"`
	Phone          *string      `json:"phone,omitempty"`
	HasDeviceToken bool         `json:"hasDeviceToken"`
	Linked         bool         `json:"linked"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type UserListResponse struct {
	Data       []UserResponse  `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
}
