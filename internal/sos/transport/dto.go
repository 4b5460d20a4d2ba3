package transport

import (
	"time"

	"github.com/y0shih/AlertMe-Nest/internal/shared/pagination"
)

type CreateSosRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type ListSosRequest struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type SosResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"createdAt"`
}

type SosListResponse struct {
	Data       []SosResponse   `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}
