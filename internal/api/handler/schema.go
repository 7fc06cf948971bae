package handler

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/rolecall/mock-api/internal/core/ports"
	"github.com/rolecall/mock-api/internal/core/query"
)

// ErrInvalidBody marks a request body that is not the expected JSON object.
var ErrInvalidBody = errors.New("invalid request body")

// --- Request / Response types ---

type createUserRequest struct {
	First  string `json:"first"`
	Last   string `json:"last"`
	RoleID string `json:"roleId"`
}

type updateUserRequest struct {
	First  string `json:"first,omitempty"`
	Last   string `json:"last,omitempty"`
	RoleID string `json:"roleId,omitempty"`
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
}

type updateRoleRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	IsDefault   *bool  `json:"isDefault,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message" example:"User not found"`
}

// bindBody decodes the JSON body only; path and query values never leak in.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

func listInput(c echo.Context) ports.ListInput {
	return ports.ListInput{
		Search: c.QueryParam("search"),
		Page:   query.ParsePage(c.QueryParam("page")),
	}
}
