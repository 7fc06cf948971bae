package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolecall/mock-api/internal/core/ports"
)

// RoleHandler handles HTTP requests for role operations.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /roles.
//
// @Summary      List roles
// @Description  Newest first. search matches name or description, ignoring case.
// @Tags         roles
// @Produce      json
// @Param        search  query     string  false  "Substring of name or description"
// @Param        page    query     int     false  "1-based page number"  default(1)
// @Success      200     {object}  domain.Page[domain.Role]
// @Failure      500     {object}  ErrorResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	page, err := h.service.ListRoles(c.Request().Context(), listInput(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /roles/:id.
//
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  domain.Role
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.service.GetRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Create handles POST /roles.
//
// @Summary      Create a role
// @Description  A role created with isDefault=true replaces the current default.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      createRoleRequest  true  "New role"
// @Success      200   {object}  domain.Role
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	role, err := h.service.CreateRole(c.Request().Context(), ports.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Update handles PATCH /roles/:id.
//
// @Summary      Update a role
// @Description  isDefault=false on the default role is rejected; make another role default instead.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Role id"
// @Param        body  body      updateRoleRequest  true  "Fields to change"
// @Success      200   {object}  domain.Role
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /roles/{id} [patch]
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	role, err := h.service.UpdateRole(c.Request().Context(), c.Param("id"), ports.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Delete handles DELETE /roles/:id. Users of the deleted role move to the
// default role.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  domain.Role
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	role, err := h.service.DeleteRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}
