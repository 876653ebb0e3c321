package user

import (
	"log/slog"
	"net/http"

	"bookstore/app/echoServer/jwtx"
	"bookstore/app/echoServer/validation"
	"bookstore/model"
	booksvc "bookstore/service/book"
	usersvc "bookstore/service/user"
	"bookstore/util/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Me
// @Summary      Current profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Router       /v1/users/me [get]
func (h *Controller) Me(c echo.Context) error {
	u, err := h.Svc.Me(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		return httpx.Fail(c, h.Log, "user me", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  UpdateMeReq  true  "fields to change"
// @Success      200  {object}  model.User
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /v1/users/me [patch]
func (h *Controller) UpdateMe(c echo.Context) error {
	var req UpdateMeReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	u, err := h.Svc.UpdateMe(c.Request().Context(), jwtx.UserID(c), req.Patch())
	if err != nil {
		return httpx.Fail(c, h.Log, "user update me", err)
	}
	return c.JSON(http.StatusOK, u)
}

// List (admin)
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query  string  false  "email contains"
// @Param        role    query  string  false  "user or admin"
// @Param        page    query  int     false  "page"
// @Param        limit   query  int     false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /v1/users [get]
func (h *Controller) List(c echo.Context) error {
	p, err := h.Svc.List(c.Request().Context(), model.UserQuery{
		Search: c.QueryParam("search"),
		Role:   model.Role(c.QueryParam("role")),
		Page:   httpx.QueryInt(c, "page", 1),
		Limit:  httpx.QueryInt(c, "limit", booksvc.DefaultLimit),
	})
	if err != nil {
		return httpx.Fail(c, h.Log, "user list", err)
	}
	return c.JSON(http.StatusOK, p)
}

// Get (admin)
// @Summary      User by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "user id"
// @Success      200  {object}  model.User
// @Router       /v1/users/{id} [get]
func (h *Controller) Get(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpx.Fail(c, h.Log, "user get", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update (admin)
// @Summary      Update user, including role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int             true  "user id"
// @Param        payload  body  AdminUpdateReq  true  "fields to change"
// @Success      200  {object}  model.User
// @Router       /v1/users/{id} [patch]
func (h *Controller) Update(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	var req AdminUpdateReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	u, err := h.Svc.Update(c.Request().Context(), jwtx.UserID(c), id, req.Patch())
	if err != nil {
		return httpx.Fail(c, h.Log, "user update", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete (admin)
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  int  true  "user id"
// @Success      204
// @Router       /v1/users/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), jwtx.UserID(c), id); err != nil {
		return httpx.Fail(c, h.Log, "user delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
