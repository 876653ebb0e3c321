package auth

import (
	"log/slog"
	"net/http"

	"bookstore/app/echoServer/validation"
	"bookstore/model"
	authsvc "bookstore/service/auth"
	"bookstore/util/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new customer account; email is unique case-insensitively
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Failure      500  {object}  map[string]any "internal server error"
// @Router       /v1/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return httpx.Message(c, http.StatusBadRequest, "invalid body")
	}
	if errs := validation.Check(ct.V, req); errs != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", errs)
		return httpx.Invalid(c, errs)
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return httpx.Fail(c, ct.Log, "register", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return httpx.Message(c, http.StatusBadRequest, "invalid body")
	}
	if errs := validation.Check(ct.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return httpx.Fail(c, ct.Log, "login", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
		"user":    u,
	})
}
