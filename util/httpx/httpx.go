// Package httpx holds the JSON error envelope shared by every controller.
package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookstore/util/apperr"

	"github.com/labstack/echo/v4"
)

// Fail maps a service error onto its HTTP status. Internal errors are logged
// with the request id and answered with a generic message.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if status == http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		uid, _ := c.Get("user_id").(int64)
		log.Error(op+" failed",
			"op", op,
			"err", err,
			"user_id", uid,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
	}
	return c.JSON(status, echo.Map{"message": apperr.Message(err)})
}

func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// Invalid answers 400 with the per-field list.
func Invalid(c echo.Context, errs any) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": errs})
}

// ParamID reads a positive int64 path parameter.
func ParamID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// QueryInt returns def when the query value is missing or malformed.
func QueryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
