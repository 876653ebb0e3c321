package jwtx

import (
	"errors"

	jwtutil "bookstore/util/jwt"

	"github.com/labstack/echo/v4"
)

// ContextKey is where the JWT middleware leaves the parsed principal.
const ContextKey = "user"

func PrincipalFromContext(c echo.Context) (*jwtutil.Principal, error) {
	p, ok := c.Get(ContextKey).(*jwtutil.Principal)
	if !ok || p == nil {
		return nil, errors.New("no principal in context")
	}
	return p, nil
}

// UserID is set by the auth group for every authenticated request.
func UserID(c echo.Context) int64 {
	uid, _ := c.Get("user_id").(int64)
	return uid
}
