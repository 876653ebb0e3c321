package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/util/apperr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func ctx(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestFail(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.New(apperr.NotFound, "book not found"), http.StatusNotFound, "book not found"},
		{apperr.New(apperr.InvalidRequest, "cart is empty"), http.StatusBadRequest, "cart is empty"},
		{apperr.New(apperr.Conflict, "email already registered"), http.StatusConflict, "email already registered"},
		{apperr.Wrap(apperr.Internal, "checkout failed", errors.New("pq: deadlock")), http.StatusInternalServerError, "internal error"},
		{errors.New("raw"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		c, rec := ctx("/")
		require.NoError(t, Fail(c, log, "op", tc.err))
		require.Equal(t, tc.status, rec.Code)
		require.Equal(t, tc.msg, body(t, rec)["message"])
	}
}

func TestParamsAndQuery(t *testing.T) {
	c, _ := ctx("/?page=3&limit=x")
	c.SetParamNames("id")
	c.SetParamValues("42")

	id, ok := ParamID(c, "id")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	c.SetParamValues("-1")
	_, ok = ParamID(c, "id")
	require.False(t, ok)

	require.Equal(t, 3, QueryInt(c, "page", 1))
	require.Equal(t, 10, QueryInt(c, "limit", 10))
}
