// service/auth/authService_test.go
package authsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/model"
	userrepo "bookstore/repository/user"
	"bookstore/util/apperr"
	"bookstore/util/hash"
	jwtutil "bookstore/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	userrepo.Repo
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	u, err := svc.Register(ctx, model.RegisterReq{
		FirstName: "Budi",
		LastName:  "Santoso",
		Email:     "USER@Example.COM",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.Equal(t, "Budi", *u.FirstName)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{Email: " ", Password: "123"})
	require.ErrorIs(t, err, ErrBadInput)
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{Email: "taken@example.com", Password: "123456"})
	require.Equal(t, apperr.Conflict, apperr.CodeOf(err))
}

func TestRegister_UniqueViolationRace(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := New(m, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{Email: "race@example.com", Password: "123456"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{Email: "ok@example.com", Password: "123456"})
	require.Error(t, err)
	require.Equal(t, apperr.Code(""), apperr.CodeOf(err))
}

func TestLogin_Success(t *testing.T) {
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: "admin@example.com", PasswordHash: hashed, Role: model.RoleAdmin}, nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	u, tok, err := svc.Login(context.Background(), model.LoginReq{Email: "Admin@Example.com", Password: pw})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)

	p, err := jwtutil.Parse(tok, "test-secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), p.UserID)
	require.Equal(t, "admin", p.Role)
}

func TestLogin_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", time.Hour)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: " "})
	require.ErrorIs(t, err, ErrBadInput)
}

func TestLogin_UserNotFound(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", time.Hour)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "missing@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 101, Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "user@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCreds)
	require.Equal(t, apperr.Unauthorized, apperr.CodeOf(err))
}
