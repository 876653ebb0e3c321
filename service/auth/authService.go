package authsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/model"
	userrepo "bookstore/repository/user"
	"bookstore/util/apperr"
	"bookstore/util/hash"
	jwtutil "bookstore/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailTaken   = apperr.New(apperr.Conflict, "email already registered")
	ErrBadInput     = apperr.New(apperr.InvalidRequest, "bad input")
	ErrInvalidCreds = apperr.New(apperr.Unauthorized, "invalid email or password")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
	ttl    time.Duration
}

func New(ur userrepo.Repo, secret string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{ur: ur, secret: secret, ttl: ttl}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, ErrBadInput
	}

	existing, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		FirstName:    optional(req.FirstName),
		LastName:     optional(req.LastName),
	}
	if err := s.ur.Create(ctx, u); err != nil {
		// lost the race against a concurrent register
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, jwtutil.Principal{UserID: u.ID, Email: u.Email, Role: string(u.Role)}, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
