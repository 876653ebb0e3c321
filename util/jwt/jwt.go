package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller the services trust.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

func Issue(secret string, p Principal, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   p.UserID,
		"email": p.Email,
		"role":  p.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// KeyFunc pins HS256 and returns the shared secret.
func KeyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

func Parse(tokenStr, secret string) (*Principal, error) {
	tok, err := jwt.Parse(tokenStr, KeyFunc(secret), jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return FromToken(tok)
}

func FromToken(tok *jwt.Token) (*Principal, error) {
	if tok == nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, errors.New("sub missing in claims")
	}
	role, _ := mc["role"].(string)
	if role == "" {
		role = "user"
	}
	email, _ := mc["email"].(string)
	return &Principal{UserID: int64(sub), Email: email, Role: role}, nil
}
