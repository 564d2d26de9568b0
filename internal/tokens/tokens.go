package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/malikarslanasif131/hackathon-backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims is the verified payload of a portal access token.
type Claims struct {
	UID       string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Remaining returns how long the token stays valid, zero when already
// expired or when no expiry claim was present.
func (c *Claims) Remaining() time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	if d := time.Until(c.ExpiresAt); d > 0 {
		return d
	}
	return 0
}

// GenerateAccessToken creates a signed JWT access token for the user. The
// uid claim is the user's document id, which the authorizer uses to load the
// caller's roles.
func GenerateAccessToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// ParseAccessToken verifies signature and expiry and returns the claims.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, _ := mc["uid"].(string)
	if uid == "" {
		return nil, ErrInvalidToken
	}
	name, _ := mc["name"].(string)
	email, _ := mc["email"].(string)
	c := &Claims{UID: uid, Name: name, Email: email}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
