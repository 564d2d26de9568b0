package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
	"github.com/malikarslanasif131/hackathon-backend/internal/sessions"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/internal/tokens"
)

// User is the resolved caller identity handed to the dashboard router.
type User struct {
	ID      string
	Name    string
	Email   string
	Discord string
	Team    string
	Roles   map[string]int
}

// Verdict is the outcome of an authorization check. Status is an HTTP-style
// code; anything other than 200 short-circuits the operation.
type Verdict struct {
	Status  int
	Message string
	User    *User
}

// Authorizer checks a caller's session token against a verb's role
// allow-list and resolves the caller identity.
type Authorizer interface {
	Authenticate(ctx context.Context, token string, allow schema.AllowList) Verdict
}

// Service implements Authorizer on top of the access-token secret and the
// users collection.
type Service struct {
	store  store.Store
	secret string
}

func NewService(st store.Store, jwtSecret string) *Service {
	return &Service{store: st, secret: jwtSecret}
}

func (s *Service) Authenticate(ctx context.Context, token string, allow schema.AllowList) Verdict {
	if token == "" {
		return Verdict{Status: http.StatusUnauthorized, Message: "missing session token"}
	}
	revoked, err := sessions.IsAccessTokenBlacklisted(ctx, token)
	if err != nil {
		return Verdict{Status: http.StatusInternalServerError, Message: "session check failed"}
	}
	if revoked {
		return Verdict{Status: http.StatusUnauthorized, Message: "session revoked"}
	}
	claims, err := tokens.ParseAccessToken(s.secret, token)
	if err != nil {
		return Verdict{Status: http.StatusUnauthorized, Message: "invalid session token"}
	}

	doc, err := s.store.Get(ctx, store.Users, claims.UID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Verdict{Status: http.StatusUnauthorized, Message: "unknown user"}
		}
		return Verdict{Status: http.StatusInternalServerError, Message: "user lookup failed"}
	}
	u := userFromDoc(doc)

	if len(allow) == 0 {
		return Verdict{Status: http.StatusOK, Message: "OK", User: u}
	}
	for roleType, codes := range allow {
		current, ok := u.Roles[roleType]
		if !ok {
			continue
		}
		for _, c := range codes {
			if current == c {
				return Verdict{Status: http.StatusOK, Message: "OK", User: u}
			}
		}
	}
	return Verdict{Status: http.StatusForbidden, Message: "insufficient role"}
}

func userFromDoc(doc *store.Document) *User {
	u := &User{ID: doc.ID, Roles: map[string]int{}}
	u.Name, _ = doc.Fields["name"].(string)
	u.Email, _ = doc.Fields["email"].(string)
	u.Discord, _ = doc.Fields["discord"].(string)
	u.Team, _ = doc.Fields["team"].(string)
	if roles, ok := doc.Fields["roles"].(map[string]any); ok {
		for typ, v := range roles {
			if code, ok := store.ToInt(v); ok {
				u.Roles[typ] = code
			}
		}
	}
	return u
}
