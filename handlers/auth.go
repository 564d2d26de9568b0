package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malikarslanasif131/hackathon-backend/internal/config"
	"github.com/malikarslanasif131/hackathon-backend/internal/oidc"
	"github.com/malikarslanasif131/hackathon-backend/internal/sessions"
	"github.com/malikarslanasif131/hackathon-backend/internal/tokens"
	"github.com/malikarslanasif131/hackathon-backend/internal/users"
	"github.com/malikarslanasif131/hackathon-backend/pkg/logger"
	"github.com/malikarslanasif131/hackathon-backend/pkg/middleware"
)

// AuthHandler implements the Google sign-in exchange: a verified ID token is
// swapped for a portal access token plus a refresh session.
type AuthHandler struct {
	verifier oidc.TokenVerifier
	users    *users.Service
	sessions *sessions.Service
	cfg      *config.Config
}

func NewAuthHandler(verifier oidc.TokenVerifier, us *users.Service, ss *sessions.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{verifier: verifier, users: us, sessions: ss, cfg: cfg}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
}

type loginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Login verifies a Google ID token, upserts the portal account and issues an
// access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: idToken is required"})
		return
	}
	ctx := c.Request.Context()

	tok, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication Error: invalid ID token"})
		return
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication Error: unreadable ID token"})
		return
	}

	u, err := h.users.UpsertFromClaims(ctx, claims)
	if err != nil {
		logger.Errorf("auth: upsert user failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not create account"})
		return
	}
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication Error: token has no subject"})
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg.JWT.Secret, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("auth: sign access token failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not issue token"})
		return
	}
	refresh, err := h.sessions.CreateSession(ctx, u.ID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("auth: create session failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
		"user":         u,
	})
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: refreshToken is required"})
		return
	}
	ctx := c.Request.Context()

	sess, err := h.sessions.ValidateRefresh(ctx, req.RefreshToken)
	if err != nil {
		logger.Errorf("auth: validate refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: session lookup failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication Error: invalid or expired refresh token"})
		return
	}

	u, err := h.users.GetByID(ctx, sess.UID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication Error: unknown user"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg.JWT.Secret, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("auth: sign access token failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"expiresIn":   int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Logout revokes the current access token and deletes the refresh session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if access := middleware.BearerToken(c); access != "" {
		// blacklist only for the token's remaining lifetime; an expired or
		// unparseable token needs no entry
		ttl := time.Duration(0)
		if claims, err := tokens.ParseAccessToken(h.cfg.JWT.Secret, access); err == nil {
			ttl = claims.Remaining()
		}
		if ttl > 0 {
			if err := sessions.BlacklistAccessToken(ctx, access, ttl); err != nil {
				logger.Warnf("auth: blacklist access token failed: %v", err)
			}
		}
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if err := h.sessions.DeleteRefresh(ctx, req.RefreshToken); err != nil {
			logger.Warnf("auth: delete refresh session failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
