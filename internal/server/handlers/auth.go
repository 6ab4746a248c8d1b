// Authentication endpoints: register, login, me, logout.

package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maruel/ksid"

	"github.com/maxpn01/collectioner/internal/server/dto"
	"github.com/maxpn01/collectioner/internal/server/reqctx"
	"github.com/maxpn01/collectioner/internal/storage/identity"
)

// Register creates a user account and logs it in.
func (h *Handler) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := h.svc.User.Create(req.Email, req.Password, req.Name)
	if err != nil {
		return nil, toAPIError(err)
	}
	return h.issueToken(ctx, user)
}

// Login authenticates a user and issues a bearer token.
func (h *Handler) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := h.svc.User.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, toAPIError(err)
	}
	return h.issueToken(ctx, user)
}

// issueToken mints a JWT carrying the user and a fresh session ID, then
// records the session with the request's IP, User-Agent and country.
func (h *Handler) issueToken(ctx context.Context, user *identity.User) (*dto.AuthResponse, error) {
	sessionID := ksid.NewID()
	expiresAt := time.Now().Add(h.cfg.SessionTTL)
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"sid": sessionID.String(),
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.cfg.JWTSecret)
	if err != nil {
		return nil, dto.InternalWithError("failed to sign token", err)
	}

	hash := sha256.Sum256([]byte(token))
	ip := reqctx.ClientIP(ctx)
	country := h.svc.Geo.CountryCode(ip)
	_, err = h.svc.Session.CreateWithID(sessionID, user.ID, hex.EncodeToString(hash[:]),
		reqctx.UserAgent(ctx), ip, country, expiresAt)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

// Me returns the authenticated user.
func (h *Handler) Me(_ context.Context, user *identity.User, _ *dto.EmptyRequest) (*dto.UserResponse, error) {
	resp := toUserResponse(user)
	return &resp, nil
}

// Logout revokes the current session.
func (h *Handler) Logout(ctx context.Context, user *identity.User, _ *dto.EmptyRequest) (*dto.LogoutResponse, error) {
	sessionID := reqctx.SessionID(ctx)
	if sessionID.IsZero() {
		// Token without a session claim: revoke everything for the user.
		count, err := h.svc.Session.RevokeAllForUser(user.ID)
		if err != nil {
			return nil, toAPIError(err)
		}
		return &dto.LogoutResponse{Revoked: count}, nil
	}
	if err := h.svc.Session.Revoke(sessionID); err != nil {
		return nil, toAPIError(err)
	}
	return &dto.LogoutResponse{Revoked: 1}, nil
}
