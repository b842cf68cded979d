package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/auth"
	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Authenticator resolves bearer tokens into principals.
type Authenticator struct {
	tokens     *auth.TokenManager
	profiles   storage.ProfileStore
	adminEmail string
	log        *zap.SugaredLogger
}

// NewAuthenticator builds the auth middleware.
func NewAuthenticator(tokens *auth.TokenManager, profiles storage.ProfileStore, adminEmail string, log *zap.SugaredLogger) *Authenticator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Authenticator{tokens: tokens, profiles: profiles, adminEmail: adminEmail, log: log}
}

// RequireUser rejects requests without a valid token or from a blocked
// account. The token is read from the Authorization header, falling back to
// the token query parameter for downloads.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.tokens.Parse(raw)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		profile, err := a.profiles.GetProfile(r.Context(), claims.UserID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			profile = models.DefaultProfile(claims.UserID, claims.Email)
		case err != nil:
			a.log.Errorw("load profile failed", "user_id", claims.UserID, "request_id", RequestIDFromContext(r.Context()), "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		profile = models.ResolveRole(profile, a.adminEmail)
		if profile.IsBlocked() {
			respond.Error(w, http.StatusForbidden, dto.AccountBlockedMessage)
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{UserID: claims.UserID, Email: claims.Email, Profile: profile})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is RequireUser plus the admin role.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		if !p.Profile.IsAdmin() {
			respond.Error(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
