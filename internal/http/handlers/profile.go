package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/middleware"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profiles   storage.ProfileStore
	adminEmail string
	guard      Middleware
	log        *zap.SugaredLogger
}

func NewProfileHandler(profiles storage.ProfileStore, adminEmail string, guard Middleware, log *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, adminEmail: adminEmail, guard: guard, log: orNop(log)}
}

func (h *ProfileHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/profile", h.guard(http.HandlerFunc(h.get)))
	mux.Handle("PUT /api/profile", h.guard(http.HandlerFunc(h.put)))
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	profile, err := h.profiles.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeError(w, h.log, err, "user_id", p.UserID)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", models.ResolveRole(profile, h.adminEmail))
}

// put stores the caller's profile. Only the name is taken from the body; id,
// email, role and status stay server-side.
func (h *ProfileHandler) put(w http.ResponseWriter, r *http.Request) {
	var req models.Profile
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())

	current, err := h.profiles.GetProfile(r.Context(), p.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		current = models.DefaultProfile(p.UserID, p.Email)
	case err != nil:
		writeError(w, h.log, err, "user_id", p.UserID)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		current.Name = name
	}
	saved, err := h.profiles.UpsertProfile(r.Context(), current)
	if err != nil {
		writeError(w, h.log, err, "user_id", p.UserID)
		return
	}
	respond.JSON(w, http.StatusOK, "saved", models.ResolveRole(saved, h.adminEmail))
}
