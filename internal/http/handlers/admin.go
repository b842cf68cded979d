package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// AdminHandler manages accounts. Every route requires the admin role.
type AdminHandler struct {
	admin      storage.AdminStore
	users      storage.UserStore
	adminEmail string
	guard      Middleware
	log        *zap.SugaredLogger
}

func NewAdminHandler(admin storage.AdminStore, users storage.UserStore, adminEmail string, guard Middleware, log *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{admin: admin, users: users, adminEmail: adminEmail, guard: guard, log: orNop(log)}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/admin/users", h.guard(http.HandlerFunc(h.list)))
	mux.Handle("POST /api/admin/users", h.guard(http.HandlerFunc(h.create)))
	mux.Handle("PATCH /api/admin/users/{id}/status", h.guard(http.HandlerFunc(h.setStatus)))
	mux.Handle("DELETE /api/admin/users/{id}", h.guard(http.HandlerFunc(h.delete)))
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.admin.ListProfiles(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	for i := range profiles {
		profiles[i] = models.ResolveRole(profiles[i], h.adminEmail)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	respond.JSON(w, http.StatusOK, "ok", profiles)
}

func (h *AdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	profile, err := createAccount(r, h.users, h.adminEmail, req)
	if err != nil {
		writeError(w, h.log, err, "email", req.Email)
		return
	}
	h.log.Infow("admin created user", "user_id", profile.ID, "by", ownerOf(r))
	respond.JSON(w, http.StatusCreated, "User created successfully", profile)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusBlocked {
		respond.Error(w, http.StatusBadRequest, "status must be ACTIVE or BLOCKED")
		return
	}
	id := r.PathValue("id")
	if id == ownerOf(r) {
		respond.Error(w, http.StatusBadRequest, "cannot change your own status")
		return
	}
	if err := h.admin.SetProfileStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, h.log, err, "user_id", id)
		return
	}
	h.log.Infow("user status changed", "user_id", id, "status", req.Status, "by", ownerOf(r))
	respond.JSON(w, http.StatusOK, "status updated", nil)
}

func (h *AdminHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == ownerOf(r) {
		respond.Error(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		writeError(w, h.log, err, "user_id", id)
		return
	}
	h.log.Infow("user deleted", "user_id", id, "by", ownerOf(r))
	respond.JSON(w, http.StatusOK, "deleted", nil)
}
