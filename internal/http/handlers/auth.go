package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/auth"
	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	users      storage.UserStore
	profiles   storage.ProfileStore
	tokens     *auth.TokenManager
	adminEmail string
	log        *zap.SugaredLogger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, profiles storage.ProfileStore, tokens *auth.TokenManager, adminEmail string, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{users: users, profiles: profiles, tokens: tokens, adminEmail: adminEmail, log: orNop(log)}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
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
	h.log.Infow("user registered", "user_id", profile.ID)
	respond.JSON(w, http.StatusCreated, "User created successfully", profile)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Errorw("login lookup failed", "email", email, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), user.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		profile = models.DefaultProfile(user.ID, user.Email)
	case err != nil:
		h.log.Errorw("login profile lookup failed", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	profile = models.ResolveRole(profile, h.adminEmail)
	if profile.IsBlocked() {
		h.log.Warnw("blocked login refused", "user_id", user.ID)
		respond.Error(w, http.StatusForbidden, dto.AccountBlockedMessage)
		return
	}

	token, err := h.tokens.Generate(profile)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, Profile: profile})
}

// createAccount validates req and stores the user with a default profile.
func createAccount(r *http.Request, users storage.UserStore, adminEmail string, req dto.RegisterRequest) (models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := auth.ValidateCredentials(email, req.Password); err != nil {
		return models.Profile{}, badRequest(err.Error())
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Profile{}, internal("failed to hash password", err)
	}

	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	profile := models.DefaultProfile(user.ID, email)
	if name := strings.TrimSpace(req.Name); name != "" {
		profile.Name = name
	}
	profile = models.ResolveRole(profile, adminEmail)

	if _, err := users.CreateUser(r.Context(), user, profile); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Profile{}, &requestError{status: http.StatusConflict, message: "user already exists", cause: err}
		}
		return models.Profile{}, internal("failed to create user", err)
	}
	return profile, nil
}
