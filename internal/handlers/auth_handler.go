package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"vstepprep/internal/service"
)

// AuthHandler serves registration, login and OAuth sign-in
type AuthHandler struct {
	auth        *service.AuthService
	log         *logrus.Logger
	oauthConfig *oauth2.Config
	userInfoURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, log *logrus.Logger, oauthConfig *oauth2.Config, userInfoURL string) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		log:         log,
		oauthConfig: oauthConfig,
		userInfoURL: userInfoURL,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid registration details", nil)
		return
	}

	user, token, err := h.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(nil, w, http.StatusConflict, "email already taken", nil)
			return
		}
		respondError(h.log, w, http.StatusInternalServerError, "failed to register", err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: newUserView(user)})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(nil, w, http.StatusBadRequest, "invalid login details", nil)
		return
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(nil, w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		respondError(h.log, w, http.StatusInternalServerError, "failed to log in", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: newUserView(user)})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	respondJSON(w, http.StatusOK, newUserView(user))
}
