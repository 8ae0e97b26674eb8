package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type oauthUserInfo struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// StartOAuth handles GET /api/auth/google/start: it sets the state cookie
// and redirects the browser to the provider's consent screen.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if h.oauthConfig == nil || h.oauthConfig.ClientID == "" || h.oauthConfig.ClientSecret == "" {
		respondError(nil, w, http.StatusBadRequest, "oauth sign-in not configured", nil)
		return
	}

	state, err := randomToken()
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "failed to start sign-in", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback handles GET /api/auth/google/callback: it verifies state,
// exchanges the code, fetches the profile and signs the user in.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		respondError(nil, w, http.StatusBadRequest, "invalid oauth state", nil)
		return
	}

	// Consume the state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(nil, w, http.StatusBadRequest, "missing authorization code", nil)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		respondError(h.log, w, http.StatusBadGateway, "failed to exchange authorization code", err)
		return
	}

	info, err := h.fetchUserInfo(r.Context(), token)
	if err != nil {
		respondError(h.log, w, http.StatusBadGateway, "failed to fetch user profile", err)
		return
	}
	if info.Subject == "" || info.Email == "" {
		respondError(nil, w, http.StatusBadGateway, "provider returned an incomplete profile", nil)
		return
	}

	user, accessToken, err := h.auth.OAuthLogin("google", info.Subject, info.Email, info.Name)
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "failed to sign in", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: accessToken, User: newUserView(user)})
}

func (h *AuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*oauthUserInfo, error) {
	client := h.oauthConfig.Client(ctx, token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo request failed: %s: %s", resp.Status, body)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
