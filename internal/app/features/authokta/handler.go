// internal/app/features/authokta/handler.go

// Package authokta implements OIDC authorization-code login against Okta.
// A successful callback resolves the user's roles and division codes from
// the identity provider's claims, writes the session cookie, and caches the
// session in Mongo keyed by a digest of the access token.
package authokta

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trusteehub/cams/internal/app/store/audit"
	"github.com/trusteehub/cams/internal/app/store/oauthstate"
	"github.com/trusteehub/cams/internal/app/store/sessioncache"
	"github.com/trusteehub/cams/internal/app/system/auditlog"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/app/system/timeouts"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const providerName = "okta"

// Handler handles Okta OIDC authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Sessions   *sessioncache.Store
	StateStore *oauthstate.Store

	// Issuer is the Okta authorization server base URL, e.g.
	// "https://example.okta.com/oauth2/default".
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// SessionTTL bounds the cached session lifetime when the provider
	// token carries no expiry of its own.
	SessionTTL time.Duration
}

// NewHandler creates a new Okta OIDC handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	auditLogger *auditlog.Logger,
	sessStore *sessioncache.Store,
	stateStore *oauthstate.Store,
	issuer, clientID, clientSecret, baseURL string,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     auditLogger,
		Sessions:     sessStore,
		StateStore:   stateStore,
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/okta/callback",
		SessionTTL:   sessionTTL,
	}
}

// oauth2Config returns the OAuth2 configuration for the issuer.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"openid", "profile", "email", "groups"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  h.Issuer + "/v1/authorize",
			TokenURL: h.Issuer + "/v1/token",
		},
	}
}

// IsConfigured returns true if Okta OIDC is configured.
func (h *Handler) IsConfigured() bool {
	return h.Issuer != "" && h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/okta. It stores a one-time state token and
// redirects to the Okta consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Okta OIDC not configured")
		http.Error(w, "login is not configured", http.StatusServiceUnavailable)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/okta/callback: validates the state,
// exchanges the code, resolves the user from the userinfo claims, and
// signs the session in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Okta OIDC error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.failLogin(w, r, "", "provider denied the login")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.failLogin(w, r, "", "missing state parameter")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Consume(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}
	if !valid {
		h.failLogin(w, r, "", "invalid or expired state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, "", "missing code parameter")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.failLogin(w, r, "", "token exchange failed")
		return
	}

	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch userinfo", zap.Error(err))
		h.failLogin(w, r, "", "userinfo fetch failed")
		return
	}

	roles := models.ParseRoles(info.Groups)
	if len(roles) == 0 {
		h.Log.Info("login rejected: no recognized roles",
			zap.String("login_id", info.Email),
			zap.Strings("groups", info.Groups))
		h.failLogin(w, r, info.Email, "no recognized roles")
		return
	}

	sessUser := &auth.SessionUser{
		ID:            info.Sub,
		Name:          info.Name,
		LoginID:       info.Email,
		Roles:         roles,
		DivisionCodes: info.Divisions,
	}
	if err := h.SessionMgr.SignIn(w, r, sessUser); err != nil {
		h.Log.Error("failed to write session", zap.Error(err), zap.String("login_id", info.Email))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	h.cacheSession(ctxTimeout, sessUser, token)

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   sessUser.ID,
		ActorName: sessUser.Name,
		Success:   true,
		Details:   map[string]string{"provider": providerName},
	})
	h.Log.Info("user logged in",
		zap.String("user_id", sessUser.ID),
		zap.String("login_id", sessUser.LoginID),
		zap.Int("roles", len(roles)))

	http.Redirect(w, r, safeReturn(returnURL), http.StatusSeeOther)
}

// ServeLogout handles POST /auth/okta/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentUser(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("failed to clear session", zap.Error(err))
	}
	if ok {
		h.AuditLog.LogRequest(r, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			ActorID:   sess.ID,
			ActorName: sess.Name,
			Success:   true,
		})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// userInfo is the subset of the Okta userinfo response the system uses.
// Groups carry the role claims; Divisions is a custom claim listing the
// court division codes the user's office covers.
type userInfo struct {
	Sub       string   `json:"sub"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Groups    []string `json:"groups"`
	Divisions []string `json:"divisions"`
}

// fetchUserInfo retrieves the claims from the issuer's userinfo endpoint.
func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.Issuer + "/v1/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected userinfo status: %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return &info, nil
}

// cacheSession records the login in the Mongo session cache so bearer-token
// callers can be resolved without a provider round trip. Failures are
// logged only; the cookie session is already written.
func (h *Handler) cacheSession(ctx context.Context, u *auth.SessionUser, token *oauth2.Token) {
	if h.Sessions == nil {
		return
	}
	now := time.Now().UTC()
	expires := token.Expiry
	if expires.IsZero() {
		expires = now.Add(h.SessionTTL)
	}
	err := h.Sessions.Put(ctx, sessioncache.CachedSession{
		TokenDigest:   sessioncache.Digest(token.AccessToken),
		UserID:        u.ID,
		Name:          u.Name,
		LoginID:       u.LoginID,
		Roles:         u.Roles,
		DivisionCodes: u.DivisionCodes,
		Provider:      providerName,
		IssuedAt:      now,
		ExpiresAt:     expires,
	})
	if err != nil {
		h.Log.Warn("failed to cache session", zap.Error(err), zap.String("user_id", u.ID))
	}
}

// failLogin audits a failed login attempt and sends the caller back to the
// login entry point.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, loginID, reason string) {
	h.AuditLog.LogRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		ActorName:     loginID,
		FailureReason: reason,
	})
	http.Redirect(w, r, "/auth/okta?error=login_failed", http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// safeReturn keeps post-login redirects on-site.
func safeReturn(returnURL string) string {
	if returnURL == "" || returnURL[0] != '/' {
		return "/"
	}
	if len(returnURL) > 1 && returnURL[1] == '/' {
		return "/"
	}
	return returnURL
}
