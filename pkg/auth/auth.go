// Package auth runs the OAuth login flow against the configured identity
// provider and manages the resulting sessions. When no client is configured
// the whole package degrades to "not enabled" and the app runs fully
// offline.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quill/pkg/config"
	"quill/pkg/errors"
	"quill/pkg/models"
)

const SessionTimeout = 30 * time.Minute

// loginTimeout caps how long we wait for the user to finish the consent
// screen before the loopback listener gives up.
const loginTimeout = 5 * time.Minute

// Manager handles the login flow and session bookkeeping.
type Manager struct {
	oauth         config.OAuthOptions
	client        *http.Client
	sessions      map[string]*models.Session
	sessionsMutex sync.RWMutex

	currentSessionID string
}

// NewManager creates a manager for the given OAuth client configuration.
func NewManager(oauth config.OAuthOptions) *Manager {
	return &Manager{
		oauth:    oauth,
		client:   &http.Client{Timeout: 30 * time.Second},
		sessions: make(map[string]*models.Session),
	}
}

// Enabled reports whether an OAuth client is configured. Every cloud-facing
// operation checks this and short-circuits when false.
func (m *Manager) Enabled() bool {
	return m.oauth.ClientID != ""
}

// tokenResponse is the provider's code-exchange reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// userInfo is the provider's identity reply.
type userInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// callbackResult carries the redirect parameters off the loopback listener.
type callbackResult struct {
	code string
	err  error
}

// Login runs the full flow: open the consent URL in the system browser,
// catch the redirect on a loopback listener, exchange the code for a token
// and fetch the user identity. openURL is supplied by the desktop shell.
func (m *Manager) Login(ctx context.Context, openURL func(string)) (*models.Session, error) {
	if !m.Enabled() {
		return nil, errors.ErrAuthUnavailable
	}

	state := uuid.NewString()
	redirectURI := fmt.Sprintf("http://localhost:%d/oauth/callback", m.oauth.RedirectPort)

	results := make(chan callbackResult, 1)
	router := chi.NewRouter()
	router.Get("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("oauth state mismatch")}
			return
		}
		if errParam := query.Get("error"); errParam != "" {
			http.Error(w, errParam, http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("oauth error: %s", errParam)}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>Signed in. You can close this window.</body></html>")
		results <- callbackResult{code: query.Get("code")}
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", m.oauth.RedirectPort),
		Handler: router,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			results <- callbackResult{err: err}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	authURL := m.oauth.AuthorizationURL + "?" + url.Values{
		"client_id":     {m.oauth.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {"profile email"},
		"access_type":   {"offline"},
		"state":         {state},
	}.Encode()
	openURL(authURL)

	var result callbackResult
	select {
	case result = <-results:
	case <-time.After(loginTimeout):
		return nil, errors.ErrLoginCancelled
	case <-ctx.Done():
		return nil, errors.ErrLoginCancelled
	}
	if result.err != nil {
		return nil, errors.Wrap(result.err, errors.ErrTypeAuth, "LOGIN_FAILED", "login flow failed")
	}

	token, err := m.exchangeCode(ctx, result.code, redirectURI)
	if err != nil {
		return nil, err
	}

	identity, err := m.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:    identity.ID,
		Email:     identity.Email,
		Token:     token.AccessToken,
		ExpiresAt: time.Now().Add(SessionTimeout),
	}
	sessionID := m.CreateSession(session)

	m.sessionsMutex.Lock()
	m.currentSessionID = sessionID
	m.sessionsMutex.Unlock()

	return session, nil
}

// exchangeCode trades the authorization code for an access token.
func (m *Manager) exchangeCode(ctx context.Context, code, redirectURI string) (*tokenResponse, error) {
	form := url.Values{
		"client_id":     {m.oauth.ClientID},
		"client_secret": {m.oauth.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.oauth.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeAuth, "TOKEN_EXCHANGE_FAILED", "token exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrTypeAuth, "TOKEN_EXCHANGE_FAILED",
			fmt.Sprintf("token exchange failed: %s", resp.Status))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeAuth, "TOKEN_DECODE_FAILED", "failed to decode token response")
	}
	if token.AccessToken == "" {
		return nil, errors.New(errors.ErrTypeAuth, "NO_ACCESS_TOKEN", "no access token received")
	}
	return &token, nil
}

// fetchUserInfo resolves the stable user id behind the token.
func (m *Manager) fetchUserInfo(ctx context.Context, accessToken string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.oauth.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeAuth, "USERINFO_FAILED", "failed to fetch user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrTypeAuth, "USERINFO_FAILED",
			fmt.Sprintf("user info request failed: %s", resp.Status))
	}

	var identity userInfo
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeAuth, "USERINFO_DECODE_FAILED", "failed to decode user info")
	}
	if identity.ID == "" {
		return nil, errors.New(errors.ErrTypeAuth, "NO_USER_ID", "provider returned no user id")
	}
	return &identity, nil
}
