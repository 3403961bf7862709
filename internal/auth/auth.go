// Package auth implements the EVE Online SSO OAuth2 flow and token lifecycle.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/output"
	"github.com/evetools/esi-cli/internal/version"
)

// DefaultExpiryMargin is how close to expiry a token may get before
// AccessToken refreshes it.
const DefaultExpiryMargin = 60 * time.Second

// Session holds the ephemeral state of one authorization round-trip. It must
// be kept by the caller between AuthorizeURL and HandleCallback and discarded
// afterwards.
type Session struct {
	State        string
	CodeVerifier string
}

// Manager handles the SSO OAuth2 flow and hands out valid access tokens.
type Manager struct {
	cfg        *config.Config
	store      *Store
	httpClient *http.Client
	margin     time.Duration

	mu sync.Mutex
}

// NewManager creates an auth manager using the given store and HTTP client.
func NewManager(cfg *config.Config, store *Store, httpClient *http.Client) *Manager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Manager{
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
		margin:     DefaultExpiryMargin,
	}
}

// Store returns the underlying token store.
func (m *Manager) Store() *Store {
	return m.store
}

// AuthorizeURL builds the SSO authorization URL with a fresh state value and
// PKCE challenge. The returned session must be passed to HandleCallback.
func (m *Manager) AuthorizeURL() (string, *Session, error) {
	u, err := url.Parse(m.cfg.LoginURL + "/v2/oauth/authorize")
	if err != nil {
		return "", nil, err
	}

	session := &Session{
		State:        generateState(),
		CodeVerifier: generateCodeVerifier(),
	}

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", m.cfg.ClientID)
	q.Set("redirect_uri", m.cfg.RedirectURI)
	q.Set("state", session.State)
	q.Set("code_challenge", codeChallenge(session.CodeVerifier))
	q.Set("code_challenge_method", "S256")
	if len(m.cfg.Scopes) > 0 {
		q.Set("scope", strings.Join(m.cfg.Scopes, " "))
	}
	u.RawQuery = q.Encode()

	return u.String(), session, nil
}

// HandleCallback validates the callback URL against the session and exchanges
// the authorization code for tokens. On success, the resulting record is
// persisted and returned.
func (m *Manager) HandleCallback(ctx context.Context, callbackURL string, session *Session) (*TokenRecord, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, output.ErrCallback("Malformed callback URL")
	}
	q := u.Query()

	if errParam := q.Get("error"); errParam != "" {
		msg := errParam
		if desc := q.Get("error_description"); desc != "" {
			msg = fmt.Sprintf("%s: %s", errParam, desc)
		}
		return nil, output.ErrCallback("Authorization refused: " + msg)
	}

	state := q.Get("state")
	if state == "" || session == nil || state != session.State {
		return nil, output.ErrCallback("State mismatch: CSRF protection failed")
	}

	code := q.Get("code")
	if code == "" {
		return nil, output.ErrCallback("Callback is missing the authorization code")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", session.CodeVerifier)

	tok, err := m.tokenRequest(ctx, form)
	if err != nil {
		return nil, err
	}

	ident, err := m.resolveIdentity(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	rec := &TokenRecord{
		CharacterID:   ident.CharacterID,
		CharacterName: ident.CharacterName,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		ExpiresAt:     time.Now().Unix() + tok.ExpiresIn,
		Scopes:        ident.Scopes,
		TokenType:     tok.TokenType,
		OwnerHash:     ident.OwnerHash,
	}
	if err := m.store.Save(rec); err != nil {
		return nil, err
	}

	log.Infof("authenticated character %s (%d)", rec.CharacterName, rec.CharacterID)
	return rec, nil
}

// AccessToken returns a valid access token for the character, refreshing it
// first when expiry is within the safety margin. A failed refresh leaves the
// stale record in place for the caller to revoke or re-authenticate.
func (m *Manager) AccessToken(ctx context.Context, characterID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.Get(characterID)
	if err != nil {
		return "", err
	}

	if !rec.Expired(m.margin) {
		return rec.AccessToken, nil
	}

	if err := m.refreshLocked(ctx, rec); err != nil {
		return "", err
	}
	return rec.AccessToken, nil
}

// Refresh forces a refresh-token exchange for the character and returns the
// updated record.
func (m *Manager) Refresh(ctx context.Context, characterID int64) (*TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.Get(characterID)
	if err != nil {
		return nil, err
	}
	if err := m.refreshLocked(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Manager) refreshLocked(ctx context.Context, rec *TokenRecord) error {
	if rec.RefreshToken == "" {
		return output.ErrAuth("No refresh token stored for character " + rec.CharacterName)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", rec.RefreshToken)

	tok, err := m.tokenRequest(ctx, form)
	if err != nil {
		return err
	}

	rec.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		rec.RefreshToken = tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		rec.ExpiresAt = time.Now().Unix() + tok.ExpiresIn
	}

	log.Debugf("refreshed token for character %d", rec.CharacterID)
	return m.store.Save(rec)
}

// Revoke invalidates the refresh token upstream (best effort) and removes the
// stored record.
func (m *Manager) Revoke(ctx context.Context, characterID int64) error {
	rec, err := m.store.Get(characterID)
	if err != nil {
		return err
	}

	if rec.RefreshToken != "" {
		form := url.Values{}
		form.Set("token", rec.RefreshToken)
		form.Set("token_type_hint", "refresh_token")
		if err := m.revokeRequest(ctx, form); err != nil {
			log.Warnf("upstream revocation failed, removing local token anyway: %v", err)
		}
	}

	return m.store.Delete(characterID)
}

// tokenResponse is the SSO token endpoint's success shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// tokenRequest performs an exchange against the token endpoint using HTTP
// basic client authentication.
func (m *Manager) tokenRequest(ctx context.Context, form url.Values) (*tokenResponse, error) {
	endpoint := m.cfg.LoginURL + "/v2/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, output.ErrAuthStatus(resp.StatusCode,
			fmt.Sprintf("token exchange failed: %s", strings.TrimSpace(string(body))))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, output.ErrAuth("Token endpoint returned no access token")
	}
	return &tok, nil
}

func (m *Manager) revokeRequest(ctx context.Context, form url.Values) error {
	endpoint := m.cfg.LoginURL + "/v2/oauth/revoke"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revocation endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// PKCE helpers

func generateCodeVerifier() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func codeChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func generateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
