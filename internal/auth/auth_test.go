package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/output"
)

// testJWT builds an unsigned-but-well-formed JWT the way the SSO shapes its
// v2 access tokens.
func testJWT(t *testing.T, characterID int64, name string, scopes any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)

	claims := map[string]any{
		"sub":   fmt.Sprintf("CHARACTER:EVE:%d", characterID),
		"name":  name,
		"owner": "owner-hash-1",
		"exp":   time.Now().Add(20 * time.Minute).Unix(),
	}
	if scopes != nil {
		claims["scp"] = scopes
	}
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// newTestManager wires a Manager against a fake SSO token endpoint.
func newTestManager(t *testing.T, handler http.Handler) (*Manager, *Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8000/callback",
		LoginURL:     server.URL,
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
	}
	store := &Store{useKeyring: false, path: filepath.Join(t.TempDir(), "tokens.json")}
	return NewManager(cfg, store, server.Client()), store
}

func TestAuthorizeURL(t *testing.T) {
	m, _ := newTestManager(t, http.NotFoundHandler())
	m.cfg.Scopes = []string{"esi-wallet.read_character_wallet.v1", "esi-fleets.read_fleet.v1"}

	authURL, session, err := m.AuthorizeURL()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.State)
	assert.NotEmpty(t, session.CodeVerifier)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8000/callback", q.Get("redirect_uri"))
	assert.Equal(t, session.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, codeChallenge(session.CodeVerifier), q.Get("code_challenge"))
	assert.Equal(t, "esi-wallet.read_character_wallet.v1 esi-fleets.read_fleet.v1", q.Get("scope"))
}

func TestHandleCallbackStateMismatch(t *testing.T) {
	exchanged := false
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanged = true
	}))

	session := &Session{State: "expected", CodeVerifier: "verifier"}
	_, err := m.HandleCallback(context.Background(),
		"http://localhost:8000/callback?code=valid-code&state=forged", session)

	require.Error(t, err)
	assert.Equal(t, output.CodeCallback, output.AsError(err).Code)
	assert.False(t, exchanged, "state mismatch must fail before the code exchange")
}

func TestHandleCallbackMissingCode(t *testing.T) {
	m, _ := newTestManager(t, http.NotFoundHandler())

	session := &Session{State: "abc", CodeVerifier: "verifier"}
	_, err := m.HandleCallback(context.Background(),
		"http://localhost:8000/callback?state=abc", session)

	require.Error(t, err)
	assert.Equal(t, output.CodeCallback, output.AsError(err).Code)
}

func TestHandleCallbackProviderError(t *testing.T) {
	m, _ := newTestManager(t, http.NotFoundHandler())

	session := &Session{State: "abc", CodeVerifier: "verifier"}
	_, err := m.HandleCallback(context.Background(),
		"http://localhost:8000/callback?error=access_denied&state=abc", session)

	require.Error(t, err)
	assert.Equal(t, output.CodeCallback, output.AsError(err).Code)
}

func TestHandleCallbackExchangesAndPersists(t *testing.T) {
	var accessToken string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/oauth/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token request must use basic client auth")
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code-1", r.PostForm.Get("code"))
		assert.Equal(t, "verifier", r.PostForm.Get("code_verifier"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  accessToken,
			"refresh_token": "refresh-1",
			"expires_in":    1199,
			"token_type":    "Bearer",
		})
	})
	m, store := newTestManager(t, handler)
	accessToken = testJWT(t, 12345, "Test Pilot", []string{"esi-wallet.read_character_wallet.v1"})

	session := &Session{State: "st", CodeVerifier: "verifier"}
	rec, err := m.HandleCallback(context.Background(),
		"http://localhost:8000/callback?code=auth-code-1&state=st", session)
	require.NoError(t, err)

	assert.Equal(t, int64(12345), rec.CharacterID)
	assert.Equal(t, "Test Pilot", rec.CharacterName)
	assert.Equal(t, accessToken, rec.AccessToken)
	assert.Equal(t, "refresh-1", rec.RefreshToken)
	assert.Equal(t, []string{"esi-wallet.read_character_wallet.v1"}, rec.Scopes)
	assert.InDelta(t, time.Now().Unix()+1199, rec.ExpiresAt, 5)

	stored, err := store.Get(12345)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestAccessTokenFreshSkipsRefresh(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no token endpoint call expected for a fresh token")
	}))

	require.NoError(t, store.Save(&TokenRecord{
		CharacterID:  12345,
		AccessToken:  "still-good",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Unix() + 3600,
	}))

	token, err := m.AccessToken(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, "still-good", token)
}

func TestAccessTokenExpiredRefreshesOnce(t *testing.T) {
	refreshCalls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new",
			"expires_in":   1200,
		})
	})
	m, store := newTestManager(t, handler)

	require.NoError(t, store.Save(&TokenRecord{
		CharacterID:   12345,
		CharacterName: "Test Pilot",
		AccessToken:   "stale",
		RefreshToken:  "refresh-1",
		ExpiresAt:     time.Now().Unix() - 10,
	}))

	token, err := m.AccessToken(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, "new", token)
	assert.Equal(t, 1, refreshCalls)

	stored, err := store.Get(12345)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken, "refresh token kept when the response omits one")
	assert.Equal(t, "Test Pilot", stored.CharacterName, "identity preserved across refresh")
	assert.InDelta(t, time.Now().Unix()+1200, stored.ExpiresAt, 5)
}

func TestAccessTokenWithinMarginRefreshes(t *testing.T) {
	refreshCalls := 0
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		json.NewEncoder(w).Encode(map[string]any{"access_token": "new", "expires_in": 1200})
	}))

	// Expires in 30s, inside the 60s safety margin
	require.NoError(t, store.Save(&TokenRecord{
		CharacterID:  1,
		AccessToken:  "nearly-stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Unix() + 30,
	}))

	token, err := m.AccessToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "new", token)
	assert.Equal(t, 1, refreshCalls)
}

func TestAccessTokenMissingRecord(t *testing.T) {
	m, _ := newTestManager(t, http.NotFoundHandler())

	_, err := m.AccessToken(context.Background(), 99999)
	require.Error(t, err)
	assert.Equal(t, output.CodeTokenNotFound, output.AsError(err).Code)
}

func TestRefreshFailureKeepsStaleRecord(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))

	require.NoError(t, store.Save(&TokenRecord{
		CharacterID:  12345,
		AccessToken:  "stale",
		RefreshToken: "revoked-refresh",
		ExpiresAt:    time.Now().Unix() - 10,
	}))

	_, err := m.AccessToken(context.Background(), 12345)
	require.Error(t, err)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)

	stored, err := store.Get(12345)
	require.NoError(t, err)
	assert.Equal(t, "stale", stored.AccessToken, "failed refresh must not delete the record")
}

func TestRevokeRemovesRecord(t *testing.T) {
	revokeHits := 0
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/oauth/revoke" {
			revokeHits++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh-1", r.PostForm.Get("token"))
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))

	require.NoError(t, store.Save(&TokenRecord{
		CharacterID:  12345,
		AccessToken:  "tok",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Unix() + 3600,
	}))

	require.NoError(t, m.Revoke(context.Background(), 12345))
	assert.Equal(t, 1, revokeHits)

	_, err := store.Get(12345)
	assert.Error(t, err)
}

func TestRevokeMissingRecord(t *testing.T) {
	m, _ := newTestManager(t, http.NotFoundHandler())

	err := m.Revoke(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, output.CodeTokenNotFound, output.AsError(err).Code)
}

func TestIdentityFromJWT(t *testing.T) {
	tok := testJWT(t, 2112625428, "CCP Zoetrope", []string{"a", "b"})

	ident, err := identityFromJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(2112625428), ident.CharacterID)
	assert.Equal(t, "CCP Zoetrope", ident.CharacterName)
	assert.Equal(t, "owner-hash-1", ident.OwnerHash)
	assert.Equal(t, []string{"a", "b"}, ident.Scopes)
}

func TestIdentityFromJWTSingleScopeString(t *testing.T) {
	tok := testJWT(t, 1, "Solo", "esi-wallet.read_character_wallet.v1")

	ident, err := identityFromJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, []string{"esi-wallet.read_character_wallet.v1"}, ident.Scopes)
}

func TestIdentityFromJWTRejectsOpaque(t *testing.T) {
	_, err := identityFromJWT("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateCodeVerifier(t *testing.T) {
	verifiers := make(map[string]bool)
	for i := 0; i < 10; i++ {
		v := generateCodeVerifier()
		assert.NotEmpty(t, v)
		assert.False(t, verifiers[v], "duplicate verifier: %s", v)
		verifiers[v] = true
		assert.True(t, len(v) >= 40 && len(v) <= 50, "verifier length = %d, expected ~43", len(v))
	}
}

func TestCodeChallenge(t *testing.T) {
	verifier := "test_code_verifier_12345"
	h := sha256.Sum256([]byte(verifier))
	expected := base64.RawURLEncoding.EncodeToString(h[:])
	assert.Equal(t, expected, codeChallenge(verifier))
}
