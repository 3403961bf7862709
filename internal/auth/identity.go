package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/evetools/esi-cli/internal/output"
	"github.com/evetools/esi-cli/internal/version"
)

// identity is the character identity baked into an SSO access token.
type identity struct {
	CharacterID   int64
	CharacterName string
	OwnerHash     string
	Scopes        []string
}

// identityFromJWT decodes a v2 SSO access token without signature
// verification. The token was just handed to us by the token endpoint over
// TLS, so we only need its claims, not proof of origin. The subject claim has
// the form "CHARACTER:EVE:<id>".
func identityFromJWT(accessToken string) (*identity, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(accessToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	sub, _ := claims["sub"].(string)
	const prefix = "CHARACTER:EVE:"
	if !strings.HasPrefix(sub, prefix) {
		return nil, fmt.Errorf("unexpected subject claim %q", sub)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(sub, prefix), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("character id in subject claim %q: %w", sub, err)
	}

	ident := &identity{CharacterID: id}
	ident.CharacterName, _ = claims["name"].(string)
	ident.OwnerHash, _ = claims["owner"].(string)
	ident.Scopes = scopesFromClaim(claims["scp"])
	return ident, nil
}

// scopesFromClaim normalizes the scp claim, which the SSO emits as a bare
// string for a single scope and as an array otherwise.
func scopesFromClaim(claim any) []string {
	switch v := claim.(type) {
	case string:
		return []string{v}
	case []any:
		scopes := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				scopes = append(scopes, str)
			}
		}
		return scopes
	default:
		return nil
	}
}

// verifyResponse is the shape returned by the legacy verify endpoint.
type verifyResponse struct {
	CharacterID        int64  `json:"CharacterID"`
	CharacterName      string `json:"CharacterName"`
	CharacterOwnerHash string `json:"CharacterOwnerHash"`
	Scopes             string `json:"Scopes"`
}

// verifyIdentity resolves character identity via GET /verify/ for tokens that
// do not decode as JWTs.
func (m *Manager) verifyIdentity(ctx context.Context, accessToken string) (*identity, error) {
	url := m.cfg.BaseURL + "/verify/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, output.ErrAuthStatus(resp.StatusCode,
			fmt.Sprintf("token verification failed: %s", strings.TrimSpace(string(body))))
	}

	var v verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if v.CharacterID == 0 {
		return nil, fmt.Errorf("verify response missing character id")
	}

	ident := &identity{
		CharacterID:   v.CharacterID,
		CharacterName: v.CharacterName,
		OwnerHash:     v.CharacterOwnerHash,
	}
	if v.Scopes != "" {
		ident.Scopes = strings.Fields(v.Scopes)
	}
	return ident, nil
}

// resolveIdentity prefers the JWT claims and falls back to the verify
// endpoint for opaque tokens.
func (m *Manager) resolveIdentity(ctx context.Context, accessToken string) (*identity, error) {
	ident, err := identityFromJWT(accessToken)
	if err == nil {
		return ident, nil
	}
	log.Debugf("access token is not a JWT (%v), falling back to verify endpoint", err)
	return m.verifyIdentity(ctx, accessToken)
}
