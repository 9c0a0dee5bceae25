package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atea-seattle/memberd/internal/domain"
)

// expirySkew is subtracted from the provider-reported lifetime so a token is
// never presented moments before it expires.
const expirySkew = 30 * time.Second

// TokenManager exchanges the long-lived refresh token for short-lived access
// tokens and caches the result process-wide. Concurrent callers hitting an
// expired cache trigger a single refresh call.
type TokenManager struct {
	config     Config
	httpClient *http.Client
	group      singleflight.Group

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	now func() time.Time
}

// NewTokenManager creates a token manager for the given configuration.
func NewTokenManager(config Config) *TokenManager {
	return &TokenManager{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Configured reports whether the OAuth channel has complete credentials.
func (m *TokenManager) Configured() bool {
	return m.config.Configured()
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AccessToken returns a valid access token, refreshing through the provider's
// token endpoint when the cached one is absent or expired.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	v, err, _ := m.group.Do("refresh", func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		if token, ok := m.cached(); ok {
			return token, nil
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accessToken != "" && m.now().Before(m.expiresAt) {
		return m.accessToken, true
	}
	return "", false
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	if !m.config.Configured() {
		return "", fmt.Errorf("%w: missing client credentials or refresh token", domain.ErrRefreshFailed)
	}

	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.config.RefreshToken},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
	}

	token, err := m.postToken(ctx, data)
	if err != nil {
		// Never serve a stale token after a failed refresh.
		m.mu.Lock()
		m.accessToken = ""
		m.mu.Unlock()
		return "", err
	}

	m.mu.Lock()
	m.accessToken = token.AccessToken
	m.expiresAt = m.now().Add(time.Duration(token.ExpiresIn)*time.Second - expirySkew)
	m.mu.Unlock()

	return token.AccessToken, nil
}

// TokenGrant is the result of the one-time authorization code exchange. The
// refresh token must be persisted by the operator; it is not stored here.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ExchangeCode performs the initial OAuth handshake, trading an authorization
// code for access and refresh tokens.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
		"redirect_uri":  {m.config.RedirectURI},
	}

	token, err := m.postToken(ctx, data)
	if err != nil {
		return nil, err
	}
	return &TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
	}, nil
}

func (m *TokenManager) postToken(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.tokenURL(), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", domain.ErrRefreshFailed, err)
	}

	if token.Error != "" {
		msg := token.Error
		if token.ErrorDescription != "" {
			msg = token.ErrorDescription
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrRefreshFailed, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned status %d", domain.ErrRefreshFailed, resp.StatusCode)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", domain.ErrRefreshFailed)
	}

	return &token, nil
}

// AuthURL builds the consent URL for the one-time operator handshake,
// requesting offline access so a refresh token comes back.
func (m *TokenManager) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {m.config.ClientID},
		"redirect_uri":  {m.config.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(m.config.scopes(), " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	if state != "" {
		params.Set("state", state)
	}
	return googleAuthURL + "?" + params.Encode()
}
