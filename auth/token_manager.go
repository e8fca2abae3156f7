package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-provision/core"
)

const tokenExchangePath = "/APIAccessTokenService/getAPIAccessToken"

const defaultTokenTTL = time.Hour
const defaultRenewBefore = 5 * time.Minute

// TokenManagerConfig wires a token manager to one platform account. The
// adapter must not route its calls back through the manager.
type TokenManagerConfig struct {
	Credentials core.Credentials
	Adapter     core.TransportAdapter
	RenewBefore time.Duration
	Logger      glog.Logger
	Now         func() time.Time
}

// TokenManager caches the platform bearer token and refreshes it before it
// expires. Concurrent callers share a single exchange.
type TokenManager struct {
	credentials core.Credentials
	adapter     core.TransportAdapter
	renewBefore time.Duration
	logger      glog.Logger
	now         func() time.Time

	mu    sync.Mutex
	token core.AccessToken
}

func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "auth: invalid credentials").
			WithTextCode(core.ProvisionErrorBadInput)
	}
	if cfg.Adapter == nil {
		return nil, goerrors.New("auth: token manager requires a transport adapter", goerrors.CategoryBadInput).
			WithTextCode(core.ProvisionErrorBadInput)
	}
	renewBefore := cfg.RenewBefore
	if renewBefore <= 0 {
		renewBefore = defaultRenewBefore
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	logger := cfg.Logger
	if logger == nil {
		_, logger = glog.Resolve("auth", nil, nil)
	}
	return &TokenManager{
		credentials: cfg.Credentials,
		adapter:     cfg.Adapter,
		renewBefore: renewBefore,
		logger:      logger,
		now:         now,
	}, nil
}

// Token returns the cached token while it remains fresh beyond the renewal
// lead, exchanging credentials for a new one otherwise.
func (m *TokenManager) Token(ctx context.Context) (core.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if m.token.Value != "" && m.token.ExpiresAt.After(now.Add(m.renewBefore)) {
		return m.token, nil
	}

	token, err := m.exchange(ctx)
	if err != nil {
		return core.AccessToken{}, err
	}
	m.token = token
	m.logger.Info("access token refreshed", "expires_at", token.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// Invalidate discards the cached token so the next Token call exchanges again.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = core.AccessToken{}
}

func (m *TokenManager) exchange(ctx context.Context) (core.AccessToken, error) {
	payload, err := json.Marshal(map[string]any{
		"type":        "admin",
		"accessKeyId": m.credentials.AccessKeyID,
		"accessKey":   m.credentials.AccessKey,
	})
	if err != nil {
		return core.AccessToken{}, goerrors.Wrap(err, goerrors.CategoryInternal, "auth: marshal token request").
			WithTextCode(core.ProvisionErrorInternal)
	}

	res, err := m.adapter.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     strings.TrimRight(m.credentials.Endpoint, "/") + tokenExchangePath,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	})
	if err != nil {
		return core.AccessToken{}, goerrors.Wrap(err, goerrors.CategoryAuth, "auth: token exchange request failed").
			WithTextCode(core.ProvisionErrorUnauthorized)
	}

	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Token     string `json:"token"`
			ExpiresAt any    `json:"expiresAt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body, &envelope); err != nil {
		return core.AccessToken{}, goerrors.Wrap(err, goerrors.CategoryAuth, "auth: decode token response").
			WithTextCode(core.ProvisionErrorUnauthorized).
			WithMetadata(map[string]any{"status_code": res.StatusCode})
	}
	if envelope.Code != 200 {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = "token exchange rejected"
		}
		return core.AccessToken{}, goerrors.New(fmt.Sprintf("auth: %s", message), goerrors.CategoryAuth).
			WithTextCode(core.ProvisionErrorUnauthorized).
			WithMetadata(map[string]any{"remote_code": envelope.Code})
	}
	token := strings.TrimSpace(envelope.Data.Token)
	if token == "" {
		return core.AccessToken{}, goerrors.New("auth: token exchange returned an empty token", goerrors.CategoryAuth).
			WithTextCode(core.ProvisionErrorUnauthorized)
	}

	now := m.now().UTC()
	expiresAt := now.Add(defaultTokenTTL)
	if unix, ok := readAnyInt64(envelope.Data.ExpiresAt); ok && unix > 0 {
		expiresAt = time.Unix(unix, 0).UTC()
	}
	return core.AccessToken{Value: token, ExpiresAt: expiresAt}, nil
}

func readAnyInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(typed), true
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

var _ core.TokenSource = (*TokenManager)(nil)
