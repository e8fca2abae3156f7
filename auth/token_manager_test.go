package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

type fakeAdapter struct {
	calls     int
	responses []core.TransportResponse
	err       error
	lastReq   core.TransportRequest
}

func (a *fakeAdapter) Kind() string { return "fake" }

func (a *fakeAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	a.lastReq = req
	a.calls++
	if a.err != nil {
		return core.TransportResponse{}, a.err
	}
	idx := a.calls - 1
	if idx >= len(a.responses) {
		idx = len(a.responses) - 1
	}
	return a.responses[idx], nil
}

func tokenResponse(token string, expiresAt int64) core.TransportResponse {
	body := fmt.Sprintf(`{"code":200,"message":"ok","data":{"token":%q,"expiresAt":%d}}`, token, expiresAt)
	return core.TransportResponse{StatusCode: 200, Body: []byte(body)}
}

func testCredentials() core.Credentials {
	return core.Credentials{
		Endpoint:    "https://edge.example.com",
		AccessKeyID: "key-id",
		AccessKey:   "key-secret",
	}
}

func newTestManager(t *testing.T, adapter core.TransportAdapter, now func() time.Time) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager(TokenManagerConfig{
		Credentials: testCredentials(),
		Adapter:     adapter,
		Now:         now,
	})
	if err != nil {
		t.Fatalf("new token manager failed: %v", err)
	}
	return manager
}

func TestTokenManagerExchangesAndCaches(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	adapter := &fakeAdapter{responses: []core.TransportResponse{
		tokenResponse("token-1", base.Add(time.Hour).Unix()),
	}}
	manager := newTestManager(t, adapter, func() time.Time { return base })

	token, err := manager.Token(context.Background())
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if token.Value != "token-1" {
		t.Fatalf("unexpected token %q", token.Value)
	}
	if !token.ExpiresAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %s", token.ExpiresAt)
	}

	var payload map[string]any
	if err := json.Unmarshal(adapter.lastReq.Body, &payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if payload["type"] != "admin" || payload["accessKeyId"] != "key-id" || payload["accessKey"] != "key-secret" {
		t.Fatalf("unexpected exchange payload %v", payload)
	}
	if adapter.lastReq.URL != "https://edge.example.com/APIAccessTokenService/getAPIAccessToken" {
		t.Fatalf("unexpected exchange url %q", adapter.lastReq.URL)
	}

	if _, err := manager.Token(context.Background()); err != nil {
		t.Fatalf("second token failed: %v", err)
	}
	if adapter.calls != 1 {
		t.Fatalf("expected cached token to be reused, got %d exchanges", adapter.calls)
	}
}

func TestTokenManagerRefreshBoundary(t *testing.T) {
	cases := []struct {
		name      string
		remaining time.Duration
		exchanges int
	}{
		{name: "valid beyond lead", remaining: 301 * time.Second, exchanges: 1},
		{name: "inside renewal lead", remaining: 299 * time.Second, exchanges: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			now := base
			adapter := &fakeAdapter{responses: []core.TransportResponse{
				tokenResponse("token-1", base.Add(time.Hour).Unix()),
				tokenResponse("token-2", base.Add(2*time.Hour).Unix()),
			}}
			manager := newTestManager(t, adapter, func() time.Time { return now })

			if _, err := manager.Token(context.Background()); err != nil {
				t.Fatalf("initial token failed: %v", err)
			}

			now = base.Add(time.Hour - tc.remaining)
			if _, err := manager.Token(context.Background()); err != nil {
				t.Fatalf("second token failed: %v", err)
			}
			if adapter.calls != tc.exchanges {
				t.Fatalf("expected %d exchanges, got %d", tc.exchanges, adapter.calls)
			}
		})
	}
}

func TestTokenManagerDefaultsMissingExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	adapter := &fakeAdapter{responses: []core.TransportResponse{
		{StatusCode: 200, Body: []byte(`{"code":200,"message":"ok","data":{"token":"token-1"}}`)},
	}}
	manager := newTestManager(t, adapter, func() time.Time { return base })

	token, err := manager.Token(context.Background())
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if !token.ExpiresAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected default one hour expiry, got %s", token.ExpiresAt)
	}
}

func TestTokenManagerRejectedExchange(t *testing.T) {
	adapter := &fakeAdapter{responses: []core.TransportResponse{
		{StatusCode: 200, Body: []byte(`{"code":403,"message":"invalid access key","data":{}}`)},
	}}
	manager := newTestManager(t, adapter, nil)

	_, err := manager.Token(context.Background())
	if err == nil {
		t.Fatal("expected rejection error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryAuth {
		t.Fatalf("expected auth category, got %q", rich.Category)
	}
	if rich.TextCode != core.ProvisionErrorUnauthorized {
		t.Fatalf("expected %q text code, got %q", core.ProvisionErrorUnauthorized, rich.TextCode)
	}
}

func TestTokenManagerEmptyTokenFails(t *testing.T) {
	adapter := &fakeAdapter{responses: []core.TransportResponse{
		{StatusCode: 200, Body: []byte(`{"code":200,"message":"ok","data":{"token":""}}`)},
	}}
	manager := newTestManager(t, adapter, nil)

	if _, err := manager.Token(context.Background()); err == nil {
		t.Fatal("expected empty token error")
	}
}

func TestTokenManagerInvalidateForcesExchange(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	adapter := &fakeAdapter{responses: []core.TransportResponse{
		tokenResponse("token-1", base.Add(time.Hour).Unix()),
		tokenResponse("token-2", base.Add(2*time.Hour).Unix()),
	}}
	manager := newTestManager(t, adapter, func() time.Time { return base })

	if _, err := manager.Token(context.Background()); err != nil {
		t.Fatalf("token failed: %v", err)
	}
	manager.Invalidate()
	token, err := manager.Token(context.Background())
	if err != nil {
		t.Fatalf("token after invalidate failed: %v", err)
	}
	if token.Value != "token-2" {
		t.Fatalf("expected refreshed token, got %q", token.Value)
	}
	if adapter.calls != 2 {
		t.Fatalf("expected 2 exchanges, got %d", adapter.calls)
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := NewTokenManager(TokenManagerConfig{Adapter: &fakeAdapter{}})
	if err == nil {
		t.Fatal("expected credentials validation error")
	}
	_, err = NewTokenManager(TokenManagerConfig{Credentials: testCredentials()})
	if err == nil {
		t.Fatal("expected missing adapter error")
	}
}
