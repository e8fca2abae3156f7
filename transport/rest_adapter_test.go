package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

func TestRESTAdapter_PostsJSONAndReturnsBody(t *testing.T) {
	var gotMethod, gotPath, gotHeader string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("X-Edge-Access-Token")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":{}}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:  http.MethodPost,
		URL:     server.URL + "/UserService/findEnabledUser",
		Headers: map[string]string{"X-Edge-Access-Token": "token-1"},
		Body:    []byte(`{"userId":42}`),
	})
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/UserService/findEnabledUser" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotHeader != "token-1" {
		t.Fatalf("expected bearer header, got %q", gotHeader)
	}
	if gotBody["userId"] != float64(42) {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if string(res.Body) != `{"code":200,"message":"ok","data":{}}` {
		t.Fatalf("unexpected response body %s", res.Body)
	}
}

func TestRESTAdapter_ConnectionFailureReturnsExternalError(t *testing.T) {
	adapter := NewRESTAdapter(&http.Client{Timeout: 250 * time.Millisecond})

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodPost,
		URL:    "http://127.0.0.1:1/unreachable",
	})
	if err == nil {
		t.Fatal("expected connection error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ProvisionErrorRemoteFailure {
		t.Fatalf("expected %q text code, got %q", core.ProvisionErrorRemoteFailure, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTAdapter_MissingURLReturnsBadInput(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodPost})
	if err == nil {
		t.Fatal("expected missing url error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", rich.Category)
	}
	if rich.TextCode != core.ProvisionErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ProvisionErrorBadInput, rich.TextCode)
	}
}

func TestNewHTTPClientDefaults(t *testing.T) {
	client := NewHTTPClient(0, false)
	if client.Timeout != 30*time.Second {
		t.Fatalf("expected 30s default timeout, got %s", client.Timeout)
	}
	if client.Transport != nil {
		t.Fatal("expected default transport when TLS verification is on")
	}

	insecure := NewHTTPClient(10*time.Second, true)
	if insecure.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", insecure.Timeout)
	}
	if insecure.Transport == nil {
		t.Fatal("expected custom transport when TLS verification is disabled")
	}
}
