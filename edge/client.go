package edge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-provision/auth"
	"github.com/goliatone/go-provision/core"
	"github.com/goliatone/go-provision/transport"
)

// Bearer header the platform expects on every authenticated call.
const accessTokenHeader = "X-Edge-Access-Token"

type Config struct {
	Credentials core.Credentials
	Adapter     core.TransportAdapter
	Tokens      core.TokenSource
	Logger      glog.Logger
	Now         func() time.Time
}

// Client is the typed facade over the remote CDN platform API. Every call
// posts a JSON body and reads the {code, message, data} envelope back.
type Client struct {
	credentials core.Credentials
	adapter     core.TransportAdapter
	tokens      core.TokenSource
	logger      glog.Logger
	now         func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "edge: invalid credentials").
			WithTextCode(core.ProvisionErrorBadInput)
	}
	logger := cfg.Logger
	if logger == nil {
		_, logger = glog.Resolve("edge", nil, nil)
	}
	adapter := cfg.Adapter
	if adapter == nil {
		restAdapter := transport.NewRESTAdapter(transport.NewHTTPClient(0, cfg.Credentials.InsecureSkipVerify))
		restAdapter.Debug = cfg.Credentials.Debug
		restAdapter.Logger = logger
		adapter = restAdapter
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	tokens := cfg.Tokens
	if tokens == nil {
		manager, err := auth.NewTokenManager(auth.TokenManagerConfig{
			Credentials: cfg.Credentials,
			Adapter:     adapter,
			Logger:      logger,
			Now:         now,
		})
		if err != nil {
			return nil, err
		}
		tokens = manager
	}
	return &Client{
		credentials: cfg.Credentials,
		adapter:     adapter,
		tokens:      tokens,
		logger:      logger,
		now:         now,
	}, nil
}

// call posts payload to path and returns the decoded envelope. An HTTP status
// of 400 or above, or a remote code other than 200, surfaces as a protocol
// error carrying the remote message.
func (c *Client) call(ctx context.Context, path string, payload any) (envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return envelope{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, goerrors.Wrap(err, goerrors.CategoryInternal, "edge: marshal request payload").
			WithTextCode(core.ProvisionErrorInternal).
			WithMetadata(map[string]any{"path": path})
	}

	res, err := c.adapter.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    strings.TrimRight(c.credentials.Endpoint, "/") + path,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			accessTokenHeader: token.Value,
		},
		Body: body,
	})
	if err != nil {
		return envelope{}, err
	}
	if res.StatusCode >= 400 {
		return envelope{}, httpStatusError(path, res)
	}

	parsed, err := parseEnvelope(res.Body)
	if err != nil {
		return envelope{}, goerrors.Wrap(err, goerrors.CategoryExternal, "edge: decode response envelope").
			WithTextCode(core.ProvisionErrorRemoteFailure).
			WithMetadata(map[string]any{"path": path, "status_code": res.StatusCode})
	}
	if parsed.Code != 200 {
		return envelope{}, protocolError(path, parsed)
	}
	return parsed, nil
}

// httpStatusError builds the failure for a response with an error status. The
// body envelope's message wins when present, otherwise the status line.
func httpStatusError(path string, res core.TransportResponse) error {
	message := ""
	metadata := map[string]any{"path": path, "status_code": res.StatusCode}
	if parsed, err := parseEnvelope(res.Body); err == nil {
		message = strings.TrimSpace(parsed.Message)
		if parsed.Code != 0 {
			metadata["remote_code"] = parsed.Code
		}
	}
	if message == "" {
		message = fmt.Sprintf("HTTP Error %d", res.StatusCode)
	}
	return goerrors.New("edge: "+message, goerrors.CategoryExternal).
		WithTextCode(core.ProvisionErrorRemoteFailure).
		WithMetadata(metadata)
}

func protocolError(path string, env envelope) error {
	message := strings.TrimSpace(env.Message)
	if message == "" {
		message = "remote operation failed"
	}
	return goerrors.New("edge: "+message, goerrors.CategoryExternal).
		WithTextCode(core.ProvisionErrorRemoteFailure).
		WithMetadata(map[string]any{"path": path, "remote_code": env.Code})
}

// isNotFoundError reports whether a call failure means the target record does
// not exist on the platform. Delete operations treat that as success.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if code, ok := rich.Metadata["remote_code"]; ok {
			if parsed, valid := readAnyInt64(code); valid && parsed == 404 {
				return true
			}
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

var _ core.PlatformClient = (*Client)(nil)
