package inbound

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

const (
	KindCreate     = "create"
	KindSuspend    = "suspend"
	KindUnsuspend  = "unsuspend"
	KindRenew      = "renew"
	KindTerminate  = "terminate"
	KindChangePlan = "change_plan"
)

// ResultSuccess is the literal the billing host expects from a hook that
// completed without error. Anything else is rendered to the operator.
const ResultSuccess = "success"

// LifecycleEvent is the normalized payload a billing host delivers for a
// service lifecycle transition.
type LifecycleEvent struct {
	Kind              string
	ServiceID         string
	CustomerEmail     string
	CustomerName      string
	ProductID         string
	ProductName       string
	PreviousProductID string
	Domain            string
	Username          string
	Password          string
	NextDueDate       time.Time
	Metadata          map[string]any
}

// Request converts the event into the parameter bag lifecycle operations
// consume.
func (e LifecycleEvent) Request() core.ProvisionRequest {
	return core.ProvisionRequest{
		ServiceID:     e.ServiceID,
		CustomerEmail: e.CustomerEmail,
		CustomerName:  e.CustomerName,
		ProductID:     e.ProductID,
		ProductName:   e.ProductName,
		Domain:        e.Domain,
		Username:      e.Username,
		Password:      e.Password,
		NextDueDate:   e.NextDueDate,
	}
}

// Handler processes a single lifecycle event kind.
type Handler interface {
	Kind() string
	Handle(ctx context.Context, evt LifecycleEvent) error
}

// ClaimStore provides claim/complete/fail idempotency semantics for hook
// deliveries.
type ClaimStore interface {
	Claim(ctx context.Context, key string, lease time.Duration) (string, bool, error)
	Complete(ctx context.Context, claimID string) error
	Fail(ctx context.Context, claimID string, cause error, retryAt time.Time) error
}

// IdempotencyKeyExtractor derives the dedup key for an event.
type IdempotencyKeyExtractor func(evt LifecycleEvent) (string, error)

// Dispatcher routes lifecycle events to their registered handlers and
// renders the host contract result string.
type Dispatcher struct {
	Store      ClaimStore
	ExtractKey IdempotencyKeyExtractor
	KeyTTL     time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewDispatcher(store ClaimStore) *Dispatcher {
	return &Dispatcher{
		Store:      store,
		ExtractKey: DefaultIdempotencyKeyExtractor,
		KeyTTL:     10 * time.Minute,
		handlers:   map[string]Handler{},
	}
}

func (d *Dispatcher) Register(handler Handler) error {
	if d == nil {
		return inboundInternal("inbound: dispatcher is nil", nil)
	}
	if handler == nil {
		return inboundBadInput("inbound: handler is nil", nil)
	}
	kind := normalizeKind(handler.Kind())
	if !isSupportedKind(kind) {
		return inboundBadInput(
			fmt.Sprintf("inbound: unsupported event kind %q", kind),
			map[string]any{"kind": kind},
		)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[kind]; exists {
		return inboundError(
			fmt.Sprintf("inbound: handler already registered for kind %q", kind),
			goerrors.CategoryConflict,
			http.StatusConflict,
			core.ProvisionErrorOperationFailed,
			map[string]any{"kind": kind},
		)
	}
	d.handlers[kind] = handler
	return nil
}

// Dispatch runs the handler for the event and returns the host contract
// string: ResultSuccess on completion, the error message otherwise. The
// error carries the full envelope for logging.
func (d *Dispatcher) Dispatch(ctx context.Context, evt LifecycleEvent) (string, error) {
	if d == nil {
		err := inboundInternal("inbound: dispatcher is nil", nil)
		return err.Error(), err
	}
	evt.Kind = normalizeKind(evt.Kind)
	evt.ServiceID = strings.TrimSpace(evt.ServiceID)
	if evt.ServiceID == "" {
		err := inboundBadInput("inbound: service id is required", map[string]any{"kind": evt.Kind})
		return renderResult(err)
	}
	if !isSupportedKind(evt.Kind) {
		err := inboundBadInput(
			fmt.Sprintf("inbound: unsupported event kind %q", evt.Kind),
			map[string]any{"service_id": evt.ServiceID, "kind": evt.Kind},
		)
		return renderResult(err)
	}

	claimID := ""
	if d.Store != nil {
		extractor := d.ExtractKey
		if extractor == nil {
			extractor = DefaultIdempotencyKeyExtractor
		}
		key, err := extractor(evt)
		if err != nil {
			wrapped := inboundWrapError(
				err,
				goerrors.CategoryBadInput,
				"inbound: resolve idempotency key",
				http.StatusBadRequest,
				core.ProvisionErrorBadInput,
				map[string]any{"service_id": evt.ServiceID, "kind": evt.Kind},
			)
			return renderResult(wrapped)
		}
		var accepted bool
		claimID, accepted, err = d.Store.Claim(ctx, evt.Kind+":"+key, d.keyTTL())
		if err != nil {
			wrapped := inboundWrapError(
				err,
				goerrors.CategoryOperation,
				"inbound: idempotency claim failed",
				http.StatusInternalServerError,
				core.ProvisionErrorOperationFailed,
				map[string]any{"service_id": evt.ServiceID, "kind": evt.Kind, "idempotency": key},
			)
			return renderResult(wrapped)
		}
		if !accepted {
			// Duplicate delivery of a hook already handled or in flight.
			return ResultSuccess, nil
		}
	}

	handler := d.handlerFor(evt.Kind)
	if handler == nil {
		err := inboundError(
			fmt.Sprintf("inbound: no handler registered for kind %q", evt.Kind),
			goerrors.CategoryNotFound,
			http.StatusNotFound,
			core.ProvisionErrorNotFound,
			map[string]any{"service_id": evt.ServiceID, "kind": evt.Kind},
		)
		if d.Store != nil && claimID != "" {
			if failErr := d.Store.Fail(ctx, claimID, err, time.Time{}); failErr != nil {
				joined := errors.Join(err, failErr)
				return renderResult(joined)
			}
		}
		return renderResult(err)
	}

	if err := handler.Handle(ctx, evt); err != nil {
		if d.Store != nil && claimID != "" {
			if failErr := d.Store.Fail(ctx, claimID, err, time.Time{}); failErr != nil {
				return renderResult(errors.Join(err, failErr))
			}
		}
		return renderResult(err)
	}

	if d.Store != nil && claimID != "" {
		if err := d.Store.Complete(ctx, claimID); err != nil {
			wrapped := inboundWrapError(
				err,
				goerrors.CategoryOperation,
				"inbound: complete idempotency claim",
				http.StatusInternalServerError,
				core.ProvisionErrorOperationFailed,
				map[string]any{"service_id": evt.ServiceID, "kind": evt.Kind, "claim_id": claimID},
			)
			return renderResult(wrapped)
		}
	}
	return ResultSuccess, nil
}

// DefaultIdempotencyKeyExtractor prefers an explicit key from the host and
// falls back to the service id, which is stable across re-deliveries of the
// same hook.
func DefaultIdempotencyKeyExtractor(evt LifecycleEvent) (string, error) {
	if evt.Metadata != nil {
		if value := trimAny(evt.Metadata["idempotency_key"]); value != "" {
			return value, nil
		}
		if value := trimAny(evt.Metadata["hook_id"]); value != "" {
			return value, nil
		}
		if value := trimAny(evt.Metadata["invoice_id"]); value != "" {
			return value, nil
		}
	}
	if evt.ServiceID != "" {
		return evt.ServiceID, nil
	}
	return "", inboundBadInput("inbound: idempotency key is required", map[string]any{
		"kind": evt.Kind,
	})
}

func renderResult(err error) (string, error) {
	if err == nil {
		return ResultSuccess, nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.Message) != "" {
		return rich.Message, err
	}
	return err.Error(), err
}

func (d *Dispatcher) keyTTL() time.Duration {
	if d != nil && d.KeyTTL > 0 {
		return d.KeyTTL
	}
	return 10 * time.Minute
}

func (d *Dispatcher) handlerFor(kind string) Handler {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[normalizeKind(kind)]
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func isSupportedKind(kind string) bool {
	switch normalizeKind(kind) {
	case KindCreate, KindSuspend, KindUnsuspend, KindRenew, KindTerminate, KindChangePlan:
		return true
	default:
		return false
	}
}

func trimAny(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
