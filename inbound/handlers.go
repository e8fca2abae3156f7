package inbound

import (
	"context"

	"github.com/goliatone/go-provision/core"
)

// LifecycleService is the slice of the provisioning service lifecycle hooks
// drive.
type LifecycleService interface {
	CreateAccount(ctx context.Context, req core.ProvisionRequest) (core.ProvisionResult, error)
	SuspendAccount(ctx context.Context, req core.ProvisionRequest) error
	UnsuspendAccount(ctx context.Context, req core.ProvisionRequest) error
	RenewAccount(ctx context.Context, req core.ProvisionRequest) error
	TerminateAccount(ctx context.Context, req core.ProvisionRequest) error
	ChangePlan(ctx context.Context, req core.ChangePlanRequest) error
}

type lifecycleHandler struct {
	kind   string
	handle func(ctx context.Context, evt LifecycleEvent) error
}

func (h lifecycleHandler) Kind() string { return h.kind }

func (h lifecycleHandler) Handle(ctx context.Context, evt LifecycleEvent) error {
	return h.handle(ctx, evt)
}

// ServiceHandlers builds one handler per supported lifecycle kind, all
// backed by the given service.
func ServiceHandlers(svc LifecycleService) []Handler {
	return []Handler{
		lifecycleHandler{kind: KindCreate, handle: func(ctx context.Context, evt LifecycleEvent) error {
			_, err := svc.CreateAccount(ctx, evt.Request())
			return err
		}},
		lifecycleHandler{kind: KindSuspend, handle: func(ctx context.Context, evt LifecycleEvent) error {
			return svc.SuspendAccount(ctx, evt.Request())
		}},
		lifecycleHandler{kind: KindUnsuspend, handle: func(ctx context.Context, evt LifecycleEvent) error {
			return svc.UnsuspendAccount(ctx, evt.Request())
		}},
		lifecycleHandler{kind: KindRenew, handle: func(ctx context.Context, evt LifecycleEvent) error {
			return svc.RenewAccount(ctx, evt.Request())
		}},
		lifecycleHandler{kind: KindTerminate, handle: func(ctx context.Context, evt LifecycleEvent) error {
			return svc.TerminateAccount(ctx, evt.Request())
		}},
		lifecycleHandler{kind: KindChangePlan, handle: func(ctx context.Context, evt LifecycleEvent) error {
			return svc.ChangePlan(ctx, core.ChangePlanRequest{
				ProvisionRequest:  evt.Request(),
				PreviousProductID: evt.PreviousProductID,
			})
		}},
	}
}

// NewServiceDispatcher wires a dispatcher with handlers for every lifecycle
// kind the service supports.
func NewServiceDispatcher(svc LifecycleService, store ClaimStore) (*Dispatcher, error) {
	d := NewDispatcher(store)
	for _, handler := range ServiceHandlers(svc) {
		if err := d.Register(handler); err != nil {
			return nil, err
		}
	}
	return d, nil
}
