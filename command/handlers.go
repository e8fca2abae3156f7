package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-provision/core"
)

// MutatingService is the slice of the provisioning service that lifecycle
// commands drive.
type MutatingService interface {
	CreateAccount(ctx context.Context, req core.ProvisionRequest) (core.ProvisionResult, error)
	SuspendAccount(ctx context.Context, req core.ProvisionRequest) error
	UnsuspendAccount(ctx context.Context, req core.ProvisionRequest) error
	RenewAccount(ctx context.Context, req core.ProvisionRequest) error
	TerminateAccount(ctx context.Context, req core.ProvisionRequest) error
	ChangePlan(ctx context.Context, req core.ChangePlanRequest) error
}

// BindingMutatingService is the slice of the provisioning service that
// manages product to plan bindings.
type BindingMutatingService interface {
	UpsertPlanBinding(ctx context.Context, in core.UpsertPlanBindingInput) (core.PlanBinding, error)
	DeletePlanBinding(ctx context.Context, productID string) error
}

type ProvisionAccountCommand struct {
	service MutatingService
}

func NewProvisionAccountCommand(service MutatingService) *ProvisionAccountCommand {
	return &ProvisionAccountCommand{service: service}
}

func (c *ProvisionAccountCommand) Execute(ctx context.Context, msg ProvisionAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	out, err := c.service.CreateAccount(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SuspendAccountCommand struct {
	service MutatingService
}

func NewSuspendAccountCommand(service MutatingService) *SuspendAccountCommand {
	return &SuspendAccountCommand{service: service}
}

func (c *SuspendAccountCommand) Execute(ctx context.Context, msg SuspendAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: suspend service is required")
	}
	return c.service.SuspendAccount(ctx, msg.Request)
}

type UnsuspendAccountCommand struct {
	service MutatingService
}

func NewUnsuspendAccountCommand(service MutatingService) *UnsuspendAccountCommand {
	return &UnsuspendAccountCommand{service: service}
}

func (c *UnsuspendAccountCommand) Execute(ctx context.Context, msg UnsuspendAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: unsuspend service is required")
	}
	return c.service.UnsuspendAccount(ctx, msg.Request)
}

type RenewAccountCommand struct {
	service MutatingService
}

func NewRenewAccountCommand(service MutatingService) *RenewAccountCommand {
	return &RenewAccountCommand{service: service}
}

func (c *RenewAccountCommand) Execute(ctx context.Context, msg RenewAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: renew service is required")
	}
	return c.service.RenewAccount(ctx, msg.Request)
}

type TerminateAccountCommand struct {
	service MutatingService
}

func NewTerminateAccountCommand(service MutatingService) *TerminateAccountCommand {
	return &TerminateAccountCommand{service: service}
}

func (c *TerminateAccountCommand) Execute(ctx context.Context, msg TerminateAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: terminate service is required")
	}
	return c.service.TerminateAccount(ctx, msg.Request)
}

type ChangePlanCommand struct {
	service MutatingService
}

func NewChangePlanCommand(service MutatingService) *ChangePlanCommand {
	return &ChangePlanCommand{service: service}
}

func (c *ChangePlanCommand) Execute(ctx context.Context, msg ChangePlanMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: change plan service is required")
	}
	return c.service.ChangePlan(ctx, msg.Request)
}

type UpsertPlanBindingCommand struct {
	service BindingMutatingService
}

func NewUpsertPlanBindingCommand(service BindingMutatingService) *UpsertPlanBindingCommand {
	return &UpsertPlanBindingCommand{service: service}
}

func (c *UpsertPlanBindingCommand) Execute(ctx context.Context, msg UpsertPlanBindingMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: binding service is required")
	}
	out, err := c.service.UpsertPlanBinding(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeletePlanBindingCommand struct {
	service BindingMutatingService
}

func NewDeletePlanBindingCommand(service BindingMutatingService) *DeletePlanBindingCommand {
	return &DeletePlanBindingCommand{service: service}
}

func (c *DeletePlanBindingCommand) Execute(ctx context.Context, msg DeletePlanBindingMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: binding service is required")
	}
	return c.service.DeletePlanBinding(ctx, msg.ProductID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
