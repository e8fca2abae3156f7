package command

import (
	"strings"

	"github.com/goliatone/go-provision/core"
)

const (
	TypeProvisionAccount  = "provision.command.account.create"
	TypeSuspendAccount    = "provision.command.account.suspend"
	TypeUnsuspendAccount  = "provision.command.account.unsuspend"
	TypeRenewAccount      = "provision.command.account.renew"
	TypeTerminateAccount  = "provision.command.account.terminate"
	TypeChangePlan        = "provision.command.account.change_plan"
	TypeUpsertPlanBinding = "provision.command.binding.upsert"
	TypeDeletePlanBinding = "provision.command.binding.delete"
)

type ProvisionAccountMessage struct {
	Request core.ProvisionRequest
}

func (ProvisionAccountMessage) Type() string { return TypeProvisionAccount }

func (m ProvisionAccountMessage) Validate() error {
	return validateRequest(m.Request)
}

type SuspendAccountMessage struct {
	Request core.ProvisionRequest
}

func (SuspendAccountMessage) Type() string { return TypeSuspendAccount }

func (m SuspendAccountMessage) Validate() error {
	return validateRequest(m.Request)
}

type UnsuspendAccountMessage struct {
	Request core.ProvisionRequest
}

func (UnsuspendAccountMessage) Type() string { return TypeUnsuspendAccount }

func (m UnsuspendAccountMessage) Validate() error {
	return validateRequest(m.Request)
}

type RenewAccountMessage struct {
	Request core.ProvisionRequest
}

func (RenewAccountMessage) Type() string { return TypeRenewAccount }

func (m RenewAccountMessage) Validate() error {
	return validateRequest(m.Request)
}

type TerminateAccountMessage struct {
	Request core.ProvisionRequest
}

func (TerminateAccountMessage) Type() string { return TypeTerminateAccount }

func (m TerminateAccountMessage) Validate() error {
	return validateRequest(m.Request)
}

type ChangePlanMessage struct {
	Request core.ChangePlanRequest
}

func (ChangePlanMessage) Type() string { return TypeChangePlan }

func (m ChangePlanMessage) Validate() error {
	return validateRequest(m.Request.ProvisionRequest)
}

type UpsertPlanBindingMessage struct {
	Input core.UpsertPlanBindingInput
}

func (UpsertPlanBindingMessage) Type() string { return TypeUpsertPlanBinding }

func (m UpsertPlanBindingMessage) Validate() error {
	return commandWrapValidation(m.Input.Validate(), "command: invalid plan binding")
}

type DeletePlanBindingMessage struct {
	ProductID string
}

func (DeletePlanBindingMessage) Type() string { return TypeDeletePlanBinding }

func (m DeletePlanBindingMessage) Validate() error {
	if strings.TrimSpace(m.ProductID) == "" {
		return commandInvalidInputError("command: product id is required")
	}
	return nil
}

func validateRequest(req core.ProvisionRequest) error {
	return commandWrapValidation(req.Validate(), "command: invalid lifecycle request")
}
