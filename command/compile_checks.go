package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ProvisionAccountMessage]  = (*ProvisionAccountCommand)(nil)
	_ gocmd.Commander[SuspendAccountMessage]    = (*SuspendAccountCommand)(nil)
	_ gocmd.Commander[UnsuspendAccountMessage]  = (*UnsuspendAccountCommand)(nil)
	_ gocmd.Commander[RenewAccountMessage]      = (*RenewAccountCommand)(nil)
	_ gocmd.Commander[TerminateAccountMessage]  = (*TerminateAccountCommand)(nil)
	_ gocmd.Commander[ChangePlanMessage]        = (*ChangePlanCommand)(nil)
	_ gocmd.Commander[UpsertPlanBindingMessage] = (*UpsertPlanBindingCommand)(nil)
	_ gocmd.Commander[DeletePlanBindingMessage] = (*DeletePlanBindingCommand)(nil)
)
