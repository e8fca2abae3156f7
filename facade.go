package provision

import (
	"fmt"

	provisioncommand "github.com/goliatone/go-provision/command"
	provisionquery "github.com/goliatone/go-provision/query"
)

// CommandQueryService is the full surface the facade exposes through
// commands and queries. *core.Service satisfies it.
type CommandQueryService interface {
	provisioncommand.MutatingService
	provisioncommand.BindingMutatingService
	provisionquery.AccountReader
	provisionquery.PlanBindingReader
	provisionquery.PlanReader
}

type Commands struct {
	ProvisionAccount  *provisioncommand.ProvisionAccountCommand
	SuspendAccount    *provisioncommand.SuspendAccountCommand
	UnsuspendAccount  *provisioncommand.UnsuspendAccountCommand
	RenewAccount      *provisioncommand.RenewAccountCommand
	TerminateAccount  *provisioncommand.TerminateAccountCommand
	ChangePlan        *provisioncommand.ChangePlanCommand
	UpsertPlanBinding *provisioncommand.UpsertPlanBindingCommand
	DeletePlanBinding *provisioncommand.DeletePlanBindingCommand
}

type Queries struct {
	GetAccountOverview *provisionquery.GetAccountOverviewQuery
	ListPlanBindings   *provisionquery.ListPlanBindingsQuery
	ListAvailablePlans *provisionquery.ListAvailablePlansQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	planReader provisionquery.PlanReader
}

// WithPlanReader overrides the plan listing source, for hosts that cache the
// remote catalog.
func WithPlanReader(reader provisionquery.PlanReader) FacadeOption {
	return func(options *facadeOptions) {
		options.planReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("provision: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	planReader := cfg.planReader
	if planReader == nil {
		planReader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		ProvisionAccount:  provisioncommand.NewProvisionAccountCommand(service),
		SuspendAccount:    provisioncommand.NewSuspendAccountCommand(service),
		UnsuspendAccount:  provisioncommand.NewUnsuspendAccountCommand(service),
		RenewAccount:      provisioncommand.NewRenewAccountCommand(service),
		TerminateAccount:  provisioncommand.NewTerminateAccountCommand(service),
		ChangePlan:        provisioncommand.NewChangePlanCommand(service),
		UpsertPlanBinding: provisioncommand.NewUpsertPlanBindingCommand(service),
		DeletePlanBinding: provisioncommand.NewDeletePlanBindingCommand(service),
	}
	facade.queries = Queries{
		GetAccountOverview: provisionquery.NewGetAccountOverviewQuery(service),
		ListPlanBindings:   provisionquery.NewListPlanBindingsQuery(service),
		ListAvailablePlans: provisionquery.NewListAvailablePlansQuery(planReader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
