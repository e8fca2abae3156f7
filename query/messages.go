package query

import "strings"

const (
	TypeGetAccountOverview = "provision.query.account.overview"
	TypeListPlanBindings   = "provision.query.binding.list"
	TypeListAvailablePlans = "provision.query.plan.list"
)

type GetAccountOverviewMessage struct {
	CustomerEmail string
}

func (GetAccountOverviewMessage) Type() string { return TypeGetAccountOverview }

func (m GetAccountOverviewMessage) Validate() error {
	if strings.TrimSpace(m.CustomerEmail) == "" {
		return queryInvalidInputError("query: customer email is required")
	}
	return nil
}

type ListPlanBindingsMessage struct{}

func (ListPlanBindingsMessage) Type() string { return TypeListPlanBindings }

func (ListPlanBindingsMessage) Validate() error { return nil }

type ListAvailablePlansMessage struct{}

func (ListAvailablePlansMessage) Type() string { return TypeListAvailablePlans }

func (ListAvailablePlansMessage) Validate() error { return nil }
