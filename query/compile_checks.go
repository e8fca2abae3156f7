package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-provision/core"
)

var (
	_ gocmd.Querier[GetAccountOverviewMessage, core.AccountOverview] = (*GetAccountOverviewQuery)(nil)
	_ gocmd.Querier[ListPlanBindingsMessage, []core.PlanBinding]     = (*ListPlanBindingsQuery)(nil)
	_ gocmd.Querier[ListAvailablePlansMessage, []core.Plan]          = (*ListAvailablePlansQuery)(nil)
)
