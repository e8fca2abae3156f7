package query

import (
	"context"

	"github.com/goliatone/go-provision/core"
)

// AccountReader exposes the read side of the provisioning service.
type AccountReader interface {
	Overview(ctx context.Context, email string) (core.AccountOverview, error)
}

// PlanBindingReader lists the configured product to plan bindings.
type PlanBindingReader interface {
	ListPlanBindings(ctx context.Context) ([]core.PlanBinding, error)
}

// PlanReader lists the plans the remote platform offers.
type PlanReader interface {
	ListAvailablePlans(ctx context.Context) ([]core.Plan, error)
}

type GetAccountOverviewQuery struct {
	reader AccountReader
}

func NewGetAccountOverviewQuery(reader AccountReader) *GetAccountOverviewQuery {
	return &GetAccountOverviewQuery{reader: reader}
}

func (q *GetAccountOverviewQuery) Query(ctx context.Context, msg GetAccountOverviewMessage) (core.AccountOverview, error) {
	if q == nil || q.reader == nil {
		return core.AccountOverview{}, queryDependencyError("query: account reader is required")
	}
	return q.reader.Overview(ctx, msg.CustomerEmail)
}

type ListPlanBindingsQuery struct {
	reader PlanBindingReader
}

func NewListPlanBindingsQuery(reader PlanBindingReader) *ListPlanBindingsQuery {
	return &ListPlanBindingsQuery{reader: reader}
}

func (q *ListPlanBindingsQuery) Query(ctx context.Context, msg ListPlanBindingsMessage) ([]core.PlanBinding, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: plan binding reader is required")
	}
	return q.reader.ListPlanBindings(ctx)
}

type ListAvailablePlansQuery struct {
	reader PlanReader
}

func NewListAvailablePlansQuery(reader PlanReader) *ListAvailablePlansQuery {
	return &ListAvailablePlansQuery{reader: reader}
}

func (q *ListAvailablePlansQuery) Query(ctx context.Context, msg ListAvailablePlansMessage) ([]core.Plan, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: plan reader is required")
	}
	return q.reader.ListAvailablePlans(ctx)
}
