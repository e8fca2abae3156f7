package provision

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	provisioncommand "github.com/goliatone/go-provision/command"
	"github.com/goliatone/go-provision/core"
	provisionquery "github.com/goliatone/go-provision/query"
)

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &facadeStubService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	cmds := facade.Commands()
	if cmds.ProvisionAccount == nil || cmds.SuspendAccount == nil || cmds.UnsuspendAccount == nil ||
		cmds.RenewAccount == nil || cmds.TerminateAccount == nil || cmds.ChangePlan == nil ||
		cmds.UpsertPlanBinding == nil || cmds.DeletePlanBinding == nil {
		t.Fatalf("expected all commands wired: %#v", cmds)
	}
	queries := facade.Queries()
	if queries.GetAccountOverview == nil || queries.ListPlanBindings == nil || queries.ListAvailablePlans == nil {
		t.Fatalf("expected all queries wired: %#v", queries)
	}
	if facade.Service() == nil {
		t.Fatalf("expected service accessor")
	}
}

func TestFacade_CommandRoundTrip(t *testing.T) {
	svc := &facadeStubService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.ProvisionResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err = facade.Commands().ProvisionAccount.Execute(ctx, provisioncommand.ProvisionAccountMessage{
		Request: core.ProvisionRequest{
			ServiceID:     "svc_1",
			CustomerEmail: "alice@example.com",
			ProductID:     "prod_cdn",
		},
	})
	if err != nil {
		t.Fatalf("execute provision: %v", err)
	}
	stored, ok := collector.Load()
	if !ok {
		t.Fatalf("expected provision result")
	}
	if stored.UserID != 42 {
		t.Fatalf("unexpected provision result: %#v", stored)
	}

	overview, err := facade.Queries().GetAccountOverview.Query(context.Background(), provisionquery.GetAccountOverviewMessage{
		CustomerEmail: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("query overview: %v", err)
	}
	if overview.User.Email != "alice@example.com" {
		t.Fatalf("unexpected overview: %#v", overview)
	}
}

func TestNewFacade_PlanReaderOverride(t *testing.T) {
	svc := &facadeStubService{}
	override := &staticPlanReader{plans: []core.Plan{{ID: 9, Name: "Cached"}}}
	facade, err := NewFacade(svc, WithPlanReader(override))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	plans, err := facade.Queries().ListAvailablePlans.Query(context.Background(), provisionquery.ListAvailablePlansMessage{})
	if err != nil {
		t.Fatalf("query plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Name != "Cached" {
		t.Fatalf("expected override plans, got %#v", plans)
	}
	if svc.listPlansCalls != 0 {
		t.Fatalf("expected service plan reader to be bypassed")
	}
}

type facadeStubService struct {
	listPlansCalls int
}

func (s *facadeStubService) CreateAccount(context.Context, core.ProvisionRequest) (core.ProvisionResult, error) {
	return core.ProvisionResult{UserID: 42, UserPlanID: 11, PlanID: 3}, nil
}

func (s *facadeStubService) SuspendAccount(context.Context, core.ProvisionRequest) error   { return nil }
func (s *facadeStubService) UnsuspendAccount(context.Context, core.ProvisionRequest) error { return nil }
func (s *facadeStubService) RenewAccount(context.Context, core.ProvisionRequest) error     { return nil }
func (s *facadeStubService) TerminateAccount(context.Context, core.ProvisionRequest) error { return nil }
func (s *facadeStubService) ChangePlan(context.Context, core.ChangePlanRequest) error      { return nil }

func (s *facadeStubService) UpsertPlanBinding(_ context.Context, in core.UpsertPlanBindingInput) (core.PlanBinding, error) {
	return core.PlanBinding{ID: "bind_1", ProductID: in.ProductID, PlanID: in.PlanID}, nil
}

func (s *facadeStubService) DeletePlanBinding(context.Context, string) error { return nil }

func (s *facadeStubService) Overview(_ context.Context, email string) (core.AccountOverview, error) {
	return core.AccountOverview{User: core.User{ID: 42, Email: email}}, nil
}

func (s *facadeStubService) ListPlanBindings(context.Context) ([]core.PlanBinding, error) {
	return nil, nil
}

func (s *facadeStubService) ListAvailablePlans(context.Context) ([]core.Plan, error) {
	s.listPlansCalls++
	return []core.Plan{{ID: 3, Name: "CDN Pro"}}, nil
}

var _ CommandQueryService = (*facadeStubService)(nil)

type staticPlanReader struct {
	plans []core.Plan
}

func (r *staticPlanReader) ListAvailablePlans(context.Context) ([]core.Plan, error) {
	return r.plans, nil
}
