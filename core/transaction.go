package core

import (
	"context"

	"github.com/goliatone/go-provision/saga"
)

// Transaction pairs a saga coordinator with the platform client. Mutations go
// through it so every successful side effect gets a compensation recorded
// before the next step runs.
type Transaction struct {
	coordinator *saga.Coordinator
	client      PlatformClient
}

func NewTransaction(client PlatformClient, opts ...saga.Option) *Transaction {
	return &Transaction{
		coordinator: saga.NewCoordinator(opts...),
		client:      client,
	}
}

func (t *Transaction) Begin() error {
	return t.coordinator.Begin()
}

func (t *Transaction) Commit() error {
	return t.coordinator.Commit()
}

func (t *Transaction) Rollback(ctx context.Context) saga.RollbackReport {
	return t.coordinator.Rollback(ctx)
}

func (t *Transaction) ID() string {
	return t.coordinator.ID()
}

// CreateUser creates a remote user and records its deletion as compensation.
func (t *Transaction) CreateUser(ctx context.Context, in CreateUserInput) (int64, error) {
	userID, err := t.client.CreateUser(ctx, in)
	if err != nil {
		return 0, err
	}
	client := t.client
	err = t.coordinator.Record(saga.NewAction(saga.KindDeleteUser, userID, func(ctx context.Context) error {
		return client.DeleteUser(ctx, userID)
	}))
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// BuyUserPlan purchases a plan and records its deletion as compensation.
func (t *Transaction) BuyUserPlan(ctx context.Context, in BuyUserPlanInput) (int64, error) {
	userPlanID, err := t.client.BuyUserPlan(ctx, in)
	if err != nil {
		return 0, err
	}
	client := t.client
	err = t.coordinator.Record(saga.NewAction(saga.KindDeleteUserPlan, userPlanID, func(ctx context.Context) error {
		return client.DeleteUserPlan(ctx, userPlanID)
	}))
	if err != nil {
		return 0, err
	}
	return userPlanID, nil
}
