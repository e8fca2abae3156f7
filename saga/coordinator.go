package saga

import (
	"context"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// State tracks the coordinator lifecycle. A coordinator is single-shot:
// Idle -> Active -> Committed or RolledBack, never back.
type State string

const (
	StateIdle       State = "idle"
	StateActive     State = "active"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// Compensation kinds recorded during provisioning.
const (
	KindDeleteUser     = "delete_user"
	KindDeleteUserPlan = "delete_user_plan"
)

// CompensatingAction undoes one remote side effect. Actions are recorded only
// after the forward operation succeeds.
type CompensatingAction struct {
	Kind       string
	TargetID   int64
	RecordedAt time.Time

	undo func(ctx context.Context) error
}

// NewAction builds a compensating action around an undo closure.
func NewAction(kind string, targetID int64, undo func(ctx context.Context) error) CompensatingAction {
	return CompensatingAction{
		Kind:     strings.TrimSpace(kind),
		TargetID: targetID,
		undo:     undo,
	}
}

// RollbackReport summarizes a best-effort rollback pass.
type RollbackReport struct {
	TransactionID string
	Attempted     int
	Succeeded     int
	Failed        int
}

type Coordinator struct {
	mu      sync.Mutex
	state   State
	id      string
	actions []CompensatingAction

	logger glog.Logger
	now    func() time.Time
}

type Option func(*Coordinator)

func WithLogger(logger glog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(opts ...Option) *Coordinator {
	coordinator := &Coordinator{
		state: StateIdle,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(coordinator)
	}
	if coordinator.logger == nil {
		_, logger := glog.Resolve("saga", nil, nil)
		coordinator.logger = logger
	}
	if coordinator.now == nil {
		coordinator.now = time.Now
	}
	return coordinator
}

// Begin transitions the coordinator to Active and assigns a transaction id.
func (c *Coordinator) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return goerrors.New("saga: transaction already started", goerrors.CategoryConflict).
			WithTextCode("SAGA_ALREADY_STARTED").
			WithMetadata(map[string]any{"state": string(c.state)})
	}
	c.state = StateActive
	c.id = uuid.NewString()
	c.actions = c.actions[:0]
	if c.logger != nil {
		c.logger.Info("saga transaction started", "transaction_id", c.id)
	}
	return nil
}

// Record registers a compensating action for a side effect that just
// succeeded. Recording outside an active transaction is rejected.
func (c *Coordinator) Record(action CompensatingAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return goerrors.New("saga: cannot record compensation outside an active transaction", goerrors.CategoryConflict).
			WithTextCode("SAGA_NOT_ACTIVE").
			WithMetadata(map[string]any{"state": string(c.state), "kind": action.Kind})
	}
	if action.undo == nil {
		return goerrors.New("saga: compensating action requires an undo function", goerrors.CategoryBadInput).
			WithTextCode("SAGA_INVALID_ACTION")
	}
	action.RecordedAt = c.now().UTC()
	c.actions = append(c.actions, action)
	if c.logger != nil {
		c.logger.Info("compensation recorded",
			"transaction_id", c.id,
			"kind", action.Kind,
			"target_id", action.TargetID,
		)
	}
	return nil
}

// Commit seals the transaction and discards every recorded compensation.
func (c *Coordinator) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return goerrors.New("saga: cannot commit outside an active transaction", goerrors.CategoryConflict).
			WithTextCode("SAGA_NOT_ACTIVE").
			WithMetadata(map[string]any{"state": string(c.state)})
	}
	discarded := len(c.actions)
	c.state = StateCommitted
	c.actions = nil
	if c.logger != nil {
		c.logger.Info("saga transaction committed",
			"transaction_id", c.id,
			"discarded_compensations", discarded,
		)
	}
	return nil
}

// Rollback executes every recorded compensation in reverse order. Failures
// are logged and counted but never interrupt the pass. Rolling back a
// coordinator that is not active is a logged no-op.
func (c *Coordinator) Rollback(ctx context.Context) RollbackReport {
	c.mu.Lock()
	if c.state != StateActive {
		state := c.state
		id := c.id
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Warn("rollback requested outside an active transaction",
				"transaction_id", id,
				"state", string(state),
			)
		}
		return RollbackReport{TransactionID: id}
	}
	actions := c.actions
	c.actions = nil
	c.state = StateRolledBack
	id := c.id
	c.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	report := RollbackReport{TransactionID: id, Attempted: len(actions)}
	for i := len(actions) - 1; i >= 0; i-- {
		action := actions[i]
		if err := action.undo(ctx); err != nil {
			report.Failed++
			if c.logger != nil {
				c.logger.Error("compensation failed",
					"transaction_id", id,
					"kind", action.Kind,
					"target_id", action.TargetID,
					"error", err.Error(),
				)
			}
			continue
		}
		report.Succeeded++
		if c.logger != nil {
			c.logger.Info("compensation applied",
				"transaction_id", id,
				"kind", action.Kind,
				"target_id", action.TargetID,
			)
		}
	}
	if c.logger != nil {
		c.logger.Info("saga transaction rolled back",
			"transaction_id", id,
			"attempted", report.Attempted,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
		)
	}
	return report
}

// ID returns the transaction id assigned at Begin.
func (c *Coordinator) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports how many compensations would run on rollback.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.actions)
}
