package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

func TestCoordinatorLifecycle(t *testing.T) {
	coordinator := NewCoordinator()
	if got := coordinator.State(); got != StateIdle {
		t.Fatalf("expected idle state, got %s", got)
	}

	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if got := coordinator.State(); got != StateActive {
		t.Fatalf("expected active state, got %s", got)
	}
	if coordinator.ID() == "" {
		t.Fatal("expected a transaction id after begin")
	}

	if err := coordinator.Begin(); err == nil {
		t.Fatal("expected second begin to fail")
	}

	if err := coordinator.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := coordinator.State(); got != StateCommitted {
		t.Fatalf("expected committed state, got %s", got)
	}
	if err := coordinator.Commit(); err == nil {
		t.Fatal("expected commit after commit to fail")
	}
}

func TestCoordinatorRecordRequiresActiveTransaction(t *testing.T) {
	coordinator := NewCoordinator()
	err := coordinator.Record(NewAction(KindDeleteUser, 42, func(context.Context) error { return nil }))
	if err == nil {
		t.Fatal("expected record on idle coordinator to fail")
	}
}

func TestCoordinatorRecordRejectsMissingUndo(t *testing.T) {
	coordinator := NewCoordinator()
	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := coordinator.Record(CompensatingAction{Kind: KindDeleteUser, TargetID: 42}); err == nil {
		t.Fatal("expected record without undo to fail")
	}
}

func TestCoordinatorRollbackRunsInReverseOrder(t *testing.T) {
	coordinator := NewCoordinator(WithNow(func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	}))
	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	var order []string
	record := func(kind string, id int64) {
		t.Helper()
		err := coordinator.Record(NewAction(kind, id, func(context.Context) error {
			order = append(order, kind)
			return nil
		}))
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	record(KindDeleteUser, 42)
	record(KindDeleteUserPlan, 7)

	if got := coordinator.Pending(); got != 2 {
		t.Fatalf("expected 2 pending compensations, got %d", got)
	}

	report := coordinator.Rollback(context.Background())
	if report.Attempted != 2 || report.Succeeded != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(order) != 2 || order[0] != KindDeleteUserPlan || order[1] != KindDeleteUser {
		t.Fatalf("expected reverse-order rollback, got %v", order)
	}
	if got := coordinator.State(); got != StateRolledBack {
		t.Fatalf("expected rolled back state, got %s", got)
	}
}

func TestCoordinatorRollbackIsBestEffort(t *testing.T) {
	coordinator := NewCoordinator()
	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	var executed []int64
	actions := []struct {
		id   int64
		fail bool
	}{
		{id: 1, fail: false},
		{id: 2, fail: true},
		{id: 3, fail: false},
	}
	for _, action := range actions {
		action := action
		err := coordinator.Record(NewAction(KindDeleteUserPlan, action.id, func(context.Context) error {
			executed = append(executed, action.id)
			if action.fail {
				return errors.New("remote unavailable")
			}
			return nil
		}))
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	report := coordinator.Rollback(context.Background())
	if report.Attempted != 3 {
		t.Fatalf("expected 3 attempted, got %d", report.Attempted)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(executed) != 3 || executed[0] != 3 || executed[1] != 2 || executed[2] != 1 {
		t.Fatalf("expected every compensation attempted in reverse, got %v", executed)
	}
}

func TestCoordinatorRollbackOutsideActiveIsNoOp(t *testing.T) {
	coordinator := NewCoordinator()
	report := coordinator.Rollback(context.Background())
	if report.Attempted != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if got := coordinator.State(); got != StateIdle {
		t.Fatalf("expected state unchanged, got %s", got)
	}

	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := coordinator.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	report = coordinator.Rollback(context.Background())
	if report.Attempted != 0 {
		t.Fatalf("expected no compensations after commit, got %+v", report)
	}
	if got := coordinator.State(); got != StateCommitted {
		t.Fatalf("expected committed state preserved, got %s", got)
	}
}

func TestCoordinatorRollbackOutsideActiveWarns(t *testing.T) {
	logger := &levelRecordingLogger{}
	coordinator := NewCoordinator(WithLogger(logger))

	coordinator.Rollback(context.Background())
	if len(logger.warns) != 1 {
		t.Fatalf("expected 1 warning for idle rollback, got %d", len(logger.warns))
	}

	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := coordinator.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	coordinator.Rollback(context.Background())
	if len(logger.warns) != 2 {
		t.Fatalf("expected warning for committed rollback, got %d", len(logger.warns))
	}
}

var _ glog.Logger = (*levelRecordingLogger)(nil)

type levelRecordingLogger struct {
	warns []string
}

func (l *levelRecordingLogger) Trace(string, ...any) {}
func (l *levelRecordingLogger) Debug(string, ...any) {}
func (l *levelRecordingLogger) Info(string, ...any)  {}
func (l *levelRecordingLogger) Error(string, ...any) {}
func (l *levelRecordingLogger) Fatal(string, ...any) {}

func (l *levelRecordingLogger) Warn(msg string, _ ...any) {
	l.warns = append(l.warns, msg)
}

func (l *levelRecordingLogger) WithContext(context.Context) glog.Logger {
	return l
}

func TestCoordinatorCommitDiscardsCompensations(t *testing.T) {
	coordinator := NewCoordinator()
	if err := coordinator.Begin(); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	ran := false
	err := coordinator.Record(NewAction(KindDeleteUser, 9, func(context.Context) error {
		ran = true
		return nil
	}))
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := coordinator.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	coordinator.Rollback(context.Background())
	if ran {
		t.Fatal("expected compensation to be discarded on commit")
	}
}
