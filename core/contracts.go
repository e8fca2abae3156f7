package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TransportRequest is a protocol-neutral outbound request handed to a
// transport adapter.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// TokenSource supplies bearer tokens for remote platform calls. Token blocks
// while a refresh is in flight so concurrent callers share one exchange.
type TokenSource interface {
	Token(ctx context.Context) (AccessToken, error)
	// Invalidate discards the cached token so the next Token call refreshes.
	Invalidate()
}

// PlatformClient is the typed surface over the remote CDN platform. Finders
// report absence as (zero, false, nil); only transport, protocol, and auth
// failures surface as errors. Delete operations treat not-found as success.
type PlatformClient interface {
	FindUserByEmail(ctx context.Context, email string) (User, bool, error)
	CreateUser(ctx context.Context, in CreateUserInput) (int64, error)
	GetUser(ctx context.Context, userID int64) (User, bool, error)
	DeleteUser(ctx context.Context, userID int64) error

	BuyUserPlan(ctx context.Context, in BuyUserPlanInput) (int64, error)
	GetUserPlan(ctx context.Context, userPlanID int64) (UserPlan, bool, error)
	ListUserPlans(ctx context.Context, userID int64) ([]UserPlan, error)
	FindUserPlanByPlanID(ctx context.Context, userID, planID int64) (UserPlan, bool, error)
	UpdateUserPlan(ctx context.Context, userPlanID int64, in UpdateUserPlanInput) error
	SuspendUserPlan(ctx context.Context, userPlanID int64) error
	ResumeUserPlan(ctx context.Context, userPlanID int64) error
	RenewUserPlan(ctx context.Context, userPlanID int64, dayTo string) error
	DeleteUserPlan(ctx context.Context, userPlanID int64) error

	ListAvailablePlans(ctx context.Context) ([]Plan, error)
	ListClusters(ctx context.Context) ([]Cluster, error)
	DefaultClusterID(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// PlanBindingStore maps billing product ids to remote plan ids.
type PlanBindingStore interface {
	Upsert(ctx context.Context, in UpsertPlanBindingInput) (PlanBinding, error)
	GetByProductID(ctx context.Context, productID string) (PlanBinding, bool, error)
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context) ([]PlanBinding, error)
}

type StoreProvider interface {
	PlanBindingStore() PlanBindingStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}
