package core

import (
	"fmt"
	"strings"
	"time"
)

// UserStatus mirrors the remote platform's boolean isOn flag.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// PlanDayLayout is the wire format the platform expects for plan validity
// boundaries (dayTo/dayFrom).
const PlanDayLayout = "20060102"

// PeriodMonthly is the cadence enum the platform accepts for one-off monthly
// purchases. The service rejects free-text values such as "month".
const PeriodMonthly = "monthly"

// Credentials identify one admin API account on the remote platform. A
// credentials value is immutable for the lifetime of the client built from it.
type Credentials struct {
	Endpoint    string
	AccessKeyID string
	AccessKey   string

	// InsecureSkipVerify disables TLS verification. Default is verify.
	InsecureSkipVerify bool
	// Debug enables full request/response logging on the transport.
	Debug bool
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("core: credentials endpoint is required")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		return fmt.Errorf("core: credentials access key id is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return fmt.Errorf("core: credentials access key is required")
	}
	return nil
}

// AccessToken is a short-lived bearer token issued by the platform. It never
// leaves the transport path.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// User is the remote platform account keyed by email for lookup and by ID for
// every subsequent operation.
type User struct {
	ID        int64
	Username  string
	Email     string
	Fullname  string
	Mobile    string
	Status    UserStatus
	Verified  bool
	CreatedAt int64
	UpdatedAt int64
}

// UserPlan is a purchased service tier assigned to a remote user.
type UserPlan struct {
	ID        int64
	UserID    int64
	PlanID    int64
	Name      string
	DayFrom   string
	DayTo     string
	Enabled   bool
	CreatedAt int64
	UpdatedAt int64
}

// Plan is a purchasable tier in the platform catalog.
type Plan struct {
	ID             int64
	Name           string
	Type           string
	Description    string
	PriceType      string
	BandwidthLimit int64
	TrafficLimit   int64
}

// Cluster is a placement target for newly created users.
type Cluster struct {
	ID       int64
	Name     string
	UniqueID string
	Enabled  bool
}

type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Fullname string
	Mobile   string
	Tel      string
	Remark   string
	Source   string
}

func (in CreateUserInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("core: username is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("core: email is required")
	}
	return nil
}

type BuyUserPlanInput struct {
	UserID      int64
	PlanID      int64
	Name        string
	DayTo       string
	CountMonths int
}

func (in BuyUserPlanInput) Validate() error {
	if in.UserID <= 0 {
		return fmt.Errorf("core: user id is required")
	}
	if in.PlanID <= 0 {
		return fmt.Errorf("core: plan id is required")
	}
	return nil
}

// UpdateUserPlanInput carries the complete replacement field set for a plan
// update. The platform replaces rather than patches, so callers re-read the
// current plan and send every field back.
type UpdateUserPlanInput struct {
	PlanID  int64
	Name    string
	DayTo   string
	Enabled bool
}

// PlanBinding maps a billing-system product to a remote platform plan.
type PlanBinding struct {
	ID          string
	ProductID   string
	PlanID      int64
	ProductName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProvisionRequest is the parameter bag every lifecycle operation receives
// from the billing host.
type ProvisionRequest struct {
	ServiceID     string
	CustomerEmail string
	CustomerName  string
	ProductID     string
	ProductName   string
	Domain        string
	Username      string
	Password      string
	NextDueDate   time.Time
}

func (r ProvisionRequest) Validate() error {
	if strings.TrimSpace(r.CustomerEmail) == "" {
		return fmt.Errorf("core: customer email is required")
	}
	if strings.TrimSpace(r.ProductID) == "" {
		return fmt.Errorf("core: product id is required")
	}
	return nil
}

// ChangePlanRequest switches a service to the plan bound to ProductID,
// removing the plan bound to PreviousProductID.
type ChangePlanRequest struct {
	ProvisionRequest
	PreviousProductID string
}

// ProvisionResult reports the outcome of a successful account provisioning.
type ProvisionResult struct {
	UserID       int64
	UserPlanID   int64
	PlanID       int64
	ExistingUser bool
}

type UpsertPlanBindingInput struct {
	ProductID   string
	PlanID      int64
	ProductName string
}

func (in UpsertPlanBindingInput) Validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return fmt.Errorf("core: product id is required")
	}
	if in.PlanID <= 0 {
		return fmt.Errorf("core: plan id is required")
	}
	return nil
}

// AccountOverview is the read model presentation layers consume.
type AccountOverview struct {
	User  User
	Plans []UserPlan
}

// FormatPlanDay renders a time in the platform's dayTo wire format.
func FormatPlanDay(t time.Time) string {
	return t.UTC().Format(PlanDayLayout)
}

// ParsePlanDay parses a platform dayTo value.
func ParsePlanDay(value string) (time.Time, error) {
	parsed, err := time.Parse(PlanDayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("core: parse plan day %q: %w", value, err)
	}
	return parsed.UTC(), nil
}

// StatusFromEnabled maps the remote isOn flag to a user-facing status.
func StatusFromEnabled(enabled bool) UserStatus {
	if enabled {
		return UserStatusActive
	}
	return UserStatusSuspended
}
