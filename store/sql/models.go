package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-provision/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type planBindingRecord struct {
	bun.BaseModel `bun:"table:provision_plan_bindings,alias:ppb"`

	ID          string     `bun:"id,pk"`
	ProductID   string     `bun:"product_id,notnull"`
	PlanID      int64      `bun:"plan_id,notnull"`
	ProductName string     `bun:"product_name"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt   *time.Time `bun:"deleted_at,soft_delete"`
}

func newPlanBindingRecord(in core.UpsertPlanBindingInput, now time.Time) *planBindingRecord {
	return &planBindingRecord{
		ID:          uuid.NewString(),
		ProductID:   strings.TrimSpace(in.ProductID),
		PlanID:      in.PlanID,
		ProductName: strings.TrimSpace(in.ProductName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *planBindingRecord) toDomain() core.PlanBinding {
	if r == nil {
		return core.PlanBinding{}
	}
	return core.PlanBinding{
		ID:          r.ID,
		ProductID:   r.ProductID,
		PlanID:      r.PlanID,
		ProductName: r.ProductName,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
