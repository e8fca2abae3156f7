package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-provision/core"
	"github.com/uptrace/bun"
)

// PlanBindingStore persists product-to-plan bindings. product_id is the
// natural key; soft-deleted rows are invisible to every read.
type PlanBindingStore struct {
	db   *bun.DB
	repo repository.Repository[*planBindingRecord]
}

func (s *PlanBindingStore) Upsert(ctx context.Context, in core.UpsertPlanBindingInput) (core.PlanBinding, error) {
	if s == nil || s.repo == nil {
		return core.PlanBinding{}, fmt.Errorf("sqlstore: plan binding store is not configured")
	}
	if err := in.Validate(); err != nil {
		return core.PlanBinding{}, err
	}
	now := time.Now().UTC()

	existing, found, err := s.findRecord(ctx, in.ProductID)
	if err != nil {
		return core.PlanBinding{}, err
	}
	if found {
		existing.PlanID = in.PlanID
		existing.ProductName = strings.TrimSpace(in.ProductName)
		existing.UpdatedAt = now
		updated, err := s.repo.Update(ctx, existing, repository.UpdateByID(existing.ID))
		if err != nil {
			return core.PlanBinding{}, err
		}
		return updated.toDomain(), nil
	}

	created, err := s.repo.Create(ctx, newPlanBindingRecord(in, now))
	if err != nil {
		return core.PlanBinding{}, err
	}
	return created.toDomain(), nil
}

func (s *PlanBindingStore) GetByProductID(ctx context.Context, productID string) (core.PlanBinding, bool, error) {
	if s == nil || s.repo == nil {
		return core.PlanBinding{}, false, fmt.Errorf("sqlstore: plan binding store is not configured")
	}
	record, found, err := s.findRecord(ctx, productID)
	if err != nil {
		return core.PlanBinding{}, false, err
	}
	if !found {
		return core.PlanBinding{}, false, nil
	}
	return record.toDomain(), true, nil
}

func (s *PlanBindingStore) Delete(ctx context.Context, productID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: plan binding store is not configured")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("sqlstore: product id is required")
	}
	_, err := s.db.NewDelete().
		Model((*planBindingRecord)(nil)).
		Where("product_id = ?", productID).
		Exec(ctx)
	return err
}

func (s *PlanBindingStore) List(ctx context.Context) ([]core.PlanBinding, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: plan binding store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.OrderBy("product_id ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.PlanBinding, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *PlanBindingStore) findRecord(ctx context.Context, productID string) (*planBindingRecord, bool, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, false, fmt.Errorf("sqlstore: product id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("product_id", "=", productID),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

var _ core.PlanBindingStore = (*PlanBindingStore)(nil)
