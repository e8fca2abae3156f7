package edge

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

// BuyUserPlan purchases a plan for a user and returns the user plan id. The
// cadence is always "monthly"; the service rejects other period values.
func (c *Client) BuyUserPlan(ctx context.Context, in core.BuyUserPlanInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "edge: invalid buy user plan input").
			WithTextCode(core.ProvisionErrorBadInput)
	}
	countMonths := in.CountMonths
	if countMonths < 1 {
		countMonths = 1
	}
	env, err := c.call(ctx, "/UserPlanService/buyUserPlan", map[string]any{
		"userId":      in.UserID,
		"planId":      in.PlanID,
		"name":        strings.TrimSpace(in.Name),
		"dayTo":       strings.TrimSpace(in.DayTo),
		"period":      core.PeriodMonthly,
		"countMonths": countMonths,
	})
	if err != nil {
		return 0, err
	}

	if id, ok := env.createdID("userPlanId"); ok {
		return id, nil
	}
	if !env.indicatesSuccess() {
		return 0, protocolError("/UserPlanService/buyUserPlan", env)
	}
	// Resolve the purchase by plan id when the response omits the id.
	plan, found, err := c.FindUserPlanByPlanID(ctx, in.UserID, in.PlanID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, goerrors.New("edge: user plan purchased but could not be resolved", goerrors.CategoryExternal).
			WithTextCode(core.ProvisionErrorRemoteFailure).
			WithMetadata(map[string]any{"user_id": in.UserID, "plan_id": in.PlanID})
	}
	return plan.ID, nil
}

func (c *Client) GetUserPlan(ctx context.Context, userPlanID int64) (core.UserPlan, bool, error) {
	env, err := c.call(ctx, "/UserPlanService/findEnabledUserPlan", map[string]any{"userPlanId": userPlanID})
	if err != nil {
		if isNotFoundError(err) {
			return core.UserPlan{}, false, nil
		}
		return core.UserPlan{}, false, err
	}
	entry, ok := readMap(env.Data, "userPlan")
	if !ok || len(entry) == 0 {
		return core.UserPlan{}, false, nil
	}
	plan := userPlanFromMap(entry)
	if plan.ID == 0 {
		plan.ID = userPlanID
	}
	return plan, true, nil
}

func (c *Client) ListUserPlans(ctx context.Context, userID int64) ([]core.UserPlan, error) {
	env, err := c.call(ctx, "/UserPlanService/listEnabledUserPlans", map[string]any{
		"userId": userID,
		"offset": 0,
		"size":   100,
	})
	if err != nil {
		return nil, err
	}
	entries := readSlice(env.Data, "userPlans")
	plans := make([]core.UserPlan, 0, len(entries))
	for _, entry := range entries {
		plans = append(plans, userPlanFromMap(entry))
	}
	return plans, nil
}

func (c *Client) FindUserPlanByPlanID(ctx context.Context, userID, planID int64) (core.UserPlan, bool, error) {
	plans, err := c.ListUserPlans(ctx, userID)
	if err != nil {
		return core.UserPlan{}, false, err
	}
	for _, plan := range plans {
		if plan.PlanID == planID {
			return plan, true, nil
		}
	}
	return core.UserPlan{}, false, nil
}

// UpdateUserPlan replaces the full mutable field set of a user plan. The
// remote service overwrites rather than patches, so callers re-read the plan
// and send every field back.
func (c *Client) UpdateUserPlan(ctx context.Context, userPlanID int64, in core.UpdateUserPlanInput) error {
	_, err := c.call(ctx, "/UserPlanService/updateUserPlan", map[string]any{
		"userPlanId": userPlanID,
		"planId":     in.PlanID,
		"name":       strings.TrimSpace(in.Name),
		"dayTo":      strings.TrimSpace(in.DayTo),
		"isOn":       in.Enabled,
	})
	return err
}

// SuspendUserPlan turns the plan off, preserving every other field.
func (c *Client) SuspendUserPlan(ctx context.Context, userPlanID int64) error {
	return c.setUserPlanEnabled(ctx, userPlanID, false)
}

// ResumeUserPlan turns the plan back on, preserving every other field.
func (c *Client) ResumeUserPlan(ctx context.Context, userPlanID int64) error {
	return c.setUserPlanEnabled(ctx, userPlanID, true)
}

// RenewUserPlan extends the plan validity to dayTo, preserving plan id, name,
// and enabled state.
func (c *Client) RenewUserPlan(ctx context.Context, userPlanID int64, dayTo string) error {
	plan, found, err := c.GetUserPlan(ctx, userPlanID)
	if err != nil {
		return err
	}
	if !found {
		return userPlanNotFoundError(userPlanID)
	}
	return c.UpdateUserPlan(ctx, userPlanID, core.UpdateUserPlanInput{
		PlanID:  plan.PlanID,
		Name:    plan.Name,
		DayTo:   strings.TrimSpace(dayTo),
		Enabled: plan.Enabled,
	})
}

func (c *Client) setUserPlanEnabled(ctx context.Context, userPlanID int64, enabled bool) error {
	plan, found, err := c.GetUserPlan(ctx, userPlanID)
	if err != nil {
		return err
	}
	if !found {
		return userPlanNotFoundError(userPlanID)
	}
	return c.UpdateUserPlan(ctx, userPlanID, core.UpdateUserPlanInput{
		PlanID:  plan.PlanID,
		Name:    plan.Name,
		DayTo:   plan.DayTo,
		Enabled: enabled,
	})
}

// DeleteUserPlan removes a user plan. A plan that no longer exists counts as
// deleted.
func (c *Client) DeleteUserPlan(ctx context.Context, userPlanID int64) error {
	_, err := c.call(ctx, "/UserPlanService/deleteUserPlan", map[string]any{"userPlanId": userPlanID})
	if err != nil && !isNotFoundError(err) {
		return err
	}
	return nil
}

func userPlanNotFoundError(userPlanID int64) error {
	return goerrors.New("edge: user plan not found", goerrors.CategoryNotFound).
		WithTextCode(core.ProvisionErrorNotFound).
		WithMetadata(map[string]any{"user_plan_id": userPlanID})
}

func userPlanFromMap(entry map[string]any) core.UserPlan {
	plan := core.UserPlan{
		ID:        readInt64(entry, "id"),
		UserID:    readInt64(entry, "userId"),
		PlanID:    readInt64(entry, "planId"),
		Name:      readString(entry, "name"),
		DayFrom:   readString(entry, "dayFrom"),
		DayTo:     readString(entry, "dayTo"),
		Enabled:   readBool(entry, "isOn"),
		CreatedAt: readInt64(entry, "createdAt"),
		UpdatedAt: readInt64(entry, "updatedAt"),
	}
	if nested, ok := readMap(entry, "plan"); ok {
		if plan.PlanID == 0 {
			plan.PlanID = readInt64(nested, "id")
		}
		if plan.Name == "" {
			plan.Name = readString(nested, "name")
		}
	}
	return plan
}
