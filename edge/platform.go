package edge

import (
	"context"

	"github.com/goliatone/go-provision/core"
)

// ListAvailablePlans returns the purchasable plan catalog. It backs the
// admin-side product binding flow.
func (c *Client) ListAvailablePlans(ctx context.Context) ([]core.Plan, error) {
	env, err := c.call(ctx, "/PlanService/findAllAvailablePlans", map[string]any{})
	if err != nil {
		return nil, err
	}
	entries := readSlice(env.Data, "plans")
	plans := make([]core.Plan, 0, len(entries))
	for _, entry := range entries {
		plans = append(plans, core.Plan{
			ID:             readInt64(entry, "id"),
			Name:           readString(entry, "name"),
			Type:           readString(entry, "type"),
			Description:    readString(entry, "description"),
			PriceType:      readString(entry, "priceType"),
			BandwidthLimit: readInt64(entry, "bandwidthLimit"),
			TrafficLimit:   readInt64(entry, "trafficLimit"),
		})
	}
	return plans, nil
}

func (c *Client) ListClusters(ctx context.Context) ([]core.Cluster, error) {
	env, err := c.call(ctx, "/NodeClusterService/findAllEnabledNodeClusters", map[string]any{})
	if err != nil {
		return nil, err
	}
	entries := readSlice(env.Data, "nodeClusters")
	clusters := make([]core.Cluster, 0, len(entries))
	for _, entry := range entries {
		clusters = append(clusters, core.Cluster{
			ID:       readInt64(entry, "id"),
			Name:     readString(entry, "name"),
			UniqueID: readString(entry, "uniqueId"),
			Enabled:  readBool(entry, "isOn"),
		})
	}
	return clusters, nil
}

// DefaultClusterID returns the first enabled cluster, used as the placement
// target for new users. Zero means no cluster is assigned.
func (c *Client) DefaultClusterID(ctx context.Context) (int64, error) {
	clusters, err := c.ListClusters(ctx)
	if err != nil {
		return 0, err
	}
	for _, cluster := range clusters {
		if cluster.ID > 0 {
			return cluster.ID, nil
		}
	}
	return 0, nil
}

// Ping verifies credentials and connectivity by listing enabled API nodes.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "/APINodeService/findAllEnabledAPINodes", map[string]any{})
	return err
}
