package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/format"
	"github.com/dm/pvecheck/internal/logging"
	"github.com/dm/pvecheck/internal/model"
)

const evictionSummary = "Eviction of biggest node impossible"

// evictionVariants are evaluated in order; the first one that fails is the
// only one reported.
var evictionVariants = []struct {
	variant  model.Variant
	severity model.Severity
}{
	{model.VariantActual, model.SeverityCritical},
	{model.VariantTheoretical, model.SeverityWarning},
}

// EvictabilityCheck verifies that the VMs of the most loaded node would fit
// into the free memory of all other nodes.
type EvictabilityCheck struct {
	Logger *zap.Logger
}

func (c *EvictabilityCheck) Name() string {
	return CheckEvictability
}

func (c *EvictabilityCheck) Description() string {
	return "whether the memory of the biggest node fits on the remaining nodes"
}

// Run implements Check.
func (c *EvictabilityCheck) Run(ctx context.Context, pve client.PVEClient) ([]model.Finding, error) {
	log := logging.OrNop(c.Logger).With(zap.String("check", CheckEvictability))

	resources, err := pve.GetClusterResources(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cluster resources")
	}
	nodes := NodeCapacities(resources)
	if len(nodes) == 0 {
		return nil, errors.New("cluster resource list contains no nodes")
	}
	for _, n := range nodes {
		log.Debug("node capacity",
			zap.String("node", n.Node),
			zap.Int64("used_actual", n.UsedActual),
			zap.Int64("used_theoretical", n.UsedTheoretical),
			zap.Int64("free_actual", n.FreeActual),
			zap.Int64("free_theoretical", n.FreeTheoretical))
	}

	if f, ok := EvaluateEviction(nodes); ok {
		return []model.Finding{f}, nil
	}
	return nil, nil
}

// NodeCapacities aggregates the memory accounting of every node found in
// resources, in order of first appearance. Only node and qemu records count.
func NodeCapacities(resources []client.ClusterResource) []model.NodeCapacity {
	index := make(map[string]int)
	var nodes []model.NodeCapacity
	maxMem := make(map[string]int64)

	slot := func(name string) *model.NodeCapacity {
		i, ok := index[name]
		if !ok {
			i = len(nodes)
			index[name] = i
			nodes = append(nodes, model.NodeCapacity{Node: name})
		}
		return &nodes[i]
	}

	for _, r := range resources {
		switch r.Type {
		case client.ResourceNode:
			n := slot(r.Node)
			maxMem[r.Node] = int64(r.MaxMem)
			n.FreeActual = int64(r.MaxMem) - int64(r.Mem)
		case client.ResourceQemu:
			n := slot(r.Node)
			n.UsedActual += int64(r.Mem)
			n.UsedTheoretical += int64(r.MaxMem)
		}
	}

	for i := range nodes {
		nodes[i].FreeTheoretical = maxMem[nodes[i].Node] - nodes[i].UsedTheoretical
	}
	return nodes
}

// EvaluateEviction compares, per variant, the usage of the biggest node with
// the free memory of all others and reports the first variant that does not
// fit. nodes must not be empty.
func EvaluateEviction(nodes []model.NodeCapacity) (model.Finding, bool) {
	for _, v := range evictionVariants {
		biggest := 0
		for i := range nodes {
			if nodes[i].Used(v.variant) > nodes[biggest].Used(v.variant) {
				biggest = i
			}
		}

		var freeOther int64
		for i := range nodes {
			if i != biggest {
				freeOther += nodes[i].Free(v.variant)
			}
		}

		used := nodes[biggest].Used(v.variant)
		if used > freeOther {
			return model.Finding{
				Severity: v.severity,
				Summary:  evictionSummary,
				Details: fmt.Sprintf("%s's %s usage is %s, but %s free RAM on other hosts is only %s",
					nodes[biggest].Node, v.variant, format.FormatBytes(used), v.variant, format.FormatBytes(freeOther)),
			}, true
		}
	}
	return model.Finding{}, false
}
