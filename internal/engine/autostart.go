package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/logging"
	"github.com/dm/pvecheck/internal/model"
)

// AutostartCheck warns about VMs whose running state disagrees with their
// onboot setting: running VMs that would not come back after a node reboot,
// and stopped VMs that would unexpectedly start.
type AutostartCheck struct {
	Logger *zap.Logger
}

func (c *AutostartCheck) Name() string {
	return CheckAutostart
}

func (c *AutostartCheck) Description() string {
	return "VMs whose running state does not match their autostart (onboot) setting"
}

// Run implements Check.
func (c *AutostartCheck) Run(ctx context.Context, pve client.PVEClient) ([]model.Finding, error) {
	log := logging.OrNop(c.Logger).With(zap.String("check", CheckAutostart))

	nodes, err := pve.GetNodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list nodes")
	}

	var findings []model.Finding
	for _, node := range nodes {
		fqdn := nodeFQDN(ctx, pve, node.Node, log)

		vms, err := pve.GetQemuVMs(ctx, node.Node)
		if err != nil {
			return findings, errors.Wrapf(err, "list VMs of node %s", node.Node)
		}
		for _, vm := range vms {
			cfg, err := pve.GetQemuConfig(ctx, node.Node, int(vm.VMID))
			if err != nil {
				return findings, errors.Wrapf(err, "read config of VM %d on node %s", vm.VMID, node.Node)
			}
			state := model.VMState{
				Node:      node.Node,
				ID:        int(vm.VMID),
				Name:      vm.Name,
				Status:    vm.Status,
				Autostart: cfg.Autostart(),
			}
			if f, ok := autostartMismatch(state, fqdn); ok {
				findings = append(findings, f)
			}
		}
	}

	log.Debug("autostart check done", zap.Int("nodes", len(nodes)), zap.Int("mismatches", len(findings)))
	return findings, nil
}

// autostartMismatch returns a WARNING finding when exactly one of running
// and autostart holds.
func autostartMismatch(vm model.VMState, nodeName string) (model.Finding, bool) {
	if vm.Running() == vm.Autostart {
		return model.Finding{}, false
	}
	name := vm.Name
	if name == "" {
		name = fmt.Sprintf("VM %d", vm.ID)
	}
	return model.Finding{
		Severity: model.SeverityWarning,
		Details:  fmt.Sprintf("%s on %s is %s but autostart=%d", name, nodeName, vm.Status, boolToInt(vm.Autostart)),
	}, true
}

// nodeFQDN qualifies node with its DNS search domain. Any lookup problem
// falls back to the bare node name.
func nodeFQDN(ctx context.Context, pve client.PVEClient, node string, log *zap.Logger) string {
	dns, err := pve.GetNodeDNS(ctx, node)
	if err != nil {
		log.Debug("DNS search domain lookup failed", zap.String("node", node), zap.Error(err))
		return node
	}
	if dns == nil || dns.Search == "" {
		return node
	}
	return node + "." + dns.Search
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
