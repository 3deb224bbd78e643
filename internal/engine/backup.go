package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/format"
	"github.com/dm/pvecheck/internal/logging"
	"github.com/dm/pvecheck/internal/model"
)

const (
	// DefaultBackupMaxAgeDays is the default backup window.
	DefaultBackupMaxAgeDays = 7

	backupTaskType = "vzdump"
	taskStatusOK   = "OK"
)

// BackupCheck reports, per node, whether the most recent vzdump task inside
// the window succeeded.
type BackupCheck struct {
	MaxAgeDays int
	Now        func() time.Time
	Logger     *zap.Logger
}

func (c *BackupCheck) Name() string {
	return CheckBackup
}

func (c *BackupCheck) Description() string {
	return "freshness and result of the latest vzdump backup on every node"
}

// Cutoff returns the oldest task end time still inside the window. A zero
// window puts the cutoff at the current time.
func (c *BackupCheck) Cutoff() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Add(-time.Duration(c.MaxAgeDays) * 24 * time.Hour)
}

// Run implements Check. It yields exactly one finding per node.
func (c *BackupCheck) Run(ctx context.Context, pve client.PVEClient) ([]model.Finding, error) {
	log := logging.OrNop(c.Logger).With(zap.String("check", CheckBackup))
	cutoff := c.Cutoff().Unix()

	nodes, err := pve.GetNodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list nodes")
	}

	findings := make([]model.Finding, 0, len(nodes))
	for _, node := range nodes {
		tasks, err := pve.GetTasks(ctx, node.Node, backupTaskType)
		if err != nil {
			return findings, errors.Wrapf(err, "list backup tasks of node %s", node.Node)
		}
		lastSuccess, lastFailed := latestBackups(tasks, cutoff)
		log.Debug("backup window evaluated",
			zap.String("node", node.Node),
			zap.Int("tasks", len(tasks)),
			zap.Int64("last_success", lastSuccess),
			zap.Int64("last_failed", lastFailed))
		findings = append(findings, backupFinding(node.Node, lastSuccess, lastFailed))
	}
	return findings, nil
}

// latestBackups returns the end times of the latest successful and latest
// failed task that ended at or after cutoff; zero means none.
func latestBackups(tasks []client.Task, cutoff int64) (lastSuccess, lastFailed int64) {
	for _, t := range tasks {
		end := int64(t.EndTime)
		if end < cutoff {
			continue
		}
		if t.Status == taskStatusOK {
			lastSuccess = max(lastSuccess, end)
		} else {
			lastFailed = max(lastFailed, end)
		}
	}
	return lastSuccess, lastFailed
}

func backupFinding(node string, lastSuccess, lastFailed int64) model.Finding {
	switch {
	case lastFailed > lastSuccess:
		return model.Finding{
			Severity: model.SeverityCritical,
			Details:  fmt.Sprintf("Last backup of node %s at %s had errors", node, format.FormatTimestamp(lastFailed)),
		}
	case lastSuccess == 0:
		return model.Finding{
			Severity: model.SeverityWarning,
			Details:  fmt.Sprintf("Last backup of node %s older than cutoff", node),
		}
	default:
		return model.Finding{
			Severity: model.SeverityOK,
			Details:  fmt.Sprintf("Last backup of node %s at %s was successful", node, format.FormatTimestamp(lastSuccess)),
		}
	}
}
