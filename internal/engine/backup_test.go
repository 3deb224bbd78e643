package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/format"
	"github.com/dm/pvecheck/internal/model"
)

var backupNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return backupNow }

func backupClient(tasks ...client.Task) *MockPVEClient {
	return &MockPVEClient{
		TasksFn: func(_ context.Context, node, typeFilter string) ([]client.Task, error) {
			return tasks, nil
		},
	}
}

func TestBackupCheck_Cutoff(t *testing.T) {
	c := &BackupCheck{MaxAgeDays: 3, Now: fixedClock}
	assert.Equal(t, backupNow.Add(-72*time.Hour), c.Cutoff())

	c = &BackupCheck{Now: fixedClock}
	assert.Equal(t, backupNow, c.Cutoff(), "zero days puts the cutoff at now")
}

func TestBackupCheck_ZeroDayWindow(t *testing.T) {
	threeDaysAgo := backupNow.Add(-72 * time.Hour).Unix()
	c := &BackupCheck{MaxAgeDays: 0, Now: fixedClock}

	findings, err := c.Run(context.Background(), backupClient(client.Task{EndTime: client.FlexInt(threeDaysAgo), Status: "OK"}))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.SeverityWarning, findings[0].Severity)
	assert.Equal(t, "Last backup of node pve1 older than cutoff", findings[0].Details)
}

func TestBackupCheck_Findings(t *testing.T) {
	cutoff := backupNow.Add(-7 * 24 * time.Hour).Unix()

	tests := []struct {
		name     string
		tasks    []client.Task
		want     model.Severity
		wantText string
	}{
		{
			name:     "no tasks",
			want:     model.SeverityWarning,
			wantText: "Last backup of node pve1 older than cutoff",
		},
		{
			name:     "successful task just before cutoff is ignored",
			tasks:    []client.Task{{EndTime: client.FlexInt(cutoff - 1), Status: "OK"}},
			want:     model.SeverityWarning,
			wantText: "Last backup of node pve1 older than cutoff",
		},
		{
			name:     "successful task inside window",
			tasks:    []client.Task{{EndTime: client.FlexInt(cutoff + 1), Status: "OK"}},
			want:     model.SeverityOK,
			wantText: "Last backup of node pve1 at " + format.FormatTimestamp(cutoff+1) + " was successful",
		},
		{
			name: "later failure wins",
			tasks: []client.Task{
				{EndTime: client.FlexInt(cutoff + 1), Status: "OK"},
				{EndTime: client.FlexInt(cutoff + 2), Status: "job errors"},
			},
			want:     model.SeverityCritical,
			wantText: "Last backup of node pve1 at " + format.FormatTimestamp(cutoff+2) + " had errors",
		},
		{
			name: "earlier failure is superseded",
			tasks: []client.Task{
				{EndTime: client.FlexInt(cutoff + 5), Status: "job errors"},
				{EndTime: client.FlexInt(cutoff + 10), Status: "OK"},
			},
			want:     model.SeverityOK,
			wantText: "Last backup of node pve1 at " + format.FormatTimestamp(cutoff+10) + " was successful",
		},
		{
			name:     "only failures",
			tasks:    []client.Task{{EndTime: client.FlexInt(cutoff + 5), Status: "interrupted"}},
			want:     model.SeverityCritical,
			wantText: "Last backup of node pve1 at " + format.FormatTimestamp(cutoff+5) + " had errors",
		},
		{
			name:     "task ending exactly at cutoff counts",
			tasks:    []client.Task{{EndTime: client.FlexInt(cutoff), Status: "OK"}},
			want:     model.SeverityOK,
			wantText: "Last backup of node pve1 at " + format.FormatTimestamp(cutoff) + " was successful",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &BackupCheck{MaxAgeDays: DefaultBackupMaxAgeDays, Now: fixedClock}
			findings, err := c.Run(context.Background(), backupClient(tc.tasks...))
			require.NoError(t, err)
			require.Len(t, findings, 1)
			assert.Equal(t, tc.want, findings[0].Severity)
			assert.Equal(t, tc.wantText, findings[0].Details)
			assert.Empty(t, findings[0].Summary)
		})
	}
}

func TestBackupCheck_RequestsVzdumpTasksPerNode(t *testing.T) {
	var asked []string
	mc := &MockPVEClient{
		NodesFn: func(_ context.Context) ([]client.Node, error) {
			return []client.Node{{Node: "pve1"}, {Node: "pve2"}}, nil
		},
		TasksFn: func(_ context.Context, node, typeFilter string) ([]client.Task, error) {
			assert.Equal(t, "vzdump", typeFilter)
			asked = append(asked, node)
			return nil, nil
		},
	}

	findings, err := (&BackupCheck{Now: fixedClock}).Run(context.Background(), mc)
	require.NoError(t, err)
	assert.Equal(t, []string{"pve1", "pve2"}, asked)
	require.Len(t, findings, 2, "one finding per node")
	assert.Contains(t, findings[1].Details, "node pve2")
}

func TestBackupCheck_TaskErrorKeepsEarlierNodes(t *testing.T) {
	mc := &MockPVEClient{
		NodesFn: func(_ context.Context) ([]client.Node, error) {
			return []client.Node{{Node: "pve1"}, {Node: "pve2"}}, nil
		},
		TasksFn: func(_ context.Context, node, typeFilter string) ([]client.Task, error) {
			if node == "pve2" {
				return nil, errMockFailure
			}
			return nil, nil
		},
	}

	findings, err := (&BackupCheck{Now: fixedClock}).Run(context.Background(), mc)
	assert.ErrorIs(t, err, errMockFailure)
	assert.Contains(t, err.Error(), "list backup tasks of node pve2")
	assert.Len(t, findings, 1)
}

func TestLatestBackups_IgnoresRunningTasks(t *testing.T) {
	// Running tasks have no end time yet.
	s, f := latestBackups([]client.Task{{EndTime: 0, Status: ""}}, 100)
	assert.Zero(t, s)
	assert.Zero(t, f)
}
