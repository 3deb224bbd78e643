package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/pvecheck/internal/model"
)

func sampleReport() model.Report {
	return model.Report{
		StartedAt: time.Unix(1700000000, 0),
		Profiles: []model.ProfileOutcome{
			{
				Profile:  "cluster-a",
				Duration: 1500 * time.Millisecond,
				Findings: []model.Finding{
					{Severity: model.SeverityWarning},
					{Severity: model.SeverityWarning},
					{Severity: model.SeverityOK},
				},
				Outcome: model.Outcome{Severity: model.SeverityWarning},
			},
			{
				Profile:  "cluster-b",
				Duration: 250 * time.Millisecond,
				Findings: []model.Finding{{Severity: model.SeverityCritical}},
				Outcome:  model.Outcome{Severity: model.SeverityCritical},
			},
		},
		Final: model.Outcome{Severity: model.SeverityCritical},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(sampleReport())

	expected := `
# HELP pvecheck_outcome_severity Merged severity per profile (0=OK, 1=WARNING, 2=CRITICAL, 3=UNKNOWN).
# TYPE pvecheck_outcome_severity gauge
pvecheck_outcome_severity{profile="cluster-a"} 1
pvecheck_outcome_severity{profile="cluster-b"} 2
# HELP pvecheck_final_severity Severity of the merged result across all profiles.
# TYPE pvecheck_final_severity gauge
pvecheck_final_severity 2
# HELP pvecheck_check_duration_seconds Wall time spent evaluating a profile.
# TYPE pvecheck_check_duration_seconds gauge
pvecheck_check_duration_seconds{profile="cluster-a"} 1.5
pvecheck_check_duration_seconds{profile="cluster-b"} 0.25
# HELP pvecheck_last_run_timestamp_seconds Unix time the run started.
# TYPE pvecheck_last_run_timestamp_seconds gauge
pvecheck_last_run_timestamp_seconds 1.7e+09
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"pvecheck_outcome_severity",
		"pvecheck_final_severity",
		"pvecheck_check_duration_seconds",
		"pvecheck_last_run_timestamp_seconds",
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "pvecheck_findings")
	require.NoError(t, err)
	assert.Equal(t, 8, count, "every severity is exported for every profile")
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pvecheck.prom")
	require.NoError(t, WriteTextfile(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `pvecheck_findings{profile="cluster-a",severity="WARNING"} 2`)
	assert.Contains(t, text, `pvecheck_findings{profile="cluster-b",severity="OK"} 0`)
	assert.Contains(t, text, "pvecheck_final_severity 2")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics textfile")
}
