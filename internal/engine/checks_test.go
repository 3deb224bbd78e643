package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheck(t *testing.T) {
	for _, name := range CheckNames() {
		c, err := NewCheck(name, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
		assert.NotEmpty(t, c.Description())
	}

	c, err := NewCheck(" Backup ", Options{BackupMaxAgeDays: 3, Now: fixedClock})
	require.NoError(t, err)
	bc, ok := c.(*BackupCheck)
	require.True(t, ok)
	assert.Equal(t, 3, bc.MaxAgeDays)
	assert.Equal(t, backupNow.Add(-72*time.Hour), bc.Cutoff())
}

func TestNewCheck_Unknown(t *testing.T) {
	_, err := NewCheck("ceph", Options{})
	require.Error(t, err)
	assert.Equal(t, `unknown check "ceph" (available: autostart, backup, evictability)`, err.Error())
}

func TestNewChecks(t *testing.T) {
	checks, err := NewChecks(nil, Options{})
	require.NoError(t, err)
	require.Len(t, checks, 3)
	assert.Equal(t, "autostart", checks[0].Name())
	assert.Equal(t, "backup", checks[1].Name())
	assert.Equal(t, "evictability", checks[2].Name())

	checks, err = NewChecks([]string{"evictability", "autostart"}, Options{})
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, "evictability", checks[0].Name())

	_, err = NewChecks([]string{"backup", "BACKUP"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")

	_, err = NewChecks([]string{"backup", "nope"}, Options{})
	assert.Error(t, err)
}
