package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/model"
)

// Check names accepted by NewCheck.
const (
	CheckAutostart    = "autostart"
	CheckBackup       = "backup"
	CheckEvictability = "evictability"
)

// Check evaluates one health predicate against a cluster.
//
// Run returns every finding it produced. When it fails part way it returns
// the findings gathered so far together with the error.
type Check interface {
	Name() string
	Description() string
	Run(ctx context.Context, pve client.PVEClient) ([]model.Finding, error)
}

// Options carries check-specific parameters.
type Options struct {
	// BackupMaxAgeDays is the backup window in days, used as given.
	BackupMaxAgeDays int
	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
	Logger *zap.Logger
}

// CheckNames returns all known check names in their default run order.
func CheckNames() []string {
	return []string{CheckAutostart, CheckBackup, CheckEvictability}
}

// NewCheck builds the check registered under name.
func NewCheck(name string, opts Options) (Check, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CheckAutostart:
		return &AutostartCheck{Logger: opts.Logger}, nil
	case CheckBackup:
		return &BackupCheck{MaxAgeDays: opts.BackupMaxAgeDays, Now: opts.Now, Logger: opts.Logger}, nil
	case CheckEvictability:
		return &EvictabilityCheck{Logger: opts.Logger}, nil
	}
	known := CheckNames()
	sort.Strings(known)
	return nil, errors.Errorf("unknown check %q (available: %s)", name, strings.Join(known, ", "))
}

// NewChecks builds the named checks in the given order, or every check when
// names is empty. Duplicates are rejected.
func NewChecks(names []string, opts Options) ([]Check, error) {
	if len(names) == 0 {
		names = CheckNames()
	}
	seen := make(map[string]bool, len(names))
	checks := make([]Check, 0, len(names))
	for _, n := range names {
		c, err := NewCheck(n, opts)
		if err != nil {
			return nil, err
		}
		if seen[c.Name()] {
			return nil, errors.Errorf("check %q requested more than once", c.Name())
		}
		seen[c.Name()] = true
		checks = append(checks, c)
	}
	return checks, nil
}
