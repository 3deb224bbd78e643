package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/config"
	"github.com/dm/pvecheck/internal/logging"
	"github.com/dm/pvecheck/internal/model"
)

// ClientFactory builds the API client bound to one profile.
type ClientFactory func(p config.Profile) (client.PVEClient, error)

// DefaultClientFactory returns a factory creating DefaultClients. A non-zero
// timeout overrides each profile's own request timeout.
func DefaultClientFactory(timeout time.Duration) ClientFactory {
	return func(p config.Profile) (client.PVEClient, error) {
		return client.NewDefaultClient(p.ClientConfig(timeout))
	}
}

// Driver runs a fixed list of checks against any number of profiles.
type Driver struct {
	NewClient ClientFactory
	Checks    []Check
	// Parallel bounds the number of profiles evaluated at once; <= 0 means
	// all of them.
	Parallel int
	Logger   *zap.Logger
}

// Run evaluates every profile and merges the results. Profiles run
// concurrently but their outcomes are merged in the order given, so the
// report is the same regardless of which profile answers first. Failures
// never abort the run; they become UNKNOWN findings of their profile.
func (d *Driver) Run(ctx context.Context, profiles []config.Profile) model.Report {
	report := model.Report{
		Profiles:  make([]model.ProfileOutcome, len(profiles)),
		StartedAt: time.Now(),
	}

	var g errgroup.Group
	limit := d.Parallel
	if limit <= 0 || limit > len(profiles) {
		limit = len(profiles)
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	// Workers never return an error, so one profile cannot cancel another.
	for i, p := range profiles {
		g.Go(func() error {
			report.Profiles[i] = d.runProfile(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make([]model.Outcome, len(report.Profiles))
	for i, po := range report.Profiles {
		outcomes[i] = po.Outcome
	}
	report.Final = model.Merge(outcomes, "", model.SeverityOK)
	return report
}

func (d *Driver) runProfile(ctx context.Context, p config.Profile) model.ProfileOutcome {
	start := time.Now()
	log := logging.OrNop(d.Logger).With(zap.String("profile", p.Name))

	var findings []model.Finding
	pve, err := d.newClient(p)
	if err != nil {
		log.Warn("cannot create client", zap.Error(err))
		findings = append(findings, UnknownFinding(errors.Wrapf(err, "profile %s", p.Name)))
	} else {
		for _, chk := range d.Checks {
			fs, err := runCheck(ctx, chk, pve)
			findings = append(findings, fs...)
			if err != nil {
				log.Warn("check failed", zap.String("check", chk.Name()), zap.Error(err))
				findings = append(findings, UnknownFinding(errors.Wrapf(err, "profile %s: check %s", p.Name, chk.Name())))
			}
		}
	}

	outcome := model.Merge(findings, "", model.SeverityOK)
	elapsed := time.Since(start)
	log.Info("profile evaluated",
		zap.Stringer("severity", outcome.Severity),
		zap.Int("findings", len(findings)),
		zap.Duration("duration", elapsed))

	return model.ProfileOutcome{
		Profile:  p.Name,
		Findings: findings,
		Outcome:  outcome,
		Duration: elapsed,
	}
}

func (d *Driver) newClient(p config.Profile) (client.PVEClient, error) {
	if d.NewClient == nil {
		return DefaultClientFactory(0)(p)
	}
	return d.NewClient(p)
}

// runCheck runs chk and turns a panic into a *PanicError.
func runCheck(ctx context.Context, chk Check, pve client.PVEClient) (findings []model.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(&PanicError{Value: r})
		}
	}()
	return chk.Run(ctx, pve)
}
