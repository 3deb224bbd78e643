package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/config"
	"github.com/dm/pvecheck/internal/engine"
	"github.com/dm/pvecheck/internal/logging"
	"github.com/dm/pvecheck/internal/model"
	"github.com/dm/pvecheck/internal/report"
)

const envPrefix = "PVECHECK"

// cli holds the state shared by all commands of one invocation.
type cli struct {
	v      *viper.Viper
	stdout io.Writer
	logger *zap.Logger

	// outcome is set by the plugin commands; main renders it and exits.
	outcome *model.Outcome
}

func newCLI(stdout io.Writer) *cli {
	return &cli{v: viper.New(), stdout: stdout, logger: zap.NewNop()}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pvecheck",
		Short: "Monitoring plugin checks for Proxmox VE clusters",
		Long: `pvecheck evaluates Proxmox VE clusters and reports in monitoring plugin
format: one status line, optional details, and exit code 0 (OK), 1 (WARNING),
2 (CRITICAL) or 3 (UNKNOWN).

Connection profiles are read from an INI file, one section per cluster.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initLogger,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "profile file (or first argument, or $PVECHECK_CONFIG)")
	pf.StringSlice("section", nil, "profile section to evaluate, repeatable (default all)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.Duration("timeout", 0, "per-request timeout, overrides the profile's timeout")
	pf.Int("parallel", 0, "profiles evaluated at once (default all)")
	pf.String("metrics-file", "", "also write a Prometheus textfile with the results")

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	// Binding fails only for a nil flag set.
	_ = c.v.BindPFlags(pf)

	root.AddCommand(
		c.checkCmd(),
		c.singleCheckCmd(engine.CheckAutostart, "Warn about VMs whose running state does not match autostart"),
		c.singleCheckCmd(engine.CheckBackup, "Check age and result of the latest backup on every node"),
		c.singleCheckCmd(engine.CheckEvictability, "Check that the biggest node could be evacuated"),
		c.watchCmd(),
		c.profilesCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) initLogger(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{
		Level:  c.v.GetString("log-level"),
		Format: c.v.GetString("log-format"),
		Path:   c.v.GetString("log-file"),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) close() {
	_ = c.logger.Sync()
}

// configPath resolves the profile file from the positional argument, the
// --config flag or the environment, in that order.
func (c *cli) configPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if p := c.v.GetString("config"); p != "" {
		return p, nil
	}
	return "", errors.New("profile file is required (argument, --config or $PVECHECK_CONFIG)")
}

// loadProfiles reads the profile file and applies --section.
func (c *cli) loadProfiles(args []string) ([]config.Profile, error) {
	path, err := c.configPath(args)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Select(c.v.GetStringSlice("section"))
}

// newDriver builds a driver for checks from the persistent flags.
func (c *cli) newDriver(checks []engine.Check, logger *zap.Logger) (*engine.Driver, error) {
	parallel := c.v.GetInt("parallel")
	if parallel < 0 {
		return nil, errors.Errorf("--parallel must not be negative, got %d", parallel)
	}
	timeout := c.v.GetDuration("timeout")
	if timeout < 0 {
		return nil, errors.Errorf("--timeout must not be negative, got %s", timeout)
	}
	return &engine.Driver{
		NewClient: engine.DefaultClientFactory(timeout),
		Checks:    checks,
		Parallel:  parallel,
		Logger:    logger,
	}, nil
}

// evaluate runs checks against the selected profiles once and records the
// merged outcome for main.
func (c *cli) evaluate(cmd *cobra.Command, args []string, names []string, age int) error {
	if age < 0 {
		return errors.Errorf("--age must not be negative, got %d", age)
	}
	profiles, err := c.loadProfiles(args)
	if err != nil {
		return err
	}
	checks, err := engine.NewChecks(names, engine.Options{BackupMaxAgeDays: age, Logger: c.logger})
	if err != nil {
		return err
	}
	d, err := c.newDriver(checks, c.logger)
	if err != nil {
		return err
	}

	start := time.Now()
	r := d.Run(cmd.Context(), profiles)
	c.logger.Info("run finished",
		zap.Int("profiles", len(profiles)),
		zap.Stringer("severity", r.Final.Severity),
		zap.Duration("duration", time.Since(start)))

	if path := c.v.GetString("metrics-file"); path != "" {
		if err := report.WriteTextfile(path, r); err != nil {
			c.logger.Warn("cannot write metrics", zap.Error(err))
		}
	}
	c.outcome = &r.Final
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "pvecheck %s\n", version)
			fmt.Fprintf(c.stdout, "Git Commit: %s\n", gitCommit)
			fmt.Fprintf(c.stdout, "Build Date: %s\n", buildDate)
		},
	}
}
