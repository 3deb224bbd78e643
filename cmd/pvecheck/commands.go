package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dm/pvecheck/internal/engine"
	"github.com/dm/pvecheck/internal/tui"
)

const defaultWatchInterval = time.Minute

func (c *cli) checkCmd() *cobra.Command {
	var (
		names []string
		age   int
	)
	cmd := &cobra.Command{
		Use:   "check [profile-file]",
		Short: "Run the selected checks (default all) and report one merged result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.evaluate(cmd, args, names, age)
		},
	}
	cmd.Flags().StringSliceVar(&names, "check", nil,
		"check to run, repeatable: "+strings.Join(engine.CheckNames(), ", ")+" (default all)")
	cmd.Flags().IntVar(&age, "age", engine.DefaultBackupMaxAgeDays, "backup window in days")
	return cmd
}

// singleCheckCmd is a shorthand for "check --check name".
func (c *cli) singleCheckCmd(name, short string) *cobra.Command {
	var age int
	cmd := &cobra.Command{
		Use:   name + " [profile-file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.evaluate(cmd, args, []string{name}, age)
		},
	}
	if name == engine.CheckBackup {
		cmd.Flags().IntVar(&age, "age", engine.DefaultBackupMaxAgeDays, "backup window in days")
	}
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	var (
		names    []string
		age      int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [profile-file]",
		Short: "Re-run the checks on an interval in an interactive dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return errors.Errorf("--interval must be positive, got %s", interval)
			}
			profiles, err := c.loadProfiles(args)
			if err != nil {
				return err
			}

			// The dashboard owns the terminal; log only to a file.
			logger := c.logger
			if c.v.GetString("log-file") == "" {
				logger = zap.NewNop()
			}
			checks, err := engine.NewChecks(names, engine.Options{BackupMaxAgeDays: age, Logger: logger})
			if err != nil {
				return err
			}
			d, err := c.newDriver(checks, logger)
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.NewApp(cmd.Context(), d, profiles, interval),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return errors.Wrap(err, "dashboard")
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&names, "check", nil, "check to run, repeatable (default all)")
	cmd.Flags().IntVar(&age, "age", engine.DefaultBackupMaxAgeDays, "backup window in days")
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "time between evaluation rounds")
	return cmd
}

func (c *cli) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles [profile-file]",
		Short: "List the resolved connection profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := c.loadProfiles(args)
			if err != nil {
				return err
			}
			t := ltable.New().
				Border(lipgloss.HiddenBorder()).
				BorderHeader(false).
				Headers("SECTION", "API", "AUTH", "VERIFY TLS", "TIMEOUT")
			for _, p := range profiles {
				t.Row(p.Name, p.BaseURL(), p.AuthMode(), fmt.Sprintf("%t", p.VerifySSL), p.Timeout.String())
			}
			_, err = fmt.Fprintln(c.stdout, t.String())
			return err
		},
	}
}
