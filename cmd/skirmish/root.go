package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/skirmish/internal/adapters/codec"
	"github.com/okian/skirmish/internal/adapters/export"
	service "github.com/okian/skirmish/internal/app"
	"github.com/okian/skirmish/internal/config"
	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/session"
	"github.com/okian/skirmish/pkg/logger"
	"github.com/okian/skirmish/pkg/metrics"
)

// stdinPath selects standard input for --input.
const stdinPath = "-"

// cli holds the persistent flags and what PersistentPreRunE builds from them.
type cli struct {
	configPath  string
	logLevel    string
	logJSON     bool
	format      string
	metricsFile string
	input       string

	svc    *service.Service
	out    *export.Writer
	logger logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:               "skirmish",
		Short:             "Analyze combat logs: encounters, meters, timelines and player trends",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.flushMetrics(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML config file (default: $"+config.EnvConfig+")")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&c.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVarP(&c.format, "format", "f", string(export.FormatText), "output format: text, json, yaml, csv")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.StringVarP(&c.input, "input", "i", stdinPath, "JSON Lines event file, - for stdin")

	rootCmd.AddCommand(newSessionsCmd(c))
	rootCmd.AddCommand(newSummaryCmd(c))
	rootCmd.AddCommand(newTimelineCmd(c))
	rootCmd.AddCommand(newBreakdownCmd(c))
	rootCmd.AddCommand(newStatsCmd(c))
	rootCmd.AddCommand(newLeaderboardCmd(c))
	rootCmd.AddCommand(newGenerateCmd(c))

	return rootCmd
}

// setup loads configuration (defaults -> optional file -> env), initializes
// logging and builds the service.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithJSON(c.logJSON)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.logger = logger.Named("cli")

	cfg, err := config.Load(ctx, c.configPath)
	if err != nil {
		metrics.RecordErrorByComponent("config", "load")
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		c.logger.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	format, err := export.ParseFormat(c.format)
	if err != nil {
		return err
	}
	c.out = export.NewWriter(cmd.OutOrStdout(), format)

	c.svc, err = service.New(cfg, service.WithLogger(logger.Named("service")))
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	return nil
}

func (c *cli) flushMetrics(ctx context.Context) error {
	if c.metricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(c.metricsFile); err != nil {
		return err
	}
	c.logger.Debug(ctx, "metrics written", logger.String("path", c.metricsFile))
	return nil
}

// readEvents decodes the configured input.
func (c *cli) readEvents(cmd *cobra.Command) ([]model.Event, error) {
	var r io.Reader = cmd.InOrStdin()
	if c.input != stdinPath {
		f, err := os.Open(c.input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				c.logger.Warn(cmd.Context(), "failed to close input", logger.Error(cerr))
			}
		}()
		r = f
	}

	events, err := codec.ReadAll(r)
	if err != nil {
		metrics.RecordErrorByComponent("codec", "decode")
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// detect reads the input and splits it into sessions.
func (c *cli) detect(cmd *cobra.Command) (session.Detection, error) {
	events, err := c.readEvents(cmd)
	if err != nil {
		return session.Detection{}, err
	}
	det, err := c.svc.DetectSessions(cmd.Context(), events)
	if err != nil {
		return session.Detection{}, err
	}
	c.logger.Info(cmd.Context(), "input analyzed",
		logger.Int("events", len(events)),
		logger.Int("sessions", len(det.Sessions)),
		logger.Int("noise", len(det.Noise)),
	)
	return det, nil
}
