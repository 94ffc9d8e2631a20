package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"calview/internal/config"
	"calview/internal/ics"
	appLog "calview/internal/log"
	"calview/internal/render"
	"calview/internal/view"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	timezone   string
	asJSON     bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "calview",
		Short:         "Render calendar timelines from ICS sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.timezone, "tz", "", "IANA timezone (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Emit JSON instead of text")

	for _, kind := range []view.Kind{view.KindDay, view.KindWeek, view.KindMonth} {
		rootCmd.AddCommand(newViewCommand(flags, kind))
	}
	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newSourcesCommand(flags))

	return rootCmd
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "calview", "config.yaml")
	}
	return "./config.yaml"
}

// newViewCommand builds the day, week and month subcommands; they differ
// only in the grid kind.
func newViewCommand(flags *rootFlags, kind view.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s [YYYY-M-D]", kind),
		Short: fmt.Sprintf("Render the %s view around a reference date", kind),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refStr := ""
			if len(args) == 1 {
				refStr = args[0]
			}
			env, err := setup(flags)
			if err != nil {
				return err
			}
			return renderOnce(cmd.Context(), env, refStr, kind, flags.asJSON)
		},
	}
}

func newWatchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the default view on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags)
			if err != nil {
				return err
			}
			return watch(env, flags.asJSON)
		},
	}
}

func newSourcesCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured calendar sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags)
			if err != nil {
				return err
			}
			if len(env.sources) == 0 {
				fmt.Println("no sources configured; edit", flags.configPath)
				return nil
			}
			for _, src := range env.sources {
				access := "read-only"
				if src.Editable {
					access = "editable"
				}
				fmt.Printf("%-12s %-20s %s %s\n", src.ID, src.Name, src.Color, access)
			}
			return nil
		},
	}
}

// env is everything a command needs after config resolution.
type env struct {
	cfg     *config.Config
	loc     *time.Location
	sources []ics.Source
	fetcher *ics.Fetcher
}

func setup(flags *rootFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	appLog.SetLevel(cfg.LogLevel)

	zone := cfg.Timezone
	if flags.timezone != "" {
		zone = flags.timezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	return &env{
		cfg:     cfg,
		loc:     loc,
		sources: ics.SourcesFromConfig(cfg.Sources),
		fetcher: ics.NewFetcher(cfg.CacheDir),
	}, nil
}

// renderOnce runs one fetch+build+render cycle for a reference date.
func renderOnce(ctx context.Context, env *env, refStr string, kind view.Kind, asJSON bool) error {
	ref, ok := view.ParseDate(refStr, env.loc)
	if !ok && refStr != "" {
		appLog.Warn("malformed reference date, using today", "date", refStr)
	}

	start, end := view.BuildGrid(ref, kind).Span(env.loc)
	events := env.fetcher.Load(ctx, env.sources, start.UTC(), end.UTC())

	tl := view.Build(ref, kind, events, env.loc)
	tl.DateError = !ok && refStr != ""

	if asJSON {
		data, err := render.JSON(tl)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(render.Text(tl))
	return nil
}

// watch re-renders the configured default view on the refresh schedule
// until interrupted.
func watch(env *env, asJSON bool) error {
	kind, err := view.ParseKind(env.cfg.DefaultView)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	run := func() {
		if err := renderOnce(ctx, env, "", kind, asJSON); err != nil {
			appLog.Error("render cycle failed", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(env.cfg.RefreshCron, run); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", env.cfg.RefreshCron, err)
	}

	appLog.Info("watch started", "schedule", env.cfg.RefreshCron, "view", kind, "timezone", env.loc.String())
	run()
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("watch stopped")
	return nil
}
