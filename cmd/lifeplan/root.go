package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lifeplan/internal/checklist"
	"lifeplan/internal/config"
	"lifeplan/internal/dailylog"
	"lifeplan/internal/habit"
	"lifeplan/internal/ics"
	appLog "lifeplan/internal/log"
	"lifeplan/internal/prefs"
	"lifeplan/internal/store"
)

const version = "0.1.0"

var (
	configPath string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "lifeplan",
	Short:         "Personal schedule analysis and daily planning",
	Long:          `lifeplan analyzes calendar feeds against your energy rhythm and life-area targets, and keeps daily checklists, habits and a journal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
		appLog.SetFormat(cfg.LogFormat)
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./lifeplan.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of formatted text")

	rootCmd.AddCommand(serveCmd, analyzeCmd, slotsCmd, checklistCmd, habitCmd, logCmd)
}

// app bundles the services built from the loaded config.
type app struct {
	loc        *time.Location
	store      store.Store
	prefs      *prefs.Store
	calendars  *ics.Supplier
	checklists *checklist.Service
	habits     *habit.Service
	logs       *dailylog.Service
}

func openApp() (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	ps, err := prefs.New(cfg.PreferencesPath)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	sources := make([]ics.Source, 0, len(cfg.Calendars))
	for _, c := range cfg.Calendars {
		sources = append(sources, ics.Source{ID: c.ID, Name: c.Name, URL: c.URL})
	}
	fetcher := ics.NewFetcher(filepath.Join(cfg.DataDir, "ics-cache"))

	return &app{
		loc:        loc,
		store:      st,
		prefs:      ps,
		calendars:  ics.NewSupplier(fetcher, sources, loc),
		checklists: checklist.NewService(st, ps, loc),
		habits:     habit.NewService(st, cfg.Habits, loc),
		logs:       dailylog.NewService(st, loc),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the services for the duration of fn.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				appLog.Error("failed to close store", err)
			}
		}()
		return fn(cmd.Context(), a, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
