package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/scheduler"
	"lifeplan/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and background jobs",
	Long:  `Start the HTTP API together with the calendar refresh and nightly checklist rollover jobs.`,
	RunE:  withApp(runServe),
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "HTTP listen address (overrides config)")
}

func runServe(ctx context.Context, a *app, _ []string) error {
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	appLog.Info("lifeplan starting", "version", version)
	appLog.Info("effective config",
		"listen", cfg.Listen,
		"timezone", a.loc.String(),
		"store", cfg.Store,
		"data_dir", cfg.DataDir,
		"refresh", cfg.RefreshCron,
		"rollover", cfg.RolloverCron,
		"calendars", len(cfg.Calendars),
		"habits", len(cfg.Habits),
	)

	sched := scheduler.New(a.loc)
	if len(cfg.Calendars) > 0 {
		if err := sched.AddRefresh(cfg.RefreshCron, a.calendars); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		if err := a.calendars.Refresh(ctx); err != nil {
			appLog.Error("initial calendar refresh failed", err)
		}
	}
	if err := sched.AddRollover(cfg.RolloverCron, a.checklists); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	go sched.Run(ctx)

	srv := web.NewServer(web.Deps{
		Config:     cfg,
		Location:   a.loc,
		Events:     a.calendars,
		Prefs:      a.prefs,
		Checklists: a.checklists,
		Habits:     a.habits,
		Logs:       a.logs,
	})
	err := srv.ListenAndServe(ctx)
	appLog.Info("lifeplan exiting")
	return err
}
