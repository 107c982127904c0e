package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github-history-sync/internal/api"
	"github-history-sync/internal/config"
	"github-history-sync/internal/database"
	"github-history-sync/internal/syncer"
)

const shutdownTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "service",
		Short:        "Incrementally mirror GitHub commit and issue history into Postgres",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config-dir", ".", "Directory holding an optional .env file")

	root.AddCommand(newServeCmd(), newSyncCmd(), newRegisterCmd(), newMigrateCmd())
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func configDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("config-dir")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			a, err := newApp(ctx, configDir(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.cfg.DBURL); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			a.logger.Info("Database migrations applied successfully")

			registerConfigured(ctx, a)
			return serve(ctx, a)
		},
	}
}

// registerConfigured registers REPOS_TO_SYNC. A failing entry is logged and skipped;
// the scheduler picks registered repositories up from the store.
func registerConfigured(ctx context.Context, a *app) {
	ids, err := syncer.ParseRepoIdentifiers(a.cfg.ReposToSync)
	if err != nil {
		a.logger.Error("Ignoring REPOS_TO_SYNC", "error", err)
		return
	}
	for _, id := range ids {
		if _, err := a.syncer.Register(ctx, id.Owner, id.Name); err != nil {
			a.logger.Error("Failed to register repository", "repo", id.String(), "error", err)
		}
	}
}

func serve(ctx context.Context, a *app) error {
	var metrics http.Handler
	if a.cfg.MetricsEnabled {
		metrics = a.telemetry.Handler
	}
	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           api.NewRouter(a.store, a.syncer, metrics, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.syncer.Start(gctx, a.cfg.SyncInterval)
		return nil
	})
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.logger.Info("Service stopped")
	return err
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run exactly one sync cycle and print what it stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			a, err := newApp(ctx, configDir(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.syncer.RunLockedCycle(ctx)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "another sync cycle is running; nothing done")
				return nil
			}
			return printResults(cmd, report.Results)
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register owner/name",
		Short: "Register a repository and run its first pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := syncer.ParseRepoIdentifiers(args)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			a, err := newApp(ctx, configDir(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.syncer.InitializeRepository(ctx, ids[0].Owner, ids[0].Name)
			if err != nil {
				return err
			}
			return printResults(cmd, []syncer.Result{res})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configDir(cmd))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, logLevel := newLogger()
			setLogLevel(cfg.LogLevel, logLevel)

			down, _ := cmd.Flags().GetBool("down")
			if down {
				if err := database.MigrateDown(cfg.DBURL); err != nil {
					return fmt.Errorf("failed to roll back migrations: %w", err)
				}
				logger.Info("Database migrations rolled back")
				return nil
			}
			if err := database.Migrate(cfg.DBURL); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			logger.Info("Database migrations applied successfully")
			return nil
		},
	}
	cmd.Flags().Bool("down", false, "Roll back every migration instead")
	return cmd
}

func printResults(cmd *cobra.Command, results []syncer.Result) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tCOMMITS\tISSUES\tSTATUS")
	failed := 0
	for _, r := range results {
		status := "ok"
		switch {
		case r.Skipped:
			status = "skipped (locked)"
		case r.Err != nil:
			status = "error: " + r.Err.Error()
			failed++
		case r.Initialized:
			status = "initialized"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.FullName, r.CommitsProcessed, r.IssuesProcessed, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed", failed, len(results))
	}
	return nil
}
