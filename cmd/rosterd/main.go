// Package main is the entry point for the ward roster engine.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardroster/engine/internal/config"
	"github.com/wardroster/engine/internal/guard"
	"github.com/wardroster/engine/internal/ipc"
	"github.com/wardroster/engine/internal/roster"
	"github.com/wardroster/engine/internal/service"
	"github.com/wardroster/engine/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "rosterd",
		Short:         "Ward duty roster engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (JSON or YAML)")

	root.AddCommand(
		newServeCmd(&configPath),
		newGenerateCmd(&configPath),
		newSummaryCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "rosterd %s (commit=%s, built=%s)\n", version, commit, date)
			},
		},
	)
	return root
}

// openService loads the configuration, opens the database and seeds the
// worker roster from the config on first run.
func openService(ctx context.Context, configPath string) (*config.Config, *sql.DB, *service.Service, error) {
	// Resolve config path: --config flag > ROSTER_CONFIG env > auto-discover next to exe.
	path := config.Discover(configPath, "ROSTER_CONFIG")
	if path == "" {
		return nil, nil, nil, fmt.Errorf("no config found. Place config.json or config.yaml next to the exe, use --config <path>, or set ROSTER_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	svc := service.NewService(db, cfg.ToPolicy(), log.Default())
	if err := svc.SeedWorkers(ctx, cfg.RosterWorkers()); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("seed workers: %w", err)
	}
	return cfg, db, svc, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, svc, err := openService(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			handler := &ipc.Handler{
				Service: svc,
				Guard:   guard.NewGuard(guard.GuardConfig{RateLimitPerMinute: cfg.RateLimitPerMinute}),
				Version: version,
			}
			srv := ipc.NewServer(handler, cfg.ListenAddr)

			// Graceful shutdown on interrupt.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				log.Println("shutting down...")

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					log.Printf("server shutdown: %v", err)
				}
			}()

			log.Printf("roster engine listening on %s", ipc.FormatListenURL(cfg.ListenAddr))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newGenerateCmd(configPath *string) *cobra.Command {
	var month string
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the roster for one month and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, svc, err := openService(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := svc.Generate(cmd.Context(), month, seed)
			if err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			fmt.Fprint(out, "worker")
			for _, d := range res.Grid.Days {
				fmt.Fprintf(out, "\t%d", d.Index+1)
			}
			fmt.Fprintln(out)
			for _, w := range res.Grid.Workers {
				fmt.Fprint(out, w)
				for _, code := range res.Grid.Row(w) {
					fmt.Fprintf(out, "\t%s", code)
				}
				fmt.Fprintln(out)
			}
			if err := out.Flush(); err != nil {
				return err
			}
			for _, n := range res.Notices {
				fmt.Fprintf(cmd.ErrOrStderr(), "notice %d: %s day %d: %s\n", n.Code, n.Worker, n.Day+1, n.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "roster month (YYYY-MM)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "tie-break seed (0 = clock)")
	cmd.MarkFlagRequired("month")
	return cmd
}

func newSummaryCmd(configPath *string) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print duty counts and leave balances for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, svc, err := openService(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := svc.Summary(cmd.Context(), month)
			if err != nil {
				return err
			}
			printSummary(cmd, report)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "roster month (YYYY-MM)")
	cmd.MarkFlagRequired("month")
	return cmd
}

func printSummary(cmd *cobra.Command, report roster.Report) {
	out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "worker\tD\tE\tN\tO\twork\tweekend\tleave used\tremaining")
	for _, r := range report.Rows {
		fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.Worker, r.Counts["D"], r.Counts["E"], r.Counts["N"], r.Off,
			r.TotalWork, r.WeekendWork, r.LeaveUsed.String(), r.RemainingLeave.String())
	}
	out.Flush()
}
