package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reportclaw/reportclaw/internal/api"
	"github.com/reportclaw/reportclaw/internal/cninfo"
	"github.com/reportclaw/reportclaw/internal/config"
	"github.com/reportclaw/reportclaw/internal/digest"
	"github.com/reportclaw/reportclaw/internal/extract"
	"github.com/reportclaw/reportclaw/internal/parser"
	"github.com/reportclaw/reportclaw/internal/pipeline"
	"github.com/reportclaw/reportclaw/internal/store"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "reportclaw",
		Short: "A-share annual report crawler and excerpt digester",
		Long: `Reportclaw pulls annual report filings from cninfo, carves the
management discussion section out of each PDF, and assembles the
excerpts into daily digest emails.

Subcommands:
  crawl    fetch recent filings and extract new ones
  digest   build and send the excerpt digest
  serve    run the HTTP extraction API
  extract  carve one local PDF and print the result`,
		Version: version,
	}

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(digestCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(extractCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl recent annual reports and extract new ones",
		Long: `Query both exchange columns on cninfo over the lookback window,
download filings not yet in the database, and store the carved
sections. Runs to completion and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			daysBack, _ := cmd.Flags().GetInt("days")

			log := newLogger()
			cfg := config.Load()
			if daysBack > 0 {
				cfg.DaysBack = daysBack
			}

			db, err := store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx, cancel := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client := cninfo.NewClient(cfg.CninfoBaseURL, cfg.CninfoStaticURL, cfg.HTTPTimeout, log)
			ext := extract.New(cfg.ExtractConfig(), log)

			orch := pipeline.NewOrchestrator(cfg.PipelineConfig(), client, db, ext, log)
			orch.Start(ctx)

			crawler := pipeline.NewCrawler(client, db, orch, log, cfg.CrawlConfig())
			log.Info("starting crawl", "days_back", cfg.DaysBack)
			if err := crawler.Run(ctx); err != nil {
				orch.Drain()
				return err
			}

			// Let queued downloads finish before exiting.
			orch.Drain()

			failed := 0
			for _, j := range orch.Jobs() {
				if j.Status == pipeline.StatusFailed {
					failed++
				}
			}
			log.Info("crawl finished", "jobs", len(orch.Jobs()), "failed", failed)
			return nil
		},
	}

	cmd.Flags().Int("days", 0, "override lookback window in days")
	return cmd
}

func digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build the excerpt digest and optionally mail it",
		Long: `Assemble stored excerpts into a Markdown and HTML digest under the
report directory.

Without flags the run is incremental: it covers extractions recorded
since the last digest and advances the high-water mark. The --date and
--start/--end flags instead select rows by announcement publish date
and leave the mark alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			startDate, _ := cmd.Flags().GetString("start")
			endDate, _ := cmd.Flags().GetString("end")
			todayOnly, _ := cmd.Flags().GetBool("today-only")
			noEmail, _ := cmd.Flags().GetBool("no-email")

			log := newLogger()
			cfg := config.Load()

			if cfg.MailEnabled && !noEmail {
				if err := cfg.ValidateMail(); err != nil {
					return err
				}
			}

			db, err := store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			runner := &digest.Runner{
				DB:          db,
				Log:         log,
				ReportDir:   cfg.ReportDir,
				ReflowCfg:   cfg.ReflowConfig(),
				Mail:        cfg.MailConfig(),
				MailEnabled: cfg.MailEnabled,
			}

			path, err := runner.Run(context.Background(), digest.Options{
				Date:      date,
				StartDate: startDate,
				EndDate:   endDate,
				TodayOnly: todayOnly,
				NoEmail:   noEmail,
			})
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Println("no new excerpts in window")
				return nil
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().String("date", "", "digest a single publish date (YYYY-MM-DD)")
	cmd.Flags().String("start", "", "publish date range start (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "publish date range end (YYYY-MM-DD)")
	cmd.Flags().Bool("today-only", false, "incremental run starting from today 00:00")
	cmd.Flags().Bool("no-email", false, "write files only, skip mail delivery")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			db, err := store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client := cninfo.NewClient(cfg.CninfoBaseURL, cfg.CninfoStaticURL, cfg.HTTPTimeout, log)
			ext := extract.New(cfg.ExtractConfig(), log)

			orch := pipeline.NewOrchestrator(cfg.PipelineConfig(), client, db, ext, log)
			orch.Start(ctx)

			srv := api.NewServer(db, orch, ext, log, cfg.APIConfig())

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				orch.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting reportclaw", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <report.pdf>",
		Short: "Carve one local PDF and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
			cfg := config.Load()

			pdf, err := parser.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer pdf.Close()

			ext := extract.New(cfg.ExtractConfig(), log)
			res, ok := ext.Extract(pdf)
			if !ok {
				return fmt.Errorf("%s: section three not found", args[0])
			}

			out := struct {
				Pages  int             `json:"pages"`
				Result *extract.Result `json:"result"`
			}{Pages: pdf.PageCount(), Result: res}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
