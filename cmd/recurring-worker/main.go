package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/config"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/database"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "recurring-worker",
	Short: "Materialize due recurring transactions for every active user",
	Long: `Runs one recurring pass per active user for the given reference date.
Passes are idempotent: a rule already applied in the month is skipped.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runWorker,
}

func init() {
	rootCmd.Flags().String("date", "", "reference date (YYYY-MM-DD), defaults to today in UTC")
	rootCmd.Flags().Int("concurrency", 0, "owners processed in parallel (overrides RECURRING_CONCURRENCY)")
	_ = viper.BindPFlag("worker.date", rootCmd.Flags().Lookup("date"))
	_ = viper.BindPFlag("worker.concurrency", rootCmd.Flags().Lookup("concurrency"))
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	today := time.Now().UTC()
	if raw := viper.GetString("worker.date"); raw != "" {
		today, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", raw, err)
		}
	}
	concurrency := cfg.RecurringConcurrency
	if n := viper.GetInt("worker.concurrency"); n > 0 {
		concurrency = n
	}

	dbManager, err := database.NewManager(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	publisher, err := events.Connect(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer publisher.Close()

	db := dbManager.DB()
	reports, err := services.ProcessAllOwners(
		cmd.Context(),
		services.NewUserService(db),
		services.NewRecurringService(db, publisher),
		today,
		concurrency,
	)
	if err != nil {
		return err
	}

	var created, failedOwners int
	for _, r := range reports {
		if r.Err != nil {
			failedOwners++
			log.Errorw("recurring pass failed", "user_id", r.UserID, "error", r.Err)
			continue
		}
		created += r.Report.Created
		log.Infow("recurring pass finished",
			"user_id", r.UserID,
			"created", r.Report.Created,
			"skipped_existing", r.Report.SkippedExisting,
			"skipped_exhausted", r.Report.SkippedExhausted,
			"rule_failures", len(r.Report.Failures),
		)
	}
	log.Infow("recurring worker done",
		"date", today.Format("2006-01-02"),
		"owners", len(reports),
		"created", created,
		"failed_owners", failedOwners,
	)
	if failedOwners > 0 {
		return fmt.Errorf("%d owner(s) failed", failedOwners)
	}
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
