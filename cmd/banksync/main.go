package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstapel/banksync/internal/config"
	"github.com/dstapel/banksync/internal/ledger"
	"github.com/dstapel/banksync/internal/logger"
	"github.com/dstapel/banksync/internal/report"
	"github.com/dstapel/banksync/internal/service"
)

func main() {
	// Command-line flags
	var (
		configFile  string
		intervalStr string
		runOnce     bool
		prettyPrint bool
	)

	flag.StringVar(&configFile, "config", "banksync.json", "Path to JSON configuration file")
	flag.StringVar(&intervalStr, "interval", "", "Upload interval override, e.g. 5m (defaults to the configured value)")
	flag.BoolVar(&runOnce, "once", false, "Run a single sync cycle and exit")
	flag.BoolVar(&prettyPrint, "pretty", false, "Human-readable log output and pretty-printed cycle reports")

	flag.Parse()

	log := logger.New(prettyPrint)

	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError(fmt.Sprintf("Loading configuration: %v", err))
	}

	interval, err := cfg.UploadInterval()
	if err != nil {
		exitWithError(fmt.Sprintf("Invalid configuration: %v", err))
	}
	if intervalStr != "" {
		interval, err = time.ParseDuration(intervalStr)
		if err != nil || interval <= 0 {
			exitWithError(fmt.Sprintf("Invalid interval %q", intervalStr))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerClient := ledger.New(cfg.Ledger.URL, cfg.Ledger.Token, log)
	syncService := service.New(ledgerClient, cfg.CacheSize, log)

	for _, contract := range cfg.Contracts {
		if err := syncService.RegisterContract(contract.Name, contract.Bank, contract.AccountType, contract.Credentials); err != nil {
			exitWithError(fmt.Sprintf("Registering contract %q: %v", contract.Name, err))
		}
	}
	for _, account := range cfg.Accounts {
		if err := syncService.RegisterAccount(ctx, account.Contract, account.Budget, account.Account, account.SourceAccountID); err != nil {
			exitWithError(fmt.Sprintf("Registering account %q/%q: %v", account.Budget, account.Account, err))
		}
	}
	if len(syncService.Accounts()) == 0 {
		exitWithError("No accounts configured")
	}

	formatter := report.NewJSONFormatter(prettyPrint)

	runCycle := func() {
		result, err := syncService.UploadLatestTransactions(ctx)
		if err != nil {
			log.Error().Err(err).Str("cycle_id", result.CycleID).Msg("sync cycle failed")
		}
		output, err := formatter.Format(result)
		if err != nil {
			log.Error().Err(err).Msg("formatting cycle report")
			return
		}
		fmt.Println(string(output))
	}

	runCycle()
	if runOnce {
		return
	}

	log.Info().Dur("interval", interval).Msg("starting sync loop")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			runCycle()
		}
	}
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
