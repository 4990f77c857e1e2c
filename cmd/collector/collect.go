package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventScope/internal/chain"
	"eventScope/internal/config"
	"eventScope/internal/indexer"
	"eventScope/internal/storage"
	"eventScope/internal/storage/postgres"
)

func runCollect(cmd *cobra.Command, args []string) error {
	contract, err := indexer.ParseAddress(args[0])
	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(cfgFile, envFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	schema, ok := registry.Lookup(cfg.Event)
	if !ok {
		return fmt.Errorf("unknown event %q", cfg.Event)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.HeaderCacheSize)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	store, err := storage.LoadEventStore(cfg.Out)
	if err != nil {
		return err
	}
	if store.Migrated() > 0 {
		logger.Info("upgraded legacy store entries", zap.Int("keys", store.Migrated()), zap.String("path", cfg.Out))
	}

	collector := indexer.NewCollector(indexer.RunConfig{
		Contract:  contract,
		Schema:    schema,
		FromBlock: cfg.FromBlock,
		ToBlock:   cfg.ToBlock,
	}, chainClient, store, logger)

	if cfg.Errors != "" {
		collector.SetDiagnostics(storage.NewJsonlStorage(cfg.Errors))
	}
	if cfg.ExportJSONL != "" {
		collector.AddSink(storage.NewJsonlStorage(cfg.ExportJSONL))
	}
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		collector.AddSink(pg)
	}

	logger.Info("collector start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", contract.Hex()),
		zap.String("event", schema.Name),
		zap.String("signature", schema.Signature),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	res, err := collector.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new events added, %d events across %d transactions in %s\n",
		schema.Name, res.Added, res.Total, res.Transactions, store.Path())
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
