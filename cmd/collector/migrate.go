package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventScope/internal/storage"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	logger, err := newLogger(logLevel, logFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out, _ := cmd.Flags().GetString("out")
	store, err := storage.LoadEventStore(out)
	if err != nil {
		return err
	}

	if store.Transactions() == 0 && store.Migrated() == 0 {
		logger.Info("nothing to migrate", zap.String("path", out))
		return nil
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("save event store: %w", err)
	}

	logger.Info("store migrated",
		zap.String("path", out),
		zap.Int("migrated_keys", store.Migrated()),
		zap.Int("transactions", store.Transactions()),
		zap.Int("total", store.TotalEntries()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d keys upgraded, %d events across %d transactions in %s\n",
		store.Migrated(), store.TotalEntries(), store.Transactions(), out)
	return nil
}
