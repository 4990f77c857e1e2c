package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "collector",
		Short:        "Incremental contract event collector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env", "", "dotenv file loaded before reading the environment")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-file", "", "also write JSON logs to this rotating file")

	collectCmd := &cobra.Command{
		Use:   "collect <contract-address>",
		Short: "Fetch, decode and merge contract events into the event store",
		Args:  cobra.ExactArgs(1),
		RunE:  runCollect,
	}

	collectCmd.Flags().String("rpc", "", "RPC URL (also read from RPC_SONIC)")
	collectCmd.Flags().String("event", "LiquidationCall", "event schema name")
	collectCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	collectCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	collectCmd.Flags().String("out", "./events.json", "event store path")
	collectCmd.Flags().String("errors", "", "decode errors JSONL (empty disables)")
	collectCmd.Flags().String("export-jsonl", "", "append newly added events to this JSONL file")
	collectCmd.Flags().String("pg-dsn", "", "Postgres DSN for mirroring newly added events")
	collectCmd.Flags().Int("header-cache-size", 1024, "block headers kept in memory")

	root.AddCommand(collectCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade a legacy event store in place",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("out", "./events.json", "event store path")

	root.AddCommand(migrateCmd)

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "List the known event schemas",
		Args:  cobra.NoArgs,
		RunE:  runEvents,
	}

	root.AddCommand(eventsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
