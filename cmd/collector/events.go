package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventScope/internal/config"
)

func runEvents(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(cfgFile, envFile, cmd.Flags())
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTOPIC0\tSIGNATURE\tRETAINED")
	for _, schema := range registry.Schemas() {
		retained := make([]string, 0, len(schema.Retained))
		for _, ref := range schema.Retained {
			retained = append(retained, ref.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", schema.Name, schema.Topic0().Hex(), schema.Signature, strings.Join(retained, ","))
	}
	return w.Flush()
}
