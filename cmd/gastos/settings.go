package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
	}
	cmd.AddCommand(settingsShowCmd())
	cmd.AddCommand(settingsAPIKeyCmd())
	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			key := "not set"
			switch {
			case appConfig.LLM.APIKey != "":
				key = "from config or environment"
			case app.APIKey() != "":
				key = "stored"
			}

			w := out(cmd)
			fmt.Fprintf(w, "%-12s %s\n", "Database:", appConfig.DatabasePath)
			fmt.Fprintf(w, "%-12s %s\n", "Provider:", appConfig.LLM.Provider)
			fmt.Fprintf(w, "%-12s %s\n", "Model:", orDefault(appConfig.LLM.Model, "default"))
			fmt.Fprintf(w, "%-12s %s\n", "API key:", key)
			fmt.Fprintf(w, "%-12s %s\n", "Active user:", app.ActiveUser().Label())
			return nil
		},
	}
}

func settingsAPIKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api-key <key>",
		Short: "Store the extraction service API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.SetAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			configureExtractor(cmd.Context(), app)
			fmt.Fprintln(out(cmd), cli.FormatSuccess("API key saved"))
			return nil
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
