package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
)

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored data",
		Long: `Reset deletes both ledgers, the categories, the comparison selection and
the stored API key. Mirror files on disk are left untouched.

This is a destructive operation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := out(cmd)
			if !force {
				prompter := cli.NewPrompter(cmd.InOrStdin(), w)
				ok, err := prompter.Confirm(cmd.Context(), "Delete ALL stored data?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(w, cli.FormatInfo("Reset canceled"))
					return nil
				}
			}

			if err := app.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(w, cli.FormatSuccess("All data deleted"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
