package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/mirror"
	"github.com/Veraticus/gastos/internal/model"
)

func mirrorKey(id model.UserID) string {
	return "users." + string(id) + ".file"
}

func connectCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "connect <user> <file>",
		Short: "Bind a user's ledger to a CSV file",
		Long: `Bind a user's ledger to a CSV file. When the file has content it replaces
the ledger; afterwards every change to the ledger rewrites the file. The
path is saved in the config file so later sessions bind it again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseUserID(args[0])
			if err != nil {
				return err
			}
			file, err := mirror.Open(args[1])
			if err != nil {
				return err
			}

			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := app.ConnectExternalFile(cmd.Context(), id, file)
			if err != nil {
				return err
			}

			w := out(cmd)
			if len(res.Transactions) > 0 {
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Loaded %d expenses from %s into %s", len(res.Transactions), file.Name(), id.Label())))
			} else {
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Connected %s to %s", id.Label(), file.Name())))
			}
			if res.Skipped > 0 {
				fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d rows could not be read", res.Skipped)))
			}

			if noSave {
				return nil
			}
			return saveConfigValue(mirrorKey(id), file.Name())
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "bind for this session only")
	return cmd
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <user>",
		Short: "Stop mirroring a user's ledger to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseUserID(args[0])
			if err != nil {
				return err
			}

			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.DisconnectExternalFile(id); err != nil {
				return err
			}
			if appConfig.Mirrors[id] != "" {
				if err := saveConfigValue(mirrorKey(id), ""); err != nil {
					return err
				}
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess("Disconnected "+id.Label()))
			return nil
		},
	}
}
