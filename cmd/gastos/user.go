package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/model"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show or switch the active user",
	}
	cmd.AddCommand(userShowCmd())
	cmd.AddCommand(userSwitchCmd())
	return cmd
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show both users and their ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := out(cmd)
			active := app.ActiveUser()
			for _, id := range model.Users() {
				txs, err := app.Transactions(id)
				if err != nil {
					return err
				}
				marker := "  "
				if id == active {
					marker = cli.SuccessIcon + " "
				}
				file := cli.SubtleStyle.Render("no file")
				if binding, _ := app.Binding(id); binding != nil {
					file = binding.Name()
				}
				fmt.Fprintf(w, "%s%s (%s): %d expenses, %s\n", marker, cli.BoldStyle.Render(id.Label()), id, len(txs), file)
			}
			return nil
		},
	}
}

func userSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "switch <user1|user2>",
		Short:     "Make a user the active one",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.User1), string(model.User2)},
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

			if err := app.SwitchUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess("Active user: "+id.Label()))
			return nil
		},
	}
}
