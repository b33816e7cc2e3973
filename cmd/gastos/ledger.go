package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/aggregate"
	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/staging"
	"github.com/Veraticus/gastos/internal/store"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List and correct saved expenses",
	}

	cmd.AddCommand(ledgerListCmd())
	cmd.AddCommand(ledgerEditCmd())
	cmd.AddCommand(ledgerDeleteCmd())
	cmd.AddCommand(ledgerClearCmd())

	return cmd
}

func ledgerListCmd() *cobra.Command {
	var (
		user     string
		month    string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveUser(app, user)
			if err != nil {
				return err
			}
			txs, err := app.Transactions(id)
			if err != nil {
				return err
			}
			if month != "" {
				txs = aggregate.FilterMonth(txs, month)
			}
			if category != "" {
				txs = aggregate.FilterCategory(txs, category)
			}

			w := out(cmd)
			if len(txs) == 0 {
				fmt.Fprintln(w, cli.FormatInfo("No expenses"))
				return nil
			}
			fmt.Fprintln(w, cli.RenderLedger(txs))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user to list (default: active user)")
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

// reportLedgerWrite prints the outcome of a ledger change. A mirror failure
// is shown as a warning; the change itself was saved.
func reportLedgerWrite(cmd *cobra.Command, err error, done string) error {
	var persistErr *common.PersistenceError
	if errors.As(err, &persistErr) {
		printNotice(out(cmd), common.NoticeFor(err))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), cli.FormatSuccess(done))
	return nil
}

func ledgerEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <field> <value>",
		Short: "Change one field of a saved expense",
		Long: `Change one field of a saved expense of the active user. Fields are
date, concept, amount, category and description (or fecha, concepto,
cantidad, categoria, descripcion). The id may be any unique prefix.`,
		Example: `  gastos ledger edit 3f2a amount 12,50
  gastos ledger edit 3f2a categoria Ocio`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit, err := staging.ParseEdit(args[1], args[2])
			if err != nil {
				return err
			}

			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := activeTransactionID(app, args[0])
			if err != nil {
				return err
			}
			err = app.UpdateTransaction(cmd.Context(), id, edit)
			return reportLedgerWrite(cmd, err, "Expense updated")
		},
	}
}

func ledgerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := activeTransactionID(app, args[0])
			if err != nil {
				return err
			}
			err = app.DeleteTransaction(cmd.Context(), id)
			return reportLedgerWrite(cmd, err, "Expense deleted")
		},
	}
}

func activeTransactionID(app *store.App, prefix string) (string, error) {
	txs, err := app.Transactions(app.ActiveUser())
	if err != nil {
		return "", err
	}
	return resolveTransactionID(txs, prefix)
}

func ledgerClearCmd() *cobra.Command {
	var (
		user  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved expense of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveUser(app, user)
			if err != nil {
				return err
			}

			if !force {
				prompter := cli.NewPrompter(cmd.InOrStdin(), out(cmd))
				ok, err := prompter.Confirm(cmd.Context(), fmt.Sprintf("Delete every expense of %s?", id.Label()))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out(cmd), cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			err = app.ClearLedger(cmd.Context(), id)
			return reportLedgerWrite(cmd, err, "Ledger of "+id.Label()+" cleared")
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user to clear (default: active user)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
