package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/aggregate"
	"github.com/Veraticus/gastos/internal/cli"
)

func reportCmd() *cobra.Command {
	var (
		mode  string
		month string
		top   int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show totals per category and the largest expenses",
		Example: `  gastos report
  gastos report --mode monthly
  gastos report --mode monthly --month 2024-03 --top 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := aggregate.ParseMode(mode)
			if err != nil {
				return err
			}

			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			view, err := app.GetAggregates(aggregate.Query{Mode: m, Month: month, Top: top})
			if err != nil {
				return err
			}

			w := out(cmd)
			if view.Count == 0 && m == aggregate.ModeGlobal {
				fmt.Fprintln(w, cli.FormatInfo("No expenses yet. Use 'gastos import' to add some."))
				return nil
			}
			fmt.Fprint(w, cli.RenderView(app.ActiveUser(), view))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(aggregate.ModeGlobal), "global or monthly")
	cmd.Flags().StringVar(&month, "month", "", "month to show in monthly mode (YYYY-MM, default: newest)")
	cmd.Flags().IntVar(&top, "top", aggregate.DefaultTop, "number of largest expenses to list")
	return cmd
}

func trendsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show spending per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			view, err := app.GetAggregates(aggregate.Query{})
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), cli.RenderTrends(view.Series, view.Months, category))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	return cmd
}

func compareCmd() *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare both users over a set of categories",
		Long: `Compare what each user spends over the selected categories. Passing
--category saves the selection for later comparisons.`,
		Example: `  gastos compare
  gastos compare --category Supermercado --category Luz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("category") {
				if err := app.SetComparisonFilter(cmd.Context(), categories); err != nil {
					return err
				}
			}

			view, err := app.GetAggregates(aggregate.Query{})
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), cli.RenderComparison(view.Comparison, app.ComparisonFilter()))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "categories to compare (repeatable)")
	return cmd
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active user's ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			text := app.ExportLedgerAsText()
			if outPath == "" {
				fmt.Fprintln(out(cmd), text)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(text), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess("Exported to "+outPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	return cmd
}
