package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(removeCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			w := out(cmd)
			for _, c := range app.Categories() {
				fmt.Fprintln(w, c)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			added, err := app.AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("Category %q already exists", args[0])))
				return nil
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Added category %q", args[0])))
			return nil
		},
	}
}

func removeCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a category",
		Long: `Remove a category from the list. Existing expenses keep their category;
only new imports stop recognizing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.RemoveCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Removed category %q", args[0])))
			return nil
		},
	}
}
