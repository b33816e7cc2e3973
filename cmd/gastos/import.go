package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/store"
	"github.com/Veraticus/gastos/internal/tui"
)

type importOptions struct {
	kind   string
	user   string
	yes    bool
	review bool
}

func importCmd() *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import expenses from statements",
		Long: `Import expenses from CSV files, OFX/QFX statements, previously exported
ledgers, or any other statement (PDF, image, text) through the extraction
service. Each file is staged, reviewed and then saved into the active
user's ledger. Rows already in the ledger are skipped as duplicates.`,
		Example: `  gastos import enero.csv
  gastos import --user user2 --yes extracto.pdf
  gastos import --kind ledger gastos-2023.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "source kind: csv, document, ofx or ledger (default: by extension)")
	cmd.Flags().StringVar(&opts.user, "user", "", "switch to this user before importing (user1 or user2)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "save without reviewing")
	cmd.Flags().BoolVar(&opts.review, "review", true, "review staged rows in the interactive screen")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, opts importOptions) error {
	app, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Staged rows were not saved")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	if opts.user != "" {
		id, err := model.ParseUserID(opts.user)
		if err != nil {
			return err
		}
		if err := app.SwitchUser(ctx, id); err != nil {
			return err
		}
	}

	w := out(cmd)
	prompter := cli.NewPrompter(cmd.InOrStdin(), w)
	batch := opts.yes && len(args) > 1
	if batch {
		prompter.StartProgress(len(args), "Importing statements")
	}

	var failed int
	for _, path := range args {
		if ctx.Err() != nil {
			break
		}
		if err := importOne(ctx, app, prompter, w, path, opts); err != nil {
			failed++
			if batch {
				prompter.Advance()
			}
			printNotice(w, common.NoticeFor(err))
			continue
		}
		if batch {
			prompter.Advance()
		}
	}
	if batch {
		prompter.FinishProgress()
	}

	if handler.WasInterrupted() {
		app.DiscardStaged()
		return ctx.Err()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(args))
	}
	return nil
}

func importOne(ctx context.Context, app *store.App, prompter *cli.Prompter, w io.Writer, path string, opts importOptions) error {
	src, err := sourceFromFile(path, opts.kind)
	if err != nil {
		return err
	}

	report, err := app.Ingest(ctx, src)
	if err != nil {
		return err
	}
	fmt.Fprint(w, cli.RenderIngest(src.Name, report))
	if report.Staged == 0 {
		return nil
	}

	commit, err := reviewAndCommit(ctx, app, prompter, w, src.Name, opts)
	if err != nil {
		return err
	}
	if commit != nil {
		fmt.Fprintln(w, cli.RenderCommit(*commit))
	}
	return nil
}

// reviewAndCommit lets the user accept the staged rows. A nil report means
// the rows were discarded.
func reviewAndCommit(ctx context.Context, app *store.App, prompter *cli.Prompter, w io.Writer, name string, opts importOptions) (*store.CommitReport, error) {
	switch {
	case opts.yes:
	case opts.review && isatty.IsTerminal(os.Stdout.Fd()):
		result, err := tui.Run(ctx, app, tui.WithTitle("Revisar gastos · "+name))
		if err != nil {
			return nil, err
		}
		if !result.Committed {
			if result.Err != nil {
				return nil, result.Err
			}
			printNotice(w, common.Info("Discarded staged rows from %s", name))
			return nil, nil
		}
		return &result.Report, nil
	default:
		fmt.Fprintln(w, cli.RenderStaged(app.Staged()))
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Save %d rows?", len(app.Staged())))
		if err != nil {
			return nil, err
		}
		if !ok {
			app.DiscardStaged()
			printNotice(w, common.Info("Discarded staged rows from %s", name))
			return nil, nil
		}
	}

	report, err := app.CommitStaged(ctx)
	if err != nil && !errors.Is(err, common.ErrEmptyStaging) {
		return nil, err
	}
	return &report, nil
}
