package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/llm"
	"github.com/Veraticus/gastos/internal/mirror"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
	"github.com/Veraticus/gastos/internal/store"
)

// initStorage opens the key-value database and runs its migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	db, err := storage.NewSQLiteStorage(appConfig.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// openApp loads the application state, re-binds the configured mirror
// files and wires the extraction service when an API key is available.
func openApp(ctx context.Context) (*store.App, func(), error) {
	db, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}

	app, err := store.NewApp(ctx, store.Options{KV: db})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	for id, path := range appConfig.Mirrors {
		file, err := mirror.Open(path)
		if err != nil {
			slog.Warn("Ignoring mirror file", "user", id, "path", path, "error", err)
			continue
		}
		if err := app.BindExternalFile(id, file); err != nil {
			slog.Warn("Failed to bind mirror file", "user", id, "path", path, "error", err)
		}
	}

	configureExtractor(ctx, app)
	return app, cleanup, nil
}

// configureExtractor (re)builds the extraction service from the config and
// the persisted API key. Without a key, document imports are refused.
func configureExtractor(ctx context.Context, app *store.App) {
	extractor, err := llm.New(ctx, appConfig.Extraction(app.APIKey()))
	if err != nil {
		if !errors.Is(err, common.ErrMissingConfig) {
			slog.Warn("Extraction service unavailable", "error", err)
		}
		app.SetExtractor(nil)
		return
	}
	app.SetExtractor(extractor)
}

// resolveUser parses a --user flag; empty means the active user.
func resolveUser(app *store.App, flag string) (model.UserID, error) {
	if flag == "" {
		return app.ActiveUser(), nil
	}
	return model.ParseUserID(flag)
}

// resolveTransactionID expands a unique id prefix, as shown by
// "ledger list", into the full id.
func resolveTransactionID(txs []model.Transaction, prefix string) (string, error) {
	var match string
	for _, tx := range txs {
		if tx.ID == prefix {
			return tx.ID, nil
		}
		if strings.HasPrefix(tx.ID, prefix) {
			if match != "" {
				return "", common.NewUserError(fmt.Sprintf("Ambiguous id %q", prefix), common.ErrInvalidConfig)
			}
			match = tx.ID
		}
	}
	if match == "" {
		return "", common.NewUserError(fmt.Sprintf("No transaction with id %q", prefix), common.ErrNotFound)
	}
	return match, nil
}

// detectKind picks the source kind from the file extension.
func detectKind(path string) store.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return store.KindCSV
	case ".ofx", ".qfx":
		return store.KindOFX
	default:
		return store.KindDocument
	}
}

// sourceFromFile reads path into an ingestion source. kind overrides the
// extension-based detection.
func sourceFromFile(path, kind string) (store.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	k := detectKind(path)
	if kind != "" {
		if k, err = store.ParseKind(kind); err != nil {
			return store.Source{}, err
		}
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = mimeType[:i]
	}

	return store.Source{
		Kind:     k,
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// saveConfigValue stores key in the config file, creating it when needed.
func saveConfigValue(key string, value any) error {
	viper.Set(key, value)

	if path := viper.ConfigFileUsed(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return viper.WriteConfig()
		}
	}

	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "gastos", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return viper.WriteConfigAs(path)
}

// printNotice writes a styled notice line.
func printNotice(w io.Writer, n common.Notice) {
	if n.Message == "" {
		return
	}
	fmt.Fprintln(w, cli.FormatNotice(n))
}

// out is the command's standard output.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
