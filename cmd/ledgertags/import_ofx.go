package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mwhitfield/ledgertags/internal/ingest"
	"github.com/mwhitfield/ledgertags/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX files exported from your
bank. Duplicate transactions are detected by hash and skipped, so
re-importing the same statement is safe.

Examples:
  ledgertags import ~/Downloads/checking_jan.qfx
  ledgertags import ~/Downloads/*.qfx --tenant-id alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	tenantType, tenantID, err := tenantScope()
	if err != nil {
		return err
	}

	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("no files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	parser, err := ingest.NewParser(tenantType, tenantID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var all []model.Transaction
	bar := progressbar.Default(int64(len(files)), "parsing statements")
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		transactions, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		all = append(all, transactions...)
		_ = bar.Add(1)
	}

	if dryRun {
		slog.Info("dry run, nothing saved", "transactions", len(all))
		return nil
	}
	if len(all) == 0 {
		slog.Info("no transactions found in input")
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, all); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("import complete", "transactions", len(all), "files", len(files))
	return nil
}
