package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rutaguard/rutaguard/catalogs"
	"github.com/rutaguard/rutaguard/internal/catalog"
	"github.com/rutaguard/rutaguard/internal/core/db"
	"github.com/rutaguard/rutaguard/internal/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the incidence-rule catalogue",
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint <catalogue.yaml>",
	Short: "Validate a catalogue file without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogLint,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [catalogue.yaml]",
	Short: "Import a catalogue into the database (default: embedded catalogue)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogImport,
}

var catalogDeactivateCmd = &cobra.Command{
	Use:   "deactivate <rule-id>",
	Short: "Mark a catalogue rule inactive without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogDeactivate,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLintCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogDeactivateCmd)
}

func runCatalogLint(cmd *cobra.Command, args []string) error {
	reg, err := catalog.Load(args[0])
	if err != nil {
		var cerr *types.CatalogueError
		if errors.As(err, &cerr) {
			cmd.SilenceUsage = true
		}
		return err
	}

	fmt.Printf("%s: %d rules, catalogue is valid\n", args[0], reg.Len())
	for _, rule := range reg.Rules() {
		fmt.Printf("  %-6s %s (%d checks, %s)\n", rule.ID, rule.Description, len(rule.Checks), rule.Severity)
	}
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger()
	if err != nil {
		return err
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}

	var f *catalog.File
	if len(args) == 1 {
		fh, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open catalogue %q: %w", args[0], err)
		}
		defer fh.Close()
		if f, err = catalog.Parse(fh); err != nil {
			return fmt.Errorf("catalogue %q: %w", args[0], err)
		}
	} else {
		if f, err = catalogs.DefaultFile(); err != nil {
			return err
		}
	}

	conn, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	queries, err := db.LoadQueries(conn)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	n, err := catalog.NewStore(queries).Import(context.Background(), f)
	if err != nil {
		return err
	}

	logger.Info("catalogue imported", "rules", n)
	return nil
}

func runCatalogDeactivate(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger()
	if err != nil {
		return err
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	conn, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	queries, err := db.LoadQueries(conn)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	if err := catalog.NewStore(queries).Deactivate(context.Background(), args[0]); err != nil {
		cmd.SilenceUsage = true
		return err
	}

	logger.Info("rule deactivated", "rule_id", args[0])
	return nil
}
