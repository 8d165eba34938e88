package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rutaguard/rutaguard/catalogs"
	"github.com/rutaguard/rutaguard/internal/catalog"
	"github.com/rutaguard/rutaguard/internal/core/config"
	"github.com/rutaguard/rutaguard/internal/core/db"
	"github.com/rutaguard/rutaguard/internal/records"
	"github.com/rutaguard/rutaguard/internal/report"
	"github.com/rutaguard/rutaguard/internal/rules"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a dispatch-sheet export against the incidence catalogue",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("records", "", "CSV export to validate (required)")
	validateCmd.Flags().String("catalog", "", "YAML catalogue file (default: embedded catalogue)")
	validateCmd.Flags().Int("workers", 0, "parallel workers (0 = number of CPUs)")
	validateCmd.Flags().String("output", "", "report format (text, csv)")
	validateCmd.Flags().String("out", "", "write the report to a file instead of stdout")
	validateCmd.MarkFlagRequired("records")
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath, _ = cmd.Flags().GetString("catalog")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputPath, _ = cmd.Flags().GetString("out")
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := loadRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	recordsPath, _ := cmd.Flags().GetString("records")
	recs, err := records.LoadCSV(recordsPath)
	if err != nil {
		return err
	}
	if len(recs) > cfg.MaxRecords {
		return fmt.Errorf("%d records exceeds the configured limit of %d", len(recs), cfg.MaxRecords)
	}

	engine := rules.NewEngine(cfg.Workers)
	rep, err := engine.Run(ctx, registry, recs)
	if err != nil {
		return err
	}

	logger.Info("validation run complete",
		"run_id", string(rep.RunID),
		"records", rep.RecordCount,
		"rules", rep.RuleCount,
		"violations", len(rep.Violations),
		"skips", len(rep.Skips))

	out := io.Writer(os.Stdout)
	if cfg.OutputPath != "" {
		fh, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("could not create report file: %w", err)
		}
		defer fh.Close()
		out = fh
	}

	switch cfg.Output {
	case "csv":
		err = report.WriteCSV(out, &rep, recs)
	default:
		err = report.WriteText(out, &rep)
	}
	if err != nil {
		return err
	}

	if len(rep.Violations) > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d violations found", len(rep.Violations))
	}
	return nil
}

// loadRegistry resolves the catalogue source: database first, then the
// YAML file, then the embedded default.
func loadRegistry(ctx context.Context, cfg *config.ValidatorConfig) (*rules.Registry, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer conn.Close()

		queries, err := db.LoadQueries(conn)
		if err != nil {
			return nil, fmt.Errorf("failed to load queries: %w", err)
		}
		reg, err := catalog.NewStore(queries).LoadActive(ctx)
		if err != nil {
			return nil, err
		}
		if reg.Len() == 0 {
			return nil, fmt.Errorf("catalogue database holds no active rules (run 'rutaguard catalog import' first)")
		}
		return reg, nil
	}

	if cfg.CatalogPath != "" {
		return catalog.Load(cfg.CatalogPath)
	}
	return catalogs.Default()
}
