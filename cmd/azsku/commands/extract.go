package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/azsku/db"
	"github.com/teranos/azsku/display"
	"github.com/teranos/azsku/logger"
	"github.com/teranos/azsku/pipeline"
	"github.com/teranos/azsku/storage"
	"github.com/teranos/azsku/version"
)

// ExtractCmd represents the extract command
var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract VM families, series and sizes into the database",
	Long: `Extract the VM size documentation into the database.

Every series document under the sizes tree is resolved against its family page
and companion include documents, its capability list and host specifications
are parsed, and family, series and size records are written to SQLite. A record
is only rewritten when its content changed; series whose documents did not
change since the last run are skipped entirely (see extract.skip_unchanged).

Failures are isolated per series and listed at the end unless --fail-fast is
given.

Examples:
  azsku extract --clone                  # Clone or update the docs repository, then extract
  azsku extract --repo ../azure-compute-docs
  azsku extract --repo . --dry-run       # Report what would change without writing
  azsku extract --workers 8 --fail-fast
  azsku extract --json                   # Machine-readable run report`,
	RunE: runExtract,
}

func init() {
	addCorpusFlags(ExtractCmd)
	ExtractCmd.Flags().Int("workers", 0, "Concurrent series documents (overrides extract.workers, 0 = one per CPU)")
	ExtractCmd.Flags().Bool("dry-run", false, "Extract and compare without writing to the database")
	ExtractCmd.Flags().Bool("fail-fast", false, "Abort on the first failed series")
	ExtractCmd.Flags().Bool("all", false, "Extract every series, even when its documents did not change")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	useJSON := display.ShouldOutputJSON(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Extract.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Extract.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.Extract.FailFast, _ = cmd.Flags().GetBool("fail-fast")
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		cfg.Extract.SkipUnchanged = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if !useJSON {
		pterm.DefaultHeader.WithFullWidth().Printf("azsku - VM size extraction")
		pterm.Println()
		if cfg.Extract.DryRun {
			pterm.Warning.Println("DRY RUN MODE: nothing will be written to the database")
			pterm.Println()
		}
	}

	var spinner *pterm.SpinnerPrinter
	if !useJSON {
		spinner, _ = pterm.DefaultSpinner.Start("Reading documentation corpus...")
	}
	src, err := openSource(ctx, cmd, cfg)
	if err != nil {
		stopSpinner(spinner)
		return err
	}
	c, err := src.Load(ctx)
	if err != nil {
		stopSpinner(spinner)
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	database, err := db.OpenWithMigrations(cfg.Database.Path, logger.Logger)
	if err != nil {
		stopSpinner(spinner)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	store := storage.NewSQLStore(database, logger.ComponentLogger("storage"), version.Version)
	runner := pipeline.New(c, store, pipeline.Options{
		Workers:          cfg.Extract.Workers,
		FailFast:         cfg.Extract.FailFast,
		DryRun:           cfg.Extract.DryRun,
		SkipUnchanged:    cfg.Extract.SkipUnchanged,
		ExtractorVersion: version.Version,
		MetricsTextfile:  cfg.Metrics.Textfile,
	}, logger.ComponentLogger("pipeline"))

	if spinner != nil {
		spinner.UpdateText(fmt.Sprintf("Extracting %d documents from %s...", c.Len(), src.Root()))
	}
	report, runErr := runner.Run(ctx)
	stopSpinner(spinner)

	if useJSON {
		if report != nil {
			if err := display.OutputJSON(report); err != nil {
				return err
			}
		}
		return runErr
	}
	if report != nil {
		printReport(report)
	}
	if runErr != nil {
		pterm.Error.Printf("Extraction aborted: %v\n", runErr)
		return runErr
	}
	return nil
}

func stopSpinner(s *pterm.SpinnerPrinter) {
	if s != nil {
		_ = s.Stop()
	}
}

func printReport(r *pipeline.Report) {
	pterm.Println()
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Series", "Extracted", "Skipped", "Preview", "Failed"},
		{
			fmt.Sprint(r.Units),
			fmt.Sprint(r.Extracted),
			fmt.Sprint(r.Skipped),
			fmt.Sprint(r.PublicPreview),
			fmt.Sprint(r.Failed),
		},
	}).Render()
	pterm.Println()
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Entities", "New", "Changed", "Unchanged"},
		{"", fmt.Sprint(r.New), fmt.Sprint(r.Changed), fmt.Sprint(r.Unchanged)},
	}).Render()
	pterm.Println()

	if len(r.Failures) > 0 {
		kinds := make([]string, 0, len(r.FailuresByKind))
		for k := range r.FailuresByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			pterm.Warning.Printf("%d %s failures\n", r.FailuresByKind[k], k)
		}
		data := pterm.TableData{{"Document", "Series", "Kind", "Error"}}
		for _, f := range r.Failures {
			data = append(data, []string{f.Document, f.Identifier, f.Kind, f.Error})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Println()
	}

	elapsed := r.EndTime.Sub(r.StartTime).Round(time.Millisecond)
	if r.DryRun {
		pterm.Info.Printf("Dry run %s finished in %s; run without --dry-run to write changes\n", r.RunID, elapsed)
		return
	}
	pterm.Success.Printf("Run %s finished in %s\n", r.RunID, elapsed)
}
