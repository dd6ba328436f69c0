package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/batch"
	"github.com/pharos-integrity/pharos/internal/progress"
	"github.com/pharos-integrity/pharos/internal/report"
)

var (
	batchOutputDir   string
	batchMarkdown    bool
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Analyze several claims files",
	Long: `Analyzes each claims file and writes <name>.analysis.json (and
<name>.analysis.md with --markdown) to the output directory. A failing file
is reported and the remaining files are still processed, unless the model
account is out of credits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		analyzer, err := buildAnalyzer(cfg, logger)
		if err != nil {
			return err
		}
		if !analyzer.Configured() {
			return analysis.ErrNotConfigured
		}
		database, store, err := openAudit(cfg)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		if database != nil {
			defer database.Close()
		}

		reporter := progress.NewReporter(cmd.ErrOrStderr())
		reporter.Start(len(args))
		batcher := batch.NewBatcher(batchConcurrency, analyzer, recorderFor(store), func(processed, total int, file string) {
			reporter.Update(processed, filepath.Base(file))
		})

		result := batcher.ProcessFiles(cmd.Context(), args)
		reporter.Finish(len(result.Errors))

		for _, err := range result.Errors {
			logger.Error("Batch file failed", zap.Error(err))
		}

		written := 0
		for _, fr := range result.Results {
			if err := writeBatchResult(fr); err != nil {
				logger.Error("Writing analysis failed", zap.String("file", fr.Path), zap.Error(err))
				continue
			}
			written++
		}

		if written < len(args) {
			return fmt.Errorf("%d of %d file(s) failed", len(args)-written, len(args))
		}
		return nil
	},
}

func writeBatchResult(fr batch.FileResult) error {
	base := strings.TrimSuffix(filepath.Base(fr.Path), filepath.Ext(fr.Path))

	data, err := json.MarshalIndent(fr.Outcome.Analysis, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(batchOutputDir, base+".analysis.json"), append(data, '\n'), 0o644); err != nil {
		return err
	}

	if batchMarkdown {
		md := report.ReportMarkdown(fr.Request.CompanyName, fr.Request.Claims, fr.Outcome.Analysis)
		if err := os.WriteFile(filepath.Join(batchOutputDir, base+".analysis.md"), []byte(md), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", ".", "directory for analysis results")
	batchCmd.Flags().BoolVar(&batchMarkdown, "markdown", false, "also write a Markdown report per file")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 2, "files analyzed in parallel")
	rootCmd.AddCommand(batchCmd)
}
