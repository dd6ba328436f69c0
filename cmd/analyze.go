package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/batch"
	"github.com/pharos-integrity/pharos/internal/report"
)

var (
	analyzeClaim   string
	analyzeFile    string
	analyzeCompany string
	analyzeSector  string
	analyzeFormat  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one claim or a claims file",
	Long: `Analyzes a single claim given with --claim, or every claim of a report file
given with --file (YAML or JSON with claims, companyName and sector), and
prints the result as JSON, Markdown or HTML.`,
	Example: `  pharos analyze --claim "Carbon neutral by 2030" --company Acme --sector Energy
  pharos analyze --file acme-2025.yml --format markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (analyzeClaim == "") == (analyzeFile == "") {
			return fmt.Errorf("exactly one of --claim or --file is required")
		}
		switch analyzeFormat {
		case "json", "markdown", "html":
		default:
			return fmt.Errorf("invalid --format %q: must be json, markdown or html", analyzeFormat)
		}

		analyzer, err := buildAnalyzer(cfg, logger)
		if err != nil {
			return err
		}
		database, store, err := openAudit(cfg)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		if database != nil {
			defer database.Close()
		}
		rec := recorderFor(store)
		ctx := cmd.Context()
		start := time.Now()

		if analyzeClaim != "" {
			req := analysis.ClaimRequest{ClaimText: analyzeClaim, CompanyName: analyzeCompany, Sector: analyzeSector}
			entry := audit.Entry{Kind: audit.KindClaim, Company: req.CompanyName, Sector: req.Sector, ClaimCount: 1}

			out, err := analyzer.AnalyzeClaim(ctx, req)
			if err != nil {
				recordCLI(ctx, rec, entry, start, analysis.Interpretation{}, "", err)
				return err
			}
			entry.RiskLevel = string(out.Analysis.RiskLevel)
			recordCLI(ctx, rec, entry, start, out.Interpretation, out.Model, nil)

			return writeResult(cmd.OutOrStdout(), out.Analysis, "Claim Analysis", func() string {
				return report.ClaimMarkdown(req.ClaimText, out.Analysis)
			})
		}

		req, err := batch.ReadRequest(analyzeFile)
		if err != nil {
			return err
		}
		if analyzeCompany != "" {
			req.CompanyName = analyzeCompany
		}
		if analyzeSector != "" {
			req.Sector = analyzeSector
		}
		entry := audit.Entry{Kind: audit.KindReport, Company: req.CompanyName, Sector: req.Sector, ClaimCount: len(req.Claims)}

		claims, err := analysis.PrepareClaims(req.Claims)
		if err != nil {
			recordCLI(ctx, rec, entry, start, analysis.Interpretation{}, "", err)
			return err
		}
		req.Claims = claims

		out, err := analyzer.AnalyzeClaims(ctx, req)
		if err != nil {
			recordCLI(ctx, rec, entry, start, analysis.Interpretation{}, "", err)
			return err
		}
		entry.RiskLevel = string(out.Analysis.OverallRiskLevel)
		recordCLI(ctx, rec, entry, start, out.Interpretation, out.Model, nil)

		return writeResult(cmd.OutOrStdout(), out.Analysis, reportTitle(req.CompanyName), func() string {
			return report.ReportMarkdown(req.CompanyName, claims, out.Analysis)
		})
	},
}

// writeResult prints v in the selected --format. The Markdown rendering is
// only built when needed.
func writeResult(w io.Writer, v any, title string, markdown func() string) error {
	switch analyzeFormat {
	case "markdown":
		_, err := io.WriteString(w, markdown())
		return err
	case "html":
		page, err := report.HTML(title, markdown())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func reportTitle(company string) string {
	if company == "" {
		return "Report Analysis"
	}
	return company + " Report Analysis"
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeClaim, "claim", "", "claim text to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "claims file (YAML or JSON)")
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "company name")
	analyzeCmd.Flags().StringVar(&analyzeSector, "sector", "", "industry sector")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json, markdown or html")
	rootCmd.AddCommand(analyzeCmd)
}
