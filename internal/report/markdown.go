// Package report renders analyses as Markdown and HTML documents.
package report

import (
	"fmt"
	"strings"

	"github.com/pharos-integrity/pharos/internal/analysis"
)

// ClaimMarkdown renders a single-claim analysis. claimText may be empty.
func ClaimMarkdown(claimText string, a analysis.ClaimAnalysis) string {
	var b strings.Builder

	b.WriteString("# Claim Analysis\n\n")
	if claimText != "" {
		fmt.Fprintf(&b, "> %s\n\n", quoteLines(claimText))
	}
	writeAssessment(&b, a.Assessment)
	writeList(&b, "Verification Approach", a.VerificationApproach)

	return b.String()
}

// ReportMarkdown renders a multi-claim analysis. Claim texts are looked up
// by id in claims; results for unknown ids are rendered without text.
func ReportMarkdown(companyName string, claims []analysis.Claim, r analysis.ReportAnalysis) string {
	var b strings.Builder

	title := "Sustainability Report Analysis"
	if companyName != "" {
		title += ": " + companyName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Overall risk:** %s\n\n", riskBadge(r.OverallRiskLevel))
	if r.ReportSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", r.ReportSummary)
	}

	texts := make(map[string]string, len(claims))
	for _, c := range claims {
		texts[c.ID] = c.Text
	}

	b.WriteString("## Claims\n\n")
	for _, c := range r.Claims {
		fmt.Fprintf(&b, "### %s\n\n", c.ID)
		if t := texts[c.ID]; t != "" {
			fmt.Fprintf(&b, "> %s\n\n", quoteLines(t))
		}
		writeAssessment(&b, c.Assessment)
	}

	b.WriteString("## Relationships\n\n")
	rel := r.Relationships
	if len(rel.Contradictions)+len(rel.Supporting)+len(rel.Duplicates)+len(rel.Inconsistencies) == 0 {
		b.WriteString("No relationships between claims were found.\n\n")
		return b.String()
	}
	writeFindings(&b, "Contradictions", rel.Contradictions)
	writeFindings(&b, "Inconsistencies", rel.Inconsistencies)
	writeFindings(&b, "Duplicates", rel.Duplicates)
	writeFindings(&b, "Supporting", rel.Supporting)

	return b.String()
}

func writeAssessment(b *strings.Builder, a analysis.Assessment) {
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Type | %s |\n", escapeCell(a.ClaimType))
	fmt.Fprintf(b, "| Specificity | %d/10 |\n", a.SpecificityScore)
	fmt.Fprintf(b, "| Verifiability | %d/10 |\n", a.VerifiabilityScore)
	fmt.Fprintf(b, "| Risk | %s |\n\n", riskBadge(a.RiskLevel))

	if a.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", a.Summary)
	}
	writeList(b, "Key Metrics", a.KeyMetrics)
	writeList(b, "Red Flags", a.RedFlags)
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func writeFindings(b *strings.Builder, heading string, findings []analysis.Relationship) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, f := range findings {
		ids := make([]string, len(f.ClaimIDs))
		for i, id := range f.ClaimIDs {
			ids[i] = "`" + id + "`"
		}
		line := strings.Join(ids, ", ")
		if f.Severity != "" {
			line += " (" + string(f.Severity) + ")"
		}
		fmt.Fprintf(b, "- %s: %s\n", line, f.Description)
	}
	b.WriteString("\n")
}

func riskBadge(r analysis.RiskLevel) string {
	switch r {
	case analysis.RiskLow:
		return "🟢 Low"
	case analysis.RiskHigh:
		return "🔴 High"
	default:
		return "🟡 Medium"
	}
}

func quoteLines(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n> ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
