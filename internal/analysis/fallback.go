package analysis

const (
	unknownClaimType    = "Unknown"
	parseFailedFlag     = "Unable to fully parse claim"
	missingResultFlag   = "No analysis returned for this claim"
	manualReviewAdvice  = "Manual review recommended"
	incompleteSummary   = "Analysis could not be completed."
	incompleteReportSum = "Analysis could not be fully completed. Manual review recommended."
)

func fallbackAssessment(summary, redFlag string) Assessment {
	return Assessment{
		ClaimType:          unknownClaimType,
		SpecificityScore:   neutralScore,
		VerifiabilityScore: neutralScore,
		KeyMetrics:         []string{},
		RedFlags:           []string{redFlag},
		RiskLevel:          RiskMedium,
		Summary:            summary,
	}
}

// claimFallback is the single-claim result used when the model response
// cannot be parsed. The raw response becomes the summary so a reader still
// sees what the model said.
func claimFallback(content string) ClaimAnalysis {
	summary := content
	if summary == "" {
		summary = incompleteSummary
	}
	return ClaimAnalysis{
		Assessment:           fallbackAssessment(summary, parseFailedFlag),
		VerificationApproach: []string{manualReviewAdvice},
	}
}

// reportFallback echoes one degraded result per input claim, in input order.
func reportFallback(claims []Claim) ReportAnalysis {
	results := make([]ClaimResult, len(claims))
	for i, c := range claims {
		results[i] = ClaimResult{ID: c.ID, Assessment: fallbackAssessment(incompleteSummary, parseFailedFlag)}
	}
	return ReportAnalysis{
		Claims:           results,
		Relationships:    emptyRelationships(),
		OverallRiskLevel: RiskMedium,
		ReportSummary:    incompleteReportSum,
	}
}

func emptyRelationships() Relationships {
	return Relationships{
		Contradictions:  []Relationship{},
		Supporting:      []Relationship{},
		Duplicates:      []Relationship{},
		Inconsistencies: []Relationship{},
	}
}
