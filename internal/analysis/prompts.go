package analysis

import (
	"fmt"
	"strings"
)

const (
	unknownCompany = "Unknown Company"
	unknownSector  = "Unknown Sector"
)

const claimSystemPrompt = `You are an ESG (Environmental, Social, Governance) claim analysis expert for the PHAROS-INTEGRITY platform. Your job is to analyze corporate sustainability claims and identify:

1. **Claim Type**: Categorize the claim (e.g., Carbon Emissions, Renewable Energy, Water Conservation, Biodiversity, Supply Chain, Social Impact, Governance)
2. **Specificity Score** (1-10): How specific and measurable is the claim? Vague promises get low scores.
3. **Verifiability Score** (1-10): Can this claim be verified with satellite data, public records, or third-party audits?
4. **Key Metrics**: Extract any quantifiable targets or metrics mentioned
5. **Red Flags**: Identify potential greenwashing indicators or vague language
6. **Verification Approach**: Suggest data sources to verify (satellite imagery, regulatory filings, etc.)
7. **Risk Level**: Low, Medium, or High risk of being misleading

Be concise and actionable. Focus on what can be verified.`

const claimUserTemplate = `Analyze this ESG claim from %s (%s):

"%s"

Provide your analysis in JSON format with these fields:
{
  "claimType": "string",
  "specificityScore": number,
  "verifiabilityScore": number,
  "keyMetrics": ["string"],
  "redFlags": ["string"],
  "verificationApproach": ["string"],
  "riskLevel": "Low" | "Medium" | "High",
  "summary": "string (2-3 sentences)"
}`

const reportSystemPrompt = `You are an ESG (Environmental, Social, Governance) claim analysis expert for the PHAROS-INTEGRITY platform. You analyze multiple corporate sustainability claims and identify relationships between them.

For EACH claim, analyze:
1. **Claim Type**: Categorize (Carbon Emissions, Renewable Energy, Water Conservation, Biodiversity, Supply Chain, Social Impact, Governance)
2. **Specificity Score** (1-10): How specific and measurable?
3. **Verifiability Score** (1-10): Can be verified with data?
4. **Key Metrics**: Quantifiable targets mentioned
5. **Red Flags**: Greenwashing indicators or vague language
6. **Risk Level**: Low, Medium, or High

For the OVERALL REPORT, analyze claim relationships:
- **Contradictions**: Claims that conflict with each other (e.g., "100% renewable by 2025" vs "expanding coal operations")
- **Supporting**: Claims that reinforce each other
- **Duplicates**: Claims making essentially the same point
- **Inconsistencies**: Timeline or scope mismatches

Be concise and actionable. Focus on cross-claim analysis.`

const reportUserTemplate = `Analyze these ESG claims from %s (%s):

%s

Provide analysis in this JSON format:
{
  "claims": [
    {
      "id": "claim_id_here",
      "claimType": "string",
      "specificityScore": number,
      "verifiabilityScore": number,
      "keyMetrics": ["string"],
      "redFlags": ["string"],
      "riskLevel": "Low" | "Medium" | "High",
      "summary": "string (1-2 sentences)"
    }
  ],
  "relationships": {
    "contradictions": [
      {
        "claimIds": ["id1", "id2"],
        "description": "Why these claims contradict",
        "severity": "High" | "Medium" | "Low"
      }
    ],
    "supporting": [
      {
        "claimIds": ["id1", "id2"],
        "description": "How these claims support each other"
      }
    ],
    "duplicates": [
      {
        "claimIds": ["id1", "id2"],
        "description": "Why these are essentially duplicates"
      }
    ],
    "inconsistencies": [
      {
        "claimIds": ["id1", "id2"],
        "description": "Timeline or scope mismatches"
      }
    ]
  },
  "overallRiskLevel": "Low" | "Medium" | "High",
  "reportSummary": "string (2-3 sentences summarizing the overall claim landscape)"
}`

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// BuildClaimPrompt renders the single-claim prompt. The claim text is
// embedded verbatim.
func BuildClaimPrompt(req ClaimRequest) Prompt {
	return Prompt{
		System: claimSystemPrompt,
		User: fmt.Sprintf(claimUserTemplate,
			orUnknown(req.CompanyName, unknownCompany),
			orUnknown(req.Sector, unknownSector),
			req.ClaimText),
	}
}

// BuildReportPrompt renders the multi-claim prompt.
func BuildReportPrompt(req ReportRequest) Prompt {
	return Prompt{
		System: reportSystemPrompt,
		User: fmt.Sprintf(reportUserTemplate,
			orUnknown(req.CompanyName, unknownCompany),
			orUnknown(req.Sector, unknownSector),
			FormatClaimList(req.Claims)),
	}
}

// FormatClaimList enumerates claims one per paragraph as
// [Claim <n> - ID: <id>]: "<text>".
func FormatClaimList(claims []Claim) string {
	parts := make([]string, len(claims))
	for i, c := range claims {
		parts[i] = fmt.Sprintf("[Claim %d - ID: %s]: \"%s\"", i+1, c.ID, c.Text)
	}
	return strings.Join(parts, "\n\n")
}

func orUnknown(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
