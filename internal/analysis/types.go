package analysis

// Claim is one statement submitted for multi-claim analysis.
type Claim struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// ClaimRequest is the input of a single-claim analysis.
type ClaimRequest struct {
	ClaimText   string
	CompanyName string
	Sector      string
}

// ReportRequest is the input of a multi-claim analysis.
type ReportRequest struct {
	Claims      []Claim `json:"claims" yaml:"claims"`
	CompanyName string  `json:"companyName" yaml:"companyName"`
	Sector      string  `json:"sector" yaml:"sector"`
}

// Assessment holds the per-claim judgement shared by both analyzers.
type Assessment struct {
	ClaimType          string    `json:"claimType"`
	SpecificityScore   Score     `json:"specificityScore"`
	VerifiabilityScore Score     `json:"verifiabilityScore"`
	KeyMetrics         []string  `json:"keyMetrics"`
	RedFlags           []string  `json:"redFlags"`
	RiskLevel          RiskLevel `json:"riskLevel"`
	Summary            string    `json:"summary"`
}

// ClaimAnalysis is the result of a single-claim analysis.
type ClaimAnalysis struct {
	Assessment
	VerificationApproach []string `json:"verificationApproach"`
}

// ClaimResult is one per-claim entry of a report analysis.
type ClaimResult struct {
	ID string `json:"id"`
	Assessment
}

// Relationship links two or more claims of the same request.
type Relationship struct {
	ClaimIDs    IDList    `json:"claimIds"`
	Description string    `json:"description"`
	Severity    RiskLevel `json:"severity,omitempty"`
}

// Relationships groups cross-claim findings by category.
type Relationships struct {
	Contradictions  []Relationship `json:"contradictions"`
	Supporting      []Relationship `json:"supporting"`
	Duplicates      []Relationship `json:"duplicates"`
	Inconsistencies []Relationship `json:"inconsistencies"`
}

// ReportAnalysis is the result of a multi-claim analysis.
type ReportAnalysis struct {
	Claims           []ClaimResult `json:"claims"`
	Relationships    Relationships `json:"relationships"`
	OverallRiskLevel RiskLevel     `json:"overallRiskLevel"`
	ReportSummary    string        `json:"reportSummary"`
}

// ClaimOutcome pairs a single-claim analysis with how it was obtained.
type ClaimOutcome struct {
	Analysis       ClaimAnalysis
	Interpretation Interpretation
	Model          string
}

// ReportOutcome pairs a report analysis with how it was obtained.
type ReportOutcome struct {
	Analysis       ReportAnalysis
	Interpretation Interpretation
	Model          string
}
