package analysis

import "strings"

func (a Assessment) normalized() Assessment {
	if strings.TrimSpace(a.ClaimType) == "" {
		a.ClaimType = unknownClaimType
	}
	a.SpecificityScore = a.SpecificityScore.normalize()
	a.VerifiabilityScore = a.VerifiabilityScore.normalize()
	a.KeyMetrics = nonNil(a.KeyMetrics)
	a.RedFlags = nonNil(a.RedFlags)
	a.RiskLevel = a.RiskLevel.normalize()
	return a
}

func (c ClaimAnalysis) normalized() ClaimAnalysis {
	c.Assessment = c.Assessment.normalized()
	c.VerificationApproach = nonNil(c.VerificationApproach)
	return c
}

// reconcileStats counts the corrections applied to a model report.
type reconcileStats struct {
	filled          int
	droppedResults  int
	droppedFindings int
}

func (s reconcileStats) changed() bool {
	return s.filled > 0 || s.droppedResults > 0 || s.droppedFindings > 0
}

// reconcile aligns a parsed report with the claims that were sent. Results
// come back in request order with exactly one entry per claim: results for
// unknown ids are dropped, results without an id are matched by position,
// and claims the model skipped get a fallback entry. Relationship findings
// keep only ids from the request and need at least two of them.
func (r ReportAnalysis) reconcile(claims []Claim) (ReportAnalysis, reconcileStats) {
	var stats reconcileStats

	index := make(map[string]int, len(claims))
	for i, c := range claims {
		index[c.ID] = i
	}

	matched := make([]*ClaimResult, len(claims))
	var unnamed []int
	for i := range r.Claims {
		res := r.Claims[i]
		if res.ID == "" {
			unnamed = append(unnamed, i)
			continue
		}
		pos, ok := index[res.ID]
		if !ok || matched[pos] != nil {
			stats.droppedResults++
			continue
		}
		matched[pos] = &res
	}
	for _, i := range unnamed {
		if i < len(claims) && matched[i] == nil {
			res := r.Claims[i]
			res.ID = claims[i].ID
			matched[i] = &res
			continue
		}
		stats.droppedResults++
	}

	out := ReportAnalysis{
		Claims:           make([]ClaimResult, len(claims)),
		OverallRiskLevel: r.OverallRiskLevel.normalize(),
		ReportSummary:    r.ReportSummary,
	}
	for i, c := range claims {
		if matched[i] == nil {
			stats.filled++
			out.Claims[i] = ClaimResult{ID: c.ID, Assessment: fallbackAssessment(incompleteSummary, missingResultFlag)}
			continue
		}
		out.Claims[i] = ClaimResult{ID: c.ID, Assessment: matched[i].Assessment.normalized()}
	}

	var dropped int
	out.Relationships.Contradictions, dropped = filterFindings(r.Relationships.Contradictions, index, true)
	stats.droppedFindings += dropped
	out.Relationships.Supporting, dropped = filterFindings(r.Relationships.Supporting, index, false)
	stats.droppedFindings += dropped
	out.Relationships.Duplicates, dropped = filterFindings(r.Relationships.Duplicates, index, false)
	stats.droppedFindings += dropped
	out.Relationships.Inconsistencies, dropped = filterFindings(r.Relationships.Inconsistencies, index, false)
	stats.droppedFindings += dropped

	return out, stats
}

// filterFindings keeps the known, de-duplicated ids of each finding in the
// order the model listed them and drops findings left with fewer than two.
// Severity only applies to contradictions.
func filterFindings(in []Relationship, known map[string]int, severity bool) ([]Relationship, int) {
	out := make([]Relationship, 0, len(in))
	dropped := 0
	for _, f := range in {
		seen := make(map[string]bool, len(f.ClaimIDs))
		ids := make(IDList, 0, len(f.ClaimIDs))
		for _, id := range f.ClaimIDs {
			if _, ok := known[id]; !ok || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if len(ids) < 2 {
			dropped++
			continue
		}
		f.ClaimIDs = ids
		if severity {
			f.Severity = f.Severity.normalize()
		} else {
			f.Severity = ""
		}
		out = append(out, f)
	}
	return out, dropped
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
