package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsWithIDs(ids ...string) []Claim {
	out := make([]Claim, len(ids))
	for i, id := range ids {
		out[i] = Claim{ID: id, Text: "claim " + id}
	}
	return out
}

func TestReconcileClaims(t *testing.T) {
	filled := "-"
	tests := []struct {
		name        string
		claims      []Claim
		model       string
		wantTypes   []string // by submitted claim; "-" marks a filled entry
		wantFilled  int
		wantDropped int
	}{
		{
			name:        "unknown id dropped and missing claim filled",
			claims:      claimsWithIDs("a", "b"),
			model:       `{"claims":[{"id":"a","claimType":"Water"},{"id":"zz","claimType":"Energy"}]}`,
			wantTypes:   []string{"Water", filled},
			wantFilled:  1,
			wantDropped: 1,
		},
		{
			name:      "submitted order wins and id-less result takes its position",
			claims:    claimsWithIDs("a", "b", "c"),
			model:     `{"claims":[{"id":"c","claimType":"Waste"},{"claimType":"Water"},{"id":"a","claimType":"Energy"}]}`,
			wantTypes: []string{"Energy", "Water", "Waste"},
		},
		{
			name:        "repeated id keeps the first result",
			claims:      claimsWithIDs("a", "b"),
			model:       `{"claims":[{"id":"a","claimType":"Water"},{"id":"a","claimType":"Energy"}]}`,
			wantTypes:   []string{"Water", filled},
			wantFilled:  1,
			wantDropped: 1,
		},
		{
			name:        "id-less result on a taken position is dropped",
			claims:      claimsWithIDs("a", "b"),
			model:       `{"claims":[{"claimType":"Water"},{"id":"a","claimType":"Energy"}]}`,
			wantTypes:   []string{"Energy", filled},
			wantFilled:  1,
			wantDropped: 1,
		},
		{
			name:        "empty model report",
			claims:      claimsWithIDs("a"),
			model:       `{}`,
			wantTypes:   []string{filled},
			wantFilled:  1,
			wantDropped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsed ReportAnalysis
			require.NoError(t, json.Unmarshal([]byte(tt.model), &parsed))

			got, stats := parsed.reconcile(tt.claims)
			require.Len(t, got.Claims, len(tt.claims))
			assert.Equal(t, tt.wantFilled, stats.filled)
			assert.Equal(t, tt.wantDropped, stats.droppedResults)

			for i, c := range tt.claims {
				res := got.Claims[i]
				assert.Equal(t, c.ID, res.ID, "position %d", i)
				if tt.wantTypes[i] == filled {
					assert.Equal(t, unknownClaimType, res.ClaimType)
					assert.Equal(t, []string{"No analysis returned for this claim"}, res.RedFlags)
					assert.Equal(t, "Analysis could not be completed.", res.Summary)
					assert.Equal(t, RiskMedium, res.RiskLevel)
					continue
				}
				assert.Equal(t, tt.wantTypes[i], res.ClaimType, "position %d", i)
				assert.Equal(t, Score(neutralScore), res.SpecificityScore)
				assert.NotNil(t, res.RedFlags)
			}
		})
	}
}

func TestReconcileFindings(t *testing.T) {
	const model = `{
		"claims": [{"id":"a"},{"id":"b"},{"id":"c"}],
		"relationships": {
			"contradictions": [
				{"claimIds":["a","zz"],"description":"refers to an unknown claim","severity":"High"},
				{"claimIds":["b","a","b"],"description":"target years differ","severity":"critical"}
			],
			"supporting": [{"claimIds":["b","c","b"],"description":"same programme","severity":"High"}],
			"duplicates": [{"claimIds":["c","c"],"description":"restated"}],
			"inconsistencies": [{"claimIds":["a","c"],"description":"units differ","severity":"Low"}]
		},
		"overallRiskLevel": "severe"
	}`

	var parsed ReportAnalysis
	require.NoError(t, json.Unmarshal([]byte(model), &parsed))

	got, stats := parsed.reconcile(claimsWithIDs("a", "b", "c"))
	assert.Equal(t, 0, stats.filled)
	assert.Equal(t, 2, stats.droppedFindings)
	assert.Equal(t, RiskHigh, got.OverallRiskLevel)

	assert.Equal(t, []Relationship{{ClaimIDs: IDList{"b", "a"}, Description: "target years differ", Severity: RiskHigh}}, got.Relationships.Contradictions)
	assert.Equal(t, []Relationship{{ClaimIDs: IDList{"b", "c"}, Description: "same programme"}}, got.Relationships.Supporting)
	assert.Empty(t, got.Relationships.Duplicates)
	assert.NotNil(t, got.Relationships.Duplicates)
	assert.Equal(t, []Relationship{{ClaimIDs: IDList{"a", "c"}, Description: "units differ"}}, got.Relationships.Inconsistencies)

	b, err := json.Marshal(got.Relationships)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"contradictions": [{"claimIds":["b","a"],"description":"target years differ","severity":"High"}],
		"supporting": [{"claimIds":["b","c"],"description":"same programme"}],
		"duplicates": [],
		"inconsistencies": [{"claimIds":["a","c"],"description":"units differ"}]
	}`, string(b))
}
