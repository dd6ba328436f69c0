package claimapi

import (
	"bytes"
	"encoding/json"

	"github.com/pharos-integrity/pharos/internal/analysis"
)

// looseString accepts JSON strings and numbers. Any other JSON value decodes
// to the empty string so a wrongly typed field reads as missing instead of
// failing the whole body.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = looseString(n.String())
		return nil
	}
	*s = ""
	return nil
}

type claimBody struct {
	ClaimText   looseString `json:"claimText"`
	CompanyName looseString `json:"companyName"`
	Sector      looseString `json:"sector"`
}

func (b claimBody) request() analysis.ClaimRequest {
	return analysis.ClaimRequest{
		ClaimText:   string(b.ClaimText),
		CompanyName: string(b.CompanyName),
		Sector:      string(b.Sector),
	}
}

type claimsBody struct {
	Claims      json.RawMessage `json:"claims"`
	CompanyName looseString     `json:"companyName"`
	Sector      looseString     `json:"sector"`
}

type claimItem struct {
	ID   looseString `json:"id"`
	Text looseString `json:"text"`
}

// request converts the body into a ReportRequest. A missing, null or
// non-array claims field is reported as ErrClaimsRequired. Array items may
// be {id, text} objects or bare strings.
func (b claimsBody) request() (analysis.ReportRequest, error) {
	req := analysis.ReportRequest{
		CompanyName: string(b.CompanyName),
		Sector:      string(b.Sector),
	}

	raw := bytes.TrimSpace(b.Claims)
	if len(raw) == 0 || raw[0] != '[' {
		return req, analysis.ErrClaimsRequired
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return req, analysis.ErrClaimsRequired
	}

	req.Claims = make([]analysis.Claim, len(items))
	for i, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			req.Claims[i] = analysis.Claim{Text: text}
			continue
		}
		var ci claimItem
		if err := json.Unmarshal(item, &ci); err != nil {
			// Numbers, booleans and nested arrays carry no text and
			// fail validation as "Claim N text is required".
			req.Claims[i] = analysis.Claim{}
			continue
		}
		req.Claims[i] = analysis.Claim{ID: string(ci.ID), Text: string(ci.Text)}
	}
	return req, nil
}
