package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minScore     = 1
	maxScore     = 10
	neutralScore = 5
)

// Score is a 1 to 10 rating. Models sometimes answer with floats or quoted
// numbers, so decoding accepts both and rounds to the nearest integer.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = scoreFrom(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "/10"))
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("score %q is not numeric", str)
	}
	*s = scoreFrom(f)
	return nil
}

// scoreFrom rounds f, bounding it first so huge values cannot overflow the
// int conversion. NaN counts as absent.
func scoreFrom(f float64) Score {
	switch {
	case math.IsNaN(f):
		return 0
	case f > maxScore:
		return maxScore
	case f < -maxScore:
		return -maxScore
	}
	return Score(math.Round(f))
}

// normalize clamps s into range. A zero score means the model left the
// field out and maps to the neutral midpoint.
func (s Score) normalize() Score {
	switch {
	case s == 0:
		return neutralScore
	case s < minScore:
		return minScore
	case s > maxScore:
		return maxScore
	}
	return s
}

// RiskLevel is one of Low, Medium or High.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// normalize maps model spellings onto the three canonical levels.
// Anything unrecognised becomes Medium.
func (r RiskLevel) normalize() RiskLevel {
	switch strings.ToLower(strings.TrimSpace(string(r))) {
	case "low", "minimal", "minor":
		return RiskLow
	case "high", "critical", "severe":
		return RiskHigh
	default:
		return RiskMedium
	}
}

// IDList is a list of claim ids. Numeric ids are accepted and kept in their
// decimal form.
type IDList []string

func (l *IDList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("claimIds: %w", err)
	}
	out := make(IDList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("claimIds: unsupported id %s", item)
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}
