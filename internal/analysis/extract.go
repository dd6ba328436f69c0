package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Stage names the extraction rule that produced the JSON candidate.
type Stage string

const (
	// StageFenced is a ```json fenced block.
	StageFenced Stage = "fenced"
	// StageBraces is the span from the first '{' to the last '}'.
	StageBraces Stage = "braces"
	// StageRaw is the whole response, used when neither rule matched.
	StageRaw Stage = "raw"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\n?(.*?)\\n?```")
	bracedJSON = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls a JSON candidate out of free-form model text. The first
// ```json fenced block wins; otherwise the greedy span from the first '{' to
// the last '}'; otherwise the whole content.
func ExtractJSON(content string) (string, Stage) {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		if m[1] != "" {
			return m[1], StageFenced
		}
		return m[0], StageFenced
	}
	if m := bracedJSON.FindString(content); m != "" {
		return m, StageBraces
	}
	return content, StageRaw
}

// InterpretationKind tags how a model response was turned into a result.
type InterpretationKind string

const (
	// KindStructured means the response parsed into the expected object.
	KindStructured InterpretationKind = "structured"
	// KindFallback means parsing failed and a degraded default was used.
	KindFallback InterpretationKind = "fallback"
)

// Interpretation records whether an analysis came from the model's JSON or
// from the deterministic fallback, and why.
type Interpretation struct {
	Kind   InterpretationKind `json:"kind"`
	Stage  Stage              `json:"stage,omitempty"`
	Reason string             `json:"reason,omitempty"`
}

// Structured reports whether the model output was used.
func (i Interpretation) Structured() bool {
	return i.Kind == KindStructured
}

func fallbackBecause(stage Stage, format string, args ...any) Interpretation {
	return Interpretation{Kind: KindFallback, Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// interpret extracts and decodes a JSON object of type T from content.
// The returned value is only meaningful when the interpretation is
// structured.
func interpret[T any](content string) (T, Interpretation) {
	var v T
	if strings.TrimSpace(content) == "" {
		return v, fallbackBecause("", "empty model response")
	}

	candidate, stage := ExtractJSON(content)
	if !strings.HasPrefix(strings.TrimSpace(candidate), "{") {
		return v, fallbackBecause(stage, "model response contains no JSON object")
	}
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		var zero T
		return zero, fallbackBecause(stage, "model response is not valid JSON: %v", err)
	}
	return v, Interpretation{Kind: KindStructured, Stage: stage}
}
