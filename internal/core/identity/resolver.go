// Package identity derives the canonical identity of an artifact.
// Resolution is pure: the same semantic artifact always resolves to the
// same (ticket, agent category, artifact type) tuple regardless of
// superficial title differences.
package identity

import (
	"fmt"
	"regexp"
	"strings"
)

// Known artifact types. Writers should tag artifacts explicitly with one
// of these; title inference exists only for legacy callers.
const (
	TypePlan               = "plan"
	TypeWorklog            = "worklog"
	TypeDecisionLog        = "decision_log"
	TypeVerificationReport = "verification_report"
	TypeQAReport           = "qa_report"
	TypeReview             = "review"
)

// Identity is the canonical identity tuple used for deduplication.
// The display title is deliberately not part of the tuple.
type Identity struct {
	TicketID      string
	AgentCategory string
	ArtifactType  string
}

// ResolveInput carries everything resolution may consider.
type ResolveInput struct {
	TicketID      string
	AgentCategory string
	ArtifactType  string // explicit type; the primary path
	Title         string // inference source when ArtifactType is empty
}

// typeAliases maps normalized spellings to canonical type names.
var typeAliases = map[string]string{
	"plan":                TypePlan,
	"worklog":             TypeWorklog,
	"work_log":            TypeWorklog,
	"decision_log":        TypeDecisionLog,
	"decisions":           TypeDecisionLog,
	"verification_report": TypeVerificationReport,
	"verification":        TypeVerificationReport,
	"qa_report":           TypeQAReport,
	"qa":                  TypeQAReport,
	"review":              TypeReview,
}

// titlePatterns are checked in order; the first match wins. More specific
// phrases come before looser ones ("qa report" before "report").
var titlePatterns = []struct {
	phrase string
	typ    string
}{
	{"decision log", TypeDecisionLog},
	{"decisions", TypeDecisionLog},
	{"work log", TypeWorklog},
	{"worklog", TypeWorklog},
	{"qa report", TypeQAReport},
	{"qa results", TypeQAReport},
	{"verification report", TypeVerificationReport},
	{"verification", TypeVerificationReport},
	{"code review", TypeReview},
	{"review", TypeReview},
	{"plan", TypePlan},
}

// displayIDPrefix matches a leading display-id marker such as
// "TICK-123:", "[TICK-123]" or "TICK-123 -".
var displayIDPrefix = regexp.MustCompile(`^\[?[A-Z]+-\d+\]?\s*[:\-]?\s*`)

// Resolve derives the canonical identity for an artifact write.
// An explicit ArtifactType is the primary path. Title inference is a
// deprecated fallback; when neither yields a known type, resolution
// fails closed and the write must be rejected.
func Resolve(in ResolveInput) (Identity, error) {
	if strings.TrimSpace(in.TicketID) == "" {
		return Identity{}, fmt.Errorf("ticket id is required")
	}
	if strings.TrimSpace(in.AgentCategory) == "" {
		return Identity{}, fmt.Errorf("agent category is required")
	}

	typ, ok := NormalizeType(in.ArtifactType)
	if !ok {
		typ, ok = InferTypeFromTitle(in.Title)
	}
	if !ok {
		return Identity{}, fmt.Errorf("cannot resolve artifact type: no explicit type and title %q matches no known pattern", in.Title)
	}

	return Identity{
		TicketID:      in.TicketID,
		AgentCategory: strings.ToLower(strings.TrimSpace(in.AgentCategory)),
		ArtifactType:  typ,
	}, nil
}

// NormalizeType canonicalizes an explicit type string. Returns false if
// the string is empty or not a known type.
func NormalizeType(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if key == "" {
		return "", false
	}
	typ, ok := typeAliases[key]
	return typ, ok
}

// InferTypeFromTitle guesses the artifact type from a human-readable
// title, e.g. "Plan for ticket TICK-42" infers "plan".
//
// Deprecated: explicit type tagging at write time is the supported path;
// this fallback exists for writers that predate it.
func InferTypeFromTitle(title string) (string, bool) {
	normalized := NormalizeTitle(title)
	for _, p := range titlePatterns {
		if strings.Contains(normalized, p.phrase) {
			return p.typ, true
		}
	}
	return "", false
}

// NormalizeTitle strips display-id prefixes, trailing punctuation, and
// casing noise so that pattern matching sees the bare phrase.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	t = displayIDPrefix.ReplaceAllString(t, "")
	t = strings.ToLower(t)
	t = strings.TrimRight(t, " .!:;-")
	return t
}

// KnownTypes returns the canonical artifact type names.
func KnownTypes() []string {
	return []string{
		TypePlan,
		TypeWorklog,
		TypeDecisionLog,
		TypeVerificationReport,
		TypeQAReport,
		TypeReview,
	}
}
