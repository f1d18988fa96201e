// Package validation gates artifact content before any write. The gate
// is substance-aware: length thresholds vary by artifact type, and
// placeholder tokens are tolerated inside otherwise-substantive
// structured content.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/tether/internal/core/identity"
)

// Result represents the outcome of a content validation.
type Result struct {
	Valid  bool
	Reason string
}

// Error converts the result to an error if invalid.
func (r Result) Error() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// minLengths holds the per-type minimum content length in characters.
// Short-form artifacts (decision logs) have small thresholds; structured
// reports (QA output) have large ones.
var minLengths = map[string]int{
	identity.TypeDecisionLog:        40,
	identity.TypeWorklog:            60,
	identity.TypePlan:               100,
	identity.TypeReview:             100,
	identity.TypeVerificationReport: 150,
	identity.TypeQAReport:           200,
}

// defaultMinLength applies to types without an explicit threshold.
const defaultMinLength = 60

// placeholderPhrases is the denylist of contents that indicate an
// unfilled template rather than real output. Matched against the
// lowercased body.
var placeholderPhrases = []string{
	"tbd",
	"todo",
	"(none)",
	"n/a",
	"to be determined",
	"placeholder",
	"fill in",
	"coming soon",
}

var (
	templateToken = regexp.MustCompile(`(\[[A-Z_ ]+\]|\{\{[^}]*\}\}|<[A-Z_]+>)`)
	tableRow      = regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`)
	codeFence     = regexp.MustCompile("(?m)^```")
	headingLine   = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// MinLength returns the minimum content length for an artifact type.
func MinLength(artifactType string) int {
	if n, ok := minLengths[artifactType]; ok {
		return n
	}
	return defaultMinLength
}

// Validate decides whether candidate content may be written for the
// given artifact type. Rejected content must never reach the store.
func Validate(artifactType, content string) Result {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{Valid: false, Reason: "content is empty or whitespace-only"}
	}

	min := MinLength(artifactType)
	if len(trimmed) < min {
		return Result{
			Valid:  false,
			Reason: fmt.Sprintf("content length %d below minimum %d for type %s", len(trimmed), min, artifactType),
		}
	}

	if hasPlaceholder(trimmed) && !HasStructuralSubstance(trimmed) {
		return Result{Valid: false, Reason: "content matches placeholder pattern without structural substance"}
	}

	return Result{Valid: true}
}

// IsBlank reports whether stored content should be treated as an empty
// shell row during upsert reconciliation.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// hasPlaceholder reports whether the content contains a denylisted
// placeholder phrase or a bracketed template token.
func hasPlaceholder(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return templateToken.MatchString(content)
}

// HasStructuralSubstance reports whether the content carries structured
// sections that justify tolerating placeholder-like tokens: a heading
// followed by body text, a table, or a code fence. Structured reports
// legitimately contain short "N/A"-style cells.
func HasStructuralSubstance(content string) bool {
	if tableRow.MatchString(content) {
		return true
	}
	if codeFence.MatchString(content) {
		return true
	}
	return headingWithBody(content)
}

// headingWithBody reports whether any markdown heading is followed by a
// non-empty, non-heading line before the next heading.
func headingWithBody(content string) bool {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !headingLine.MatchString(line) {
			continue
		}
		for _, next := range lines[i+1:] {
			trimmed := strings.TrimSpace(next)
			if trimmed == "" {
				continue
			}
			if headingLine.MatchString(next) {
				break
			}
			return true
		}
	}
	return false
}
