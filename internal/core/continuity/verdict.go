// Package continuity contains the pure comparison logic for continuity
// checks: given a baseline receipt and a rebuilt bundle's checksums and
// upstream references, classify the outcome. All store and builder I/O
// lives in the application layer.
package continuity

// Verdict values for a continuity check run.
const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

// Failure reasons. Precedence when several hold at once:
// checksum_mismatch > missing_manifest_reference >
// artifact_version_mismatch > missing_receipt. Content divergence is a
// stronger non-determinism signal than a missing or stale reference.
const (
	ReasonChecksumMismatch         = "checksum_mismatch"
	ReasonMissingManifestReference = "missing_manifest_reference"
	ReasonArtifactVersionMismatch  = "artifact_version_mismatch"
	ReasonMissingReceipt           = "missing_receipt"
)

// Baseline is the immutable receipt state a rebuild is compared
// against. An empty RequirementsDocID means the baseline bound no
// upstream requirements document.
type Baseline struct {
	ContentChecksum     string
	BundleChecksum      string
	RequirementsDocID   string
	RequirementsVersion int
}

// Rebuilt captures what the fresh rebuild produced.
type Rebuilt struct {
	ContentChecksum     string
	BundleChecksum      string
	RequirementsDocID   string
	RequirementsVersion int
	RequirementsPresent bool
}

// Comparison is the structured field-by-field result persisted with
// every check run.
type Comparison struct {
	ContentMatch    bool `json:"content_match"`
	BundleMatch     bool `json:"bundle_match"`
	RefExpected     bool `json:"ref_expected"`
	RefPresent      bool `json:"ref_present"`
	RefVersionMatch bool `json:"ref_version_match"`
}

// Outcome is the classified result of a comparison.
type Outcome struct {
	Verdict    string
	Reason     string // empty on PASS
	Comparison Comparison
}

// Classify compares a rebuild against its baseline and returns the
// verdict with the highest-precedence failure reason.
func Classify(baseline Baseline, rebuilt Rebuilt) Outcome {
	cmp := Comparison{
		ContentMatch: baseline.ContentChecksum == rebuilt.ContentChecksum,
		BundleMatch:  baseline.BundleChecksum == rebuilt.BundleChecksum,
		RefExpected:  baseline.RequirementsDocID != "",
	}

	if cmp.RefExpected {
		cmp.RefPresent = rebuilt.RequirementsPresent
		cmp.RefVersionMatch = rebuilt.RequirementsPresent &&
			rebuilt.RequirementsDocID == baseline.RequirementsDocID &&
			rebuilt.RequirementsVersion == baseline.RequirementsVersion
	} else {
		cmp.RefPresent = rebuilt.RequirementsPresent
		cmp.RefVersionMatch = true
	}

	if !cmp.ContentMatch || !cmp.BundleMatch {
		return Outcome{Verdict: VerdictFail, Reason: ReasonChecksumMismatch, Comparison: cmp}
	}
	if cmp.RefExpected && !cmp.RefPresent {
		return Outcome{Verdict: VerdictFail, Reason: ReasonMissingManifestReference, Comparison: cmp}
	}
	if cmp.RefExpected && !cmp.RefVersionMatch {
		return Outcome{Verdict: VerdictFail, Reason: ReasonArtifactVersionMismatch, Comparison: cmp}
	}

	return Outcome{Verdict: VerdictPass, Comparison: cmp}
}

// RebuildFailed is the degenerate outcome for a rebuild that never
// produced a bundle (builder error or unreachable). It is classified as
// a checksum mismatch: nothing comparable was produced.
func RebuildFailed() Outcome {
	return Outcome{Verdict: VerdictFail, Reason: ReasonChecksumMismatch}
}

// MissingReceipt is the outcome when no baseline receipt exists for the
// requested target. The builder is never invoked in this case.
func MissingReceipt() Outcome {
	return Outcome{Verdict: VerdictFail, Reason: ReasonMissingReceipt}
}
