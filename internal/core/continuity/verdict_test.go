package continuity

import "testing"

func matchingBaseline() Baseline {
	return Baseline{
		ContentChecksum:     "c1",
		BundleChecksum:      "b1",
		RequirementsDocID:   "REQ-9",
		RequirementsVersion: 2,
	}
}

func matchingRebuilt() Rebuilt {
	return Rebuilt{
		ContentChecksum:     "c1",
		BundleChecksum:      "b1",
		RequirementsDocID:   "REQ-9",
		RequirementsVersion: 2,
		RequirementsPresent: true,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		baseline    Baseline
		mutate      func(*Rebuilt)
		wantVerdict string
		wantReason  string
	}{
		{
			name:        "everything matches",
			baseline:    matchingBaseline(),
			mutate:      func(r *Rebuilt) {},
			wantVerdict: VerdictPass,
		},
		{
			name:        "content checksum differs",
			baseline:    matchingBaseline(),
			mutate:      func(r *Rebuilt) { r.ContentChecksum = "c2" },
			wantVerdict: VerdictFail,
			wantReason:  ReasonChecksumMismatch,
		},
		{
			name:        "bundle checksum differs",
			baseline:    matchingBaseline(),
			mutate:      func(r *Rebuilt) { r.BundleChecksum = "b2" },
			wantVerdict: VerdictFail,
			wantReason:  ReasonChecksumMismatch,
		},
		{
			name:     "expected reference absent",
			baseline: matchingBaseline(),
			mutate: func(r *Rebuilt) {
				r.RequirementsPresent = false
				r.RequirementsDocID = ""
				r.RequirementsVersion = 0
			},
			wantVerdict: VerdictFail,
			wantReason:  ReasonMissingManifestReference,
		},
		{
			name:        "reference present with stale version",
			baseline:    matchingBaseline(),
			mutate:      func(r *Rebuilt) { r.RequirementsVersion = 3 },
			wantVerdict: VerdictFail,
			wantReason:  ReasonArtifactVersionMismatch,
		},
		{
			name:        "reference present with different doc id",
			baseline:    matchingBaseline(),
			mutate:      func(r *Rebuilt) { r.RequirementsDocID = "REQ-10" },
			wantVerdict: VerdictFail,
			wantReason:  ReasonArtifactVersionMismatch,
		},
		{
			name: "checksum mismatch takes precedence over missing reference",
			baseline: matchingBaseline(),
			mutate: func(r *Rebuilt) {
				r.ContentChecksum = "c2"
				r.RequirementsPresent = false
			},
			wantVerdict: VerdictFail,
			wantReason:  ReasonChecksumMismatch,
		},
		{
			name: "missing reference takes precedence over version mismatch",
			baseline: matchingBaseline(),
			mutate: func(r *Rebuilt) {
				r.RequirementsPresent = false
				r.RequirementsVersion = 99
			},
			wantVerdict: VerdictFail,
			wantReason:  ReasonMissingManifestReference,
		},
		{
			name: "no upstream reference expected",
			baseline: Baseline{
				ContentChecksum: "c1",
				BundleChecksum:  "b1",
			},
			mutate: func(r *Rebuilt) {
				r.RequirementsPresent = false
				r.RequirementsDocID = ""
				r.RequirementsVersion = 0
			},
			wantVerdict: VerdictPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rebuilt := matchingRebuilt()
			tt.mutate(&rebuilt)

			got := Classify(tt.baseline, rebuilt)
			if got.Verdict != tt.wantVerdict {
				t.Fatalf("verdict = %s, want %s", got.Verdict, tt.wantVerdict)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_ComparisonDetail(t *testing.T) {
	rebuilt := matchingRebuilt()
	rebuilt.ContentChecksum = "c2"

	got := Classify(matchingBaseline(), rebuilt)
	if got.Comparison.ContentMatch {
		t.Error("expected content mismatch in comparison detail")
	}
	if !got.Comparison.BundleMatch {
		t.Error("expected bundle match in comparison detail")
	}
	if !got.Comparison.RefExpected || !got.Comparison.RefPresent {
		t.Error("expected reference flags set in comparison detail")
	}
}

func TestDegenerateOutcomes(t *testing.T) {
	if got := RebuildFailed(); got.Verdict != VerdictFail || got.Reason != ReasonChecksumMismatch {
		t.Errorf("RebuildFailed() = %+v", got)
	}
	if got := MissingReceipt(); got.Verdict != VerdictFail || got.Reason != ReasonMissingReceipt {
		t.Errorf("MissingReceipt() = %+v", got)
	}
}
