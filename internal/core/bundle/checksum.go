package bundle

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Checksums are hex-encoded BLAKE3 keyed digests. Keyed hashing gives
// domain separation: the content digest and the bundle digest of the
// same bytes can never collide. The keys are fixed constants — changing
// them invalidates every stored receipt. The byte values are the ASCII
// encoding of the domain name, zero-padded to 32 bytes, so they stay
// inspectable in hex dumps.
var (
	contentDomainKey = [32]byte{
		't', 'e', 't', 'h', 'e', 'r', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	bindingDomainKey = [32]byte{
		't', 'e', 't', 'h', 'e', 'r', '.', 'b', 'u', 'n', 'd', 'l', 'e', '.',
		'b', 'i', 'n', 'd', 'i', 'n', 'g', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// ContentChecksum digests the bundle's substantive content only. Two
// bundles with identical content but different bindings share a content
// checksum.
func ContentChecksum(b *Bundle) string {
	return keyedDigest(contentDomainKey, CanonicalContent(b))
}

// BundleChecksum digests the canonical content plus the binding
// metadata. It changes whenever the binding changes, even with
// identical content — the "right content, wrong context" detector.
func BundleChecksum(b *Bundle) string {
	payload := append(CanonicalContent(b), CanonicalBinding(b.Binding)...)
	return keyedDigest(bindingDomainKey, payload)
}

func keyedDigest(key [32]byte, data []byte) string {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("bundle: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
