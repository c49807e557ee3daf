package foreignlog

import "encoding/base64"

// maxLegacyHashBytes mirrors spec.md's "key.hash_bytes[0..32]": only
// the first 32 bytes of the hash participate in the legacy string,
// regardless of how many the foreign format actually carried.
const maxLegacyHashBytes = 32

// DefaultKeyFormatter renders a foreign key as the legacy multihash-
// style string "%<base64-hash>.<algorithm>". spec.md leaves this
// conversion's exact bytes unspecified (a pluggable collaborator); this
// is one reasonable, stable choice, overridable via WithKeyFormatter.
func DefaultKeyFormatter(hash []byte, algorithm string) string {
	if len(hash) > maxLegacyHashBytes {
		hash = hash[:maxLegacyHashBytes]
	}
	return "%" + base64.StdEncoding.EncodeToString(hash) + "." + algorithm
}
