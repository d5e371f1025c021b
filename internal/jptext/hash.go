package jptext

import "strconv"

// IdentityHash returns a short, stable fingerprint of the normalized text,
// used as the dedupe key for sentence candidates. DJB2-style 32-bit
// accumulation rendered in base 36; collisions are accepted as unlikely.
func IdentityHash(text string) string {
	h := uint32(5381)
	for _, r := range NormalizeForIdentity(text) {
		h = h*33 + uint32(r)
	}
	return strconv.FormatUint(uint64(h), 36)
}
