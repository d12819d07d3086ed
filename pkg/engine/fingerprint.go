package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Fingerprint identifies a finding by kind and subject. Subjects use
// root-relative paths so the value survives moving the checkout.
func Fingerprint(kind string, subject ...string) string {
	h := blake3.New()
	h.Write([]byte(kind))
	for _, s := range subject {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// Digest hashes the canonical JSON form of r with its Digest field
// cleared. Map keys are sorted by encoding/json and every slice in the
// report is built in a fixed order.
func Digest(r *Report) (string, error) {
	saved := r.Digest
	r.Digest = ""
	data, err := json.Marshal(r)
	r.Digest = saved
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
