package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintDomain prefixes the hashed trace. The version suffix changes
// whenever the trace line format does.
const FingerprintDomain = "cmdlog/replay-trace/v1"

// Fingerprint hashes trace lines as SHA256(domain + 0x00 + line + "\n" ...).
// Equal traces give equal fingerprints, so two replays can be compared
// without shipping the whole trace.
func Fingerprint(lines []string) string {
	h := sha256.New()
	h.Write([]byte(FingerprintDomain))
	h.Write([]byte{0x00})
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the fingerprint of the applied trace so far.
func (e *Engine) Fingerprint() string {
	return Fingerprint(e.TraceLines())
}
