package gtls

import (
	"crypto/hmac"
	"crypto/sha256"
)

// prf is the TLS 1.2 pseudo-random function with SHA-256 (RFC 5246 section 5).
func prf(secret []byte, label string, seed []byte, n int) []byte {
	labelSeed := make([]byte, 0, len(label)+len(seed))
	labelSeed = append(labelSeed, label...)
	labelSeed = append(labelSeed, seed...)

	mac := hmac.New(sha256.New, secret)
	out := make([]byte, 0, n+sha256.Size)

	// A(0) = seed, A(i) = HMAC(secret, A(i-1))
	a := labelSeed
	for len(out) < n {
		mac.Reset()
		mac.Write(a)
		a = mac.Sum(nil)

		mac.Reset()
		mac.Write(a)
		mac.Write(labelSeed)
		out = mac.Sum(out)
	}
	return out[:n]
}

func hmacSHA256(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}
