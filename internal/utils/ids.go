package util

import (
	"crypto/rand"
	"encoding/hex"
)

// ShortID returns 10 lowercase hex characters from 5 random bytes.
func ShortID() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// IsShortID reports whether s has the ShortID format.
func IsShortID(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
