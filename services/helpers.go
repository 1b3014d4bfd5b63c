package services

import (
	"crypto/rand"
	"encoding/hex"
)

// generateRandomToken returns a hex token of length chars.
func generateRandomToken(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)[:length]
}
