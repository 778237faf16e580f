package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const minTokenBytes = 16

// RandomTokenGenerator issues opaque session tokens. Size is the entropy in
// bytes and is raised to at least 16.
type RandomTokenGenerator struct {
	Size   int
	Prefix string
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = 32
	}
	if size < minTokenBytes {
		size = minTokenBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: token entropy: %w", err)
	}
	return g.Prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
