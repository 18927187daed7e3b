package resettoken

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"resetme/internal/core/domain/user"
)

// tokenBytes gives 256 bits of entropy, double the floor required for a
// token that must stay unguessable for its whole validity window.
const tokenBytes = 32

// Generator produces opaque URL-safe reset tokens from the OS entropy
// source. Generation fails only when that source does, which is fatal for
// the process anyway.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) GenerateResetToken() (user.ResetToken, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return user.ResetToken(""), fmt.Errorf("could not read from entropy source: %w", err)
	}
	return user.ResetToken(base64.RawURLEncoding.EncodeToString(b)), nil
}
