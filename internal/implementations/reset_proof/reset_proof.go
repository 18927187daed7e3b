package resetproof

import (
	"fmt"
	"resetme/internal/core/domain/user"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT issues the proof of verification as a signed HS256 token wrapping the
// raw reset token. The browser-held artifact is therefore tamper-evident and
// expires on its own, independently of the reset token TTL.
type JWT struct {
	secretKey []byte
	lifetime  time.Duration
}

type proofClaims struct {
	ResetToken string `json:"rst"`
	jwt.RegisteredClaims
}

func NewJWT(secretKey string, lifetime time.Duration) *JWT {
	if lifetime <= 0 {
		panic("lifetime must be positive")
	}
	return &JWT{secretKey: []byte(secretKey), lifetime: lifetime}
}

func (s *JWT) Issue(u user.User, token user.ResetToken, now time.Time) (user.ResetProof, error) {
	claims := proofClaims{
		ResetToken: string(token),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return user.ResetProof(""), err
	}
	return user.ResetProof(signed), nil
}

func (s *JWT) Resolve(proof user.ResetProof, now time.Time) (user.ResetToken, error) {
	claims := &proofClaims{}
	_, err := jwt.ParseWithClaims(
		string(proof),
		claims,
		func(t *jwt.Token) (interface{}, error) { return s.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return user.ResetToken(""), user.ErrResetProofInvalid
	}
	if claims.ResetToken == "" {
		return user.ResetToken(""), user.ErrResetProofInvalid
	}
	return user.ResetToken(claims.ResetToken), nil
}
