package auth

import (
	"context"
	"net/http"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services/auth"
	"strings"
	"time"
)

const (
	AUTH_TOKEN_PREFIX  = "Bearer "
	AUTH_TOKEN_MAX_LEN = 1024

	RESET_PROOF_COOKIE  = "reset_proof"
	RESET_PROOF_MAX_LEN = 4096
)

func ParseToken(r *http.Request) (token user.SessionToken, ok bool) {
	header := r.Header.Get("authorization")
	if header == "" {
		return token, false
	}
	parts := strings.SplitN(header, AUTH_TOKEN_PREFIX, 2)
	if len(parts) != 2 {
		return token, false
	}
	if len(parts[1]) > AUTH_TOKEN_MAX_LEN {
		return token, false
	}
	return user.SessionToken(parts[1]), true
}

func SetAuthTokenToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ParseToken(r)
		if ok {
			ctx := context.WithValue(r.Context(), auth.CONTEXT_AUTH_TOKEN_KEY, token)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// SetResetProofCookie keeps the verification proof off the URL for the
// follow-up set-password request.
func SetResetProofCookie(rw http.ResponseWriter, proof user.ResetProof, lifetime time.Duration) {
	http.SetCookie(rw, &http.Cookie{
		Name:     RESET_PROOF_COOKIE,
		Value:    string(proof),
		Path:     "/auth/password_reset",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearResetProofCookie(rw http.ResponseWriter) {
	http.SetCookie(rw, &http.Cookie{
		Name:     RESET_PROOF_COOKIE,
		Value:    "",
		Path:     "/auth/password_reset",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ParseResetProofCookie(r *http.Request) (proof user.ResetProof, ok bool) {
	cookie, err := r.Cookie(RESET_PROOF_COOKIE)
	if err != nil || cookie.Value == "" {
		return proof, false
	}
	if len(cookie.Value) > RESET_PROOF_MAX_LEN {
		return proof, false
	}
	return user.ResetProof(cookie.Value), true
}
