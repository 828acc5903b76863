package gate

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// HeaderName carries the shared secret on every protected request.
const HeaderName = "X-API-Key"

// ErrUnauthorized is returned for a missing or mismatching credential.
var ErrUnauthorized = errors.New("invalid or missing API key")

// Gate holds the single configured secret.
type Gate struct {
	secret []byte
}

// New returns a Gate accepting exactly secret.
func New(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authorize compares credential with the secret in constant time. An empty
// credential is treated like a wrong one.
func (g *Gate) Authorize(credential string) bool {
	if credential == "" || len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), g.secret) == 1
}

// Check is Authorize returning ErrUnauthorized on rejection.
func (g *Gate) Check(credential string) error {
	if !g.Authorize(credential) {
		return ErrUnauthorized
	}
	return nil
}

// Middleware rejects requests without a valid X-API-Key header with 403
// before next runs. reject writes the response body.
func (g *Gate) Middleware(reject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r.Header.Get(HeaderName)); err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
