package tenant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// AccessClaims are the JWT claims issued by the authentication service.
// Only the tenant binding is consumed here; token issuance lives elsewhere.
type AccessClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsResolver extracts the tenant identifier from the authenticated
// caller's bearer token. A request without an Authorization header resolves
// to no tenant; a present but unverifiable token is an error.
type ClaimsResolver struct {
	signingKey []byte
}

// NewClaimsResolver creates a resolver that verifies tokens with the given
// HMAC signing key.
func NewClaimsResolver(signingKey []byte) *ClaimsResolver {
	return &ClaimsResolver{signingKey: signingKey}
}

func (r *ClaimsResolver) Resolve(req *http.Request) (string, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidToken
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return r.signingKey, nil
	})
	if err != nil || !token.Valid {
		return "", errors.Join(ErrInvalidToken, err)
	}

	return claims.TenantID, nil
}
