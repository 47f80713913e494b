// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"userhub-service/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	secret   []byte
	issuer   string
	audience string
	Ttl      time.Duration
}

func NewGenerator(secret []byte, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		Ttl:      ttl,
	}
}

// Generate signs a token for the given account id and role. The role must be
// one of the recognized values; unknown roles are rejected, never passed
// through.
func (g *Generator) Generate(subject string, role user.Role) (string, string, error) {
	if len(g.secret) == 0 {
		return "", "", fmt.Errorf("jwt generator has empty signing secret")
	}
	if !role.Valid() {
		return "", "", fmt.Errorf("cannot issue token for unknown role %q", role)
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   subject,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(g.secret)
	return signed, jti, err
}

// GenerateWithTTL issues a token with an explicit lifetime, overriding the
// configured default.
func (g *Generator) GenerateWithTTL(subject string, role user.Role, ttl time.Duration) (string, string, error) {
	tmp := &Generator{
		secret:   g.secret,
		issuer:   g.issuer,
		audience: g.audience,
		Ttl:      ttl,
	}
	return tmp.Generate(subject, role)
}
