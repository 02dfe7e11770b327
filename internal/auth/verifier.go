package auth

import (
	"aggregat4/coffeeshop/internal/logging"
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims of a provider issued access token. The permissions
// claim is filled by the provider's RBAC settings for the API.
type Claims struct {
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type KeyProvider interface {
	Key(ctx context.Context, kid string) (any, error)
}

// Verifier checks RS256 access tokens against the provider's keys.
type Verifier struct {
	keys     KeyProvider
	issuer   string
	audience string
}

func NewVerifier(keys KeyProvider, issuer, audience string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, audience: audience}
}

// Verify returns the claims of a valid token. Token problems are reported as
// *AuthError; failures to obtain the signing keys are returned as is.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	if err != nil {
		return nil, unauthorized(CodeInvalidHeader, "Error decoding token headers.")
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, unauthorized(CodeInvalidHeader, "Authorization malformed.")
	}
	key, err := v.keys.Key(ctx, kid)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, unauthorized(CodeInvalidHeader, "Unable to find the appropriate key.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading signing key")
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, unauthorized(CodeTokenExpired, "Token expired.")
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, unauthorized(CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer.")
	default:
		logging.Debug(logger, "Token rejected: {Error}", err)
		return nil, unauthorized(CodeInvalidHeader, "Unable to parse authentication token.")
	}
}

// CheckPermissions requires the permission to be listed in the token.
func CheckPermissions(permission string, claims *Claims) error {
	if claims == nil || claims.Permissions == nil {
		return unauthorized(CodeAccessDenied, "Any permissions not in token")
	}
	if !slices.Contains(claims.Permissions, permission) {
		return unauthorized(CodeAccessDenied, "Permission not found this action")
	}
	return nil
}
