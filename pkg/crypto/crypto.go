package crypto

import (
	"crypto/rsa"
	"os"

	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

func ReadRSAPrivateKey(filename string) (*rsa.PrivateKey, error) {
	privateKeyFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(privateKeyFile)
}

func ReadRSAPublicKey(filename string) (*rsa.PublicKey, error) {
	publicKeyFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(publicKeyFile)
}

// PublicKeySet wraps a public key in a JWKS document usable for RS256
// signature verification.
func PublicKeySet(publicKey *rsa.PublicKey, keyId string) jose.JSONWebKeySet {
	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       publicKey,
			KeyID:     keyId,
			Use:       "sig",
			Algorithm: "RS256",
		}},
	}
}

// SignRS256 signs the claims and sets the kid header.
func SignRS256(privateKey *rsa.PrivateKey, keyId string, claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = keyId
	return t.SignedString(privateKey)
}
