package main

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/internal/environment"
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/pkg/crypto"
	"aggregat4/coffeeshop/pkg/lang"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minttoken signs a development access token with the key from createkey.
func main() {
	env := environment.Current()
	var keyFile, kid, permissions, subject, issuer, audience string
	var validity time.Duration
	flag.StringVar(&keyFile, "key", "private.pem", "PEM encoded RSA private key")
	flag.StringVar(&kid, "kid", "local-dev", "Key id written to the token header")
	flag.StringVar(&permissions, "permissions", "get:drinks-detail", "Comma separated permissions")
	flag.StringVar(&subject, "subject", "auth0|local-barista", "Subject claim")
	flag.StringVar(&issuer, "issuer", "", "Issuer claim, defaults to the environment's identity provider")
	flag.StringVar(&audience, "audience", "", "Audience claim, defaults to the environment's audience")
	flag.DurationVar(&validity, "validity", time.Hour, "How long the token stays valid")
	flag.Parse()

	logger := logging.ForComponent("cmd.minttoken")

	privateKey, err := crypto.ReadRSAPrivateKey(keyFile)
	if err != nil {
		logging.Fatal(logger, "Error reading private key: {Error}", err)
	}
	granted := []string{}
	for _, permission := range strings.Split(permissions, ",") {
		if permission = strings.TrimSpace(permission); permission != "" {
			granted = append(granted, permission)
		}
	}
	now := time.Now()
	token, err := crypto.SignRS256(privateKey, kid, &auth.Claims{
		Permissions: granted,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    lang.Coalesce(issuer, env.Issuer()),
			Audience:  jwt.ClaimStrings{lang.Coalesce(audience, env.Auth.Audience)},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})
	if err != nil {
		logging.Fatal(logger, "Error signing token: {Error}", err)
	}
	fmt.Println(token)
}
