package main

import (
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/pkg/crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"flag"
	"os"
	"path/filepath"
)

// createkey writes an RSA key pair and a matching JWKS document. Point
// auth.jwksurl at file://<dir>/jwks.json to verify tokens from minttoken.
func main() {
	var dir, kid string
	flag.StringVar(&dir, "dir", ".", "Directory the key files are written to")
	flag.StringVar(&kid, "kid", "local-dev", "Key id published in the key set")
	flag.Parse()

	logger := logging.ForComponent("cmd.createkey")

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		logging.Fatal(logger, "Error generating key: {Error}", err)
	}
	// Store private key in PEM file
	privateBlock := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)}
	if err := os.WriteFile(filepath.Join(dir, "private.pem"), pem.EncodeToMemory(privateBlock), 0o600); err != nil {
		logging.Fatal(logger, "Error writing private key: {Error}", err)
	}
	// Store public key in PEM file
	publicBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		logging.Fatal(logger, "Error encoding public key: {Error}", err)
	}
	publicBlock := &pem.Block{Type: "PUBLIC KEY", Bytes: publicBytes}
	if err := os.WriteFile(filepath.Join(dir, "public.pem"), pem.EncodeToMemory(publicBlock), 0o644); err != nil {
		logging.Fatal(logger, "Error writing public key: {Error}", err)
	}

	keySet, err := json.MarshalIndent(crypto.PublicKeySet(&privateKey.PublicKey, kid), "", "  ")
	if err != nil {
		logging.Fatal(logger, "Error encoding key set: {Error}", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jwks.json"), keySet, 0o644); err != nil {
		logging.Fatal(logger, "Error writing key set: {Error}", err)
	}
	logging.Info(logger, "Key pair {Kid} written to {Dir}", kid, dir)
}
