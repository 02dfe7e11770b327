// Package environment holds the runtime constants of the coffee shop client:
// where the API lives and how to reach the identity provider.
//
// The record is compiled into the binary. The default build carries the
// development record; building with -tags prod carries the production one.
package environment

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Auth describes the identity provider tenant and the registered client.
type Auth struct {
	DomainPrefix string `json:"domainPrefix" yaml:"domainPrefix" koanf:"domainPrefix"`
	Audience     string `json:"audience" yaml:"audience" koanf:"audience"`
	ClientID     string `json:"clientId" yaml:"clientId" koanf:"clientId"`
	CallbackURL  string `json:"callbackUrl" yaml:"callbackUrl" koanf:"callbackUrl"`
}

// Environment is the configuration record shared by the client and the API.
type Environment struct {
	Production   bool   `json:"production" yaml:"production" koanf:"production"`
	APIServerURL string `json:"apiServerUrl" yaml:"apiServerUrl" koanf:"apiServerUrl"`
	Auth         Auth   `json:"auth" yaml:"auth" koanf:"auth"`
}

// Current returns the record selected at build time. The value is a copy;
// changing it does not affect other callers.
func Current() Environment {
	return current
}

// ValidationError lists every problem found in a record.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid environment: " + strings.Join(e.Problems, "; ")
}

// Validate checks that both URLs are absolute http(s) URLs and that no auth
// field is empty.
func (e Environment) Validate() error {
	var problems []string
	if err := checkURL(e.APIServerURL); err != nil {
		problems = append(problems, "apiServerUrl "+err.Error())
	}
	if err := checkURL(e.Auth.CallbackURL); err != nil {
		problems = append(problems, "auth.callbackUrl "+err.Error())
	}
	for _, field := range []struct{ name, value string }{
		{"auth.domainPrefix", e.Auth.DomainPrefix},
		{"auth.audience", e.Auth.Audience},
		{"auth.clientId", e.Auth.ClientID},
	} {
		if strings.TrimSpace(field.value) == "" {
			problems = append(problems, field.name+" is empty")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("has no host")
	}
	return nil
}

// Domain is the full host name of the identity provider tenant.
func (e Environment) Domain() string {
	return e.Auth.DomainPrefix + ".auth0.com"
}

// Issuer is the value the provider puts in the iss claim.
func (e Environment) Issuer() string {
	return "https://" + e.Domain() + "/"
}

// JWKSURL points at the provider's signing keys.
func (e Environment) JWKSURL() string {
	return "https://" + e.Domain() + "/.well-known/jwks.json"
}

// AuthorizeURL builds the implicit flow login URL. The state is omitted
// when empty.
func (e Environment) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("audience", e.Auth.Audience)
	q.Set("response_type", "token")
	q.Set("client_id", e.Auth.ClientID)
	q.Set("redirect_uri", e.Auth.CallbackURL)
	if state != "" {
		q.Set("state", state)
	}
	u := url.URL{Scheme: "https", Host: e.Domain(), Path: "/authorize", RawQuery: q.Encode()}
	return u.String()
}

// LogoutURL ends the provider session and returns to the callback URL.
func (e Environment) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", e.Auth.ClientID)
	q.Set("returnTo", e.Auth.CallbackURL)
	u := url.URL{Scheme: "https", Host: e.Domain(), Path: "/v2/logout", RawQuery: q.Encode()}
	return u.String()
}

// ListenAddress is the host:port the API server binds to, taken from
// APIServerURL. Missing ports default by scheme.
func (e Environment) ListenAddress() (string, error) {
	u, err := url.Parse(e.APIServerURL)
	if err != nil {
		return "", fmt.Errorf("parsing apiServerUrl: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("apiServerUrl %q has no host", e.APIServerURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
