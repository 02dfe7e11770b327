package domain

import (
	"aggregat4/coffeeshop/internal/environment"
	"net"
	"strconv"
	"time"
)

type AuthConfiguration struct {
	JwksUrl      string
	Issuer       string
	Audience     string
	JwksCacheTtl time.Duration
}

type Configuration struct {
	DatabaseFilename          string
	ServerReadTimeoutSeconds  int
	ServerWriteTimeoutSeconds int
	// ServerPort of 0 means bind to the address of the environment's API server URL
	ServerPort         int
	CorsAllowedOrigins []string
	ResetDatabase      bool
	LogLevel           string
	AuthConfig         AuthConfiguration
	Environment        environment.Environment
}

func (c Configuration) ListenAddress() (string, error) {
	if c.ServerPort != 0 {
		return net.JoinHostPort("", strconv.Itoa(c.ServerPort)), nil
	}
	return c.Environment.ListenAddress()
}
