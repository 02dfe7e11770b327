package config

import (
	"aggregat4/coffeeshop/internal/domain"
	"aggregat4/coffeeshop/internal/environment"
	"aggregat4/coffeeshop/pkg/lang"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/kirsle/configdir"
	"github.com/knadh/koanf/parsers/hjson"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

func GetDefaultConfigPath() string {
	return configdir.LocalConfig("coffeeshop") + "/coffeeshop.json"
}

// ReadConfig reads the server configuration. Everything the environment
// record already says (listen address, CORS origin, identity provider) is
// used as the default and can be overridden in the file.
func ReadConfig(configFileLocation string, env environment.Environment) (domain.Configuration, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(configFileLocation), hjson.Parser()); err != nil {
		return domain.Configuration{}, errors.Wrapf(err, "loading config file %s", configFileLocation)
	}

	databaseFilename := k.String("databasefilename")
	if databaseFilename == "" {
		return domain.Configuration{}, errors.New("database filename is required in the configuration")
	}
	serverReadTimeoutSeconds := k.Int("serverreadtimeoutseconds")
	if serverReadTimeoutSeconds == 0 {
		serverReadTimeoutSeconds = 5
	}
	serverWriteTimeoutSeconds := k.Int("serverwritetimeoutseconds")
	if serverWriteTimeoutSeconds == 0 {
		serverWriteTimeoutSeconds = 10
	}
	serverPort := k.Int("serverport")
	if serverPort < 0 || serverPort > 65535 {
		return domain.Configuration{}, errors.Errorf("server port %d is out of range", serverPort)
	}

	corsAllowedOrigins := k.Strings("corsallowedorigins")
	if len(corsAllowedOrigins) == 0 {
		origin, err := originOf(env.Auth.CallbackURL)
		if err != nil {
			return domain.Configuration{}, err
		}
		corsAllowedOrigins = []string{origin}
	}

	jwksCacheTtl := 60 * time.Minute
	if k.Exists("auth.jwkscachettlminutes") {
		jwksCacheTtl = time.Duration(k.Int("auth.jwkscachettlminutes")) * time.Minute
	}
	if jwksCacheTtl <= 0 {
		return domain.Configuration{}, errors.New("auth.jwkscachettlminutes must be positive")
	}

	return domain.Configuration{
		DatabaseFilename:          databaseFilename,
		ServerReadTimeoutSeconds:  serverReadTimeoutSeconds,
		ServerWriteTimeoutSeconds: serverWriteTimeoutSeconds,
		ServerPort:                serverPort,
		CorsAllowedOrigins:        corsAllowedOrigins,
		ResetDatabase:             k.Bool("resetdatabase"),
		LogLevel:                  lang.Coalesce(k.String("loglevel"), "info"),
		AuthConfig: domain.AuthConfiguration{
			JwksUrl:      lang.Coalesce(k.String("auth.jwksurl"), env.JWKSURL()),
			Issuer:       lang.Coalesce(k.String("auth.issuer"), env.Issuer()),
			Audience:     lang.Coalesce(k.String("auth.audience"), env.Auth.Audience),
			JwksCacheTtl: jwksCacheTtl,
		},
		Environment: env,
	}, nil
}

func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "parsing callback url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("callback url %q is not absolute", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
