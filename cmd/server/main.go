package main

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/internal/config"
	"aggregat4/coffeeshop/internal/environment"
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/internal/repository"
	"aggregat4/coffeeshop/internal/server"
	"aggregat4/coffeeshop/pkg/lang"
	"context"
	"flag"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	var configFileLocation string
	flag.StringVar(&configFileLocation, "config", "", "The location of the configuration file if you do not want to default to the standard location")
	flag.Parse()

	logger := logging.ForComponent("cmd.server")

	env := environment.Current()
	if err := env.Validate(); err != nil {
		logging.Fatal(logger, "Invalid environment record: {Error}", err)
	}
	cfg, err := config.ReadConfig(lang.IfElse(configFileLocation == "", config.GetDefaultConfigPath(), configFileLocation), env)
	if err != nil {
		logging.Fatal(logger, "Error loading config: {Error}", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Fatal(logger, "Invalid log level: {Error}", err)
	}
	logging.Info(logger, "Loaded {Mode} environment for {ApiServerUrl}", environment.BuildMode, env.APIServerURL)

	var store repository.Store
	if err := store.InitAndVerifyDb(repository.CreateFileDbUrl(cfg.DatabaseFilename)); err != nil {
		logging.Fatal(logger, "Error initializing database: {Error}", err)
	}
	defer store.Close()
	if cfg.ResetDatabase {
		if err := store.ResetDrinks(); err != nil {
			logging.Fatal(logger, "Error resetting database: {Error}", err)
		}
		logging.Warn(logger, "Database reset to the default drink")
	}

	keys := auth.NewKeySet(cfg.AuthConfig.JwksUrl, cfg.AuthConfig.JwksCacheTtl)
	refreshJob := auth.NewRefreshJob(keys, cfg.AuthConfig.JwksCacheTtl)
	refreshJob.Start()
	defer refreshJob.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = server.RunServer(ctx, server.Controller{
		Store:    &store,
		Config:   cfg,
		Verifier: auth.NewVerifier(keys, cfg.AuthConfig.Issuer, cfg.AuthConfig.Audience),
	})
	if err != nil {
		logging.Error(logger, "Server stopped with error: {Error}", err)
	}
}
