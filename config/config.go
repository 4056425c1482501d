// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Basic struct {
		Host string `env:"STOREFRONT_HOST,overwrite" yaml:"host"`
		Port string `env:"PORT,overwrite"            yaml:"port"`
	} `yaml:"basic"`

	Database struct {
		User           string        `env:"MONGO_USER"                      yaml:"user"`
		Password       string        `env:"MONGO_PASSWORD"                  yaml:"password"`
		Name           string        `env:"MONGO_DATABASE"                  yaml:"database"`
		ClusterHost    string        `env:"MONGO_HOST,overwrite"            yaml:"clusterHost"`
		RawURI         string        `env:"MONGO_URI"                       yaml:"uri"`
		ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT,overwrite" yaml:"connectTimeout"`
	} `yaml:"database"`

	Session struct {
		CookieName string        `env:"STOREFRONT_SESSION_COOKIE,overwrite" yaml:"cookieName"`
		TTL        time.Duration `env:"STOREFRONT_SESSION_TTL,overwrite"    yaml:"ttl"`
	} `yaml:"session"`

	Upload struct {
		Directory string `env:"STOREFRONT_UPLOAD_DIR,overwrite"   yaml:"directory"`
		FieldName string `env:"STOREFRONT_UPLOAD_FIELD,overwrite" yaml:"fieldName"`
	} `yaml:"upload"`

	Log struct {
		Level  string `env:"STOREFRONT_LOG_LEVEL,overwrite"  yaml:"logLevel"`
		Format string `env:"STOREFRONT_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`
}

// Load builds a ServerConfig from its sources, in increasing precedence:
// defaults, an optional YAML file, a .env file, environment variables.
//
// The returned config has been validated and is safe to hand to
// constructors; nothing about it is ambient or global.
func Load() (*ServerConfig, error) {
	configFilePath := parseCommandLineArgs()

	// An explicit env var beats the default flag value, but an
	// explicitly passed flag beats both.
	flagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			flagUserSet = true
		}
	})

	if !flagUserSet {
		if envVar := os.Getenv("STOREFRONT_CONFIGFILE"); envVar != "" {
			configFilePath = envVar
		}
	}

	cfg := &ServerConfig{}
	cfg.SetDefaults()

	if err := cfg.readYAML(configFilePath); err != nil {
		return nil, fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	log.Info().
		Str("port", cfg.Basic.Port).
		Str("database", cfg.Database.Name).
		Str("upload_dir", cfg.Upload.Directory).
		Msg("Configuration loaded")

	return cfg, nil
}

// MongoURI assembles the storage connection descriptor from the
// configured credentials. An explicitly configured URI wins.
func (cfg *ServerConfig) MongoURI() string {
	if cfg.Database.RawURI != "" {
		return cfg.Database.RawURI
	}

	return fmt.Sprintf(
		"mongodb+srv://%s:%s@%s/%s?retryWrites=true&w=majority",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		cfg.Database.ClusterHost,
		url.PathEscape(cfg.Database.Name),
	)
}

// Addr returns the TCP listen address for the HTTP server.
func (cfg *ServerConfig) Addr() string {
	return cfg.Basic.Host + ":" + cfg.Basic.Port
}
