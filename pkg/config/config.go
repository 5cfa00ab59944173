package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Google struct {
	// CredentialsJSON The service account key used when talking to the Google
	// Workspace Directory API, as a JSON document. The private key may contain
	// literal `\n` escape sequences, as produced when the key file is stuffed
	// into a single-line environment variable.
	CredentialsJSON string `envconfig:"RECEIPTS_GOOGLE_CREDENTIALS_JSON"`

	// DelegatedUser The admin user that the service account impersonates
	// through domain-wide delegation when querying the directory.
	//
	// Example: `workspace-admin@example.com`
	DelegatedUser string `envconfig:"RECEIPTS_GOOGLE_DELEGATED_USER"`
}

type Config struct {
	Google Google

	// TenantDomain The Google Workspace domain of the organization. Used when
	// constructing candidate superior director group addresses.
	//
	// Example: `example.com`
	TenantDomain string `envconfig:"RECEIPTS_TENANT_DOMAIN"`

	// DirectorGroupSuffixes Ordered list of group address suffixes that are
	// appended to a unit prefix when guessing the superior director group of a
	// team. The first suffix that resolves to a non-empty group wins.
	DirectorGroupSuffixes []string `envconfig:"RECEIPTS_DIRECTOR_GROUP_SUFFIXES"`

	// ListenAddress The host:port combination used by the http server.
	//
	// Example: `127.0.0.1:3000`
	ListenAddress string `envconfig:"RECEIPTS_LISTEN_ADDRESS"`

	// LogFormat Customize the log format. Can be "text" or "json".
	LogFormat string `envconfig:"RECEIPTS_LOG_FORMAT"`

	// LogLevel The log level used in the service.
	LogLevel string `envconfig:"RECEIPTS_LOG_LEVEL"`
}

func Defaults() *Config {
	return &Config{
		DirectorGroupSuffixes: []string{"_ag_director", "_director", "_ac_director"},
		ListenAddress:         "127.0.0.1:3000",
		LogFormat:             "text",
		LogLevel:              "DEBUG",
		TenantDomain:          "example.com",
	}
}

func New() (*Config, error) {
	cfg := Defaults()

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
