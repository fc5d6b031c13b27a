package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is built once at startup and handed to the components that need it.
// Request handling never reads the environment directly.
type Config struct {
	Addr string `env:"LEAGUELEDGER_ADDR" envDefault:":8080"`

	// FrontendURL receives the browser after a completed login. ErrorURL
	// receives it after a failed one; when empty it defaults to FrontendURL.
	FrontendURL string `env:"LEAGUELEDGER_FRONTEND_URL" envDefault:"http://localhost:3000"`
	ErrorURL    string `env:"LEAGUELEDGER_ERROR_URL"`

	// APISecret is the shared secret required by the ledger endpoints.
	APISecret string `env:"LEAGUELEDGER_API_SECRET"`

	Provider   ProviderConfig
	State      StateConfig
	Credential CredentialConfig

	// LedgerBackend selects the ledger store: memory, redis or postgres.
	LedgerBackend string `env:"LEAGUELEDGER_LEDGER_BACKEND" envDefault:"memory"`
	Redis         RedisConfig
	PostgresDSN   string `env:"LEAGUELEDGER_POSTGRES_DSN"`
}

// ProviderConfig describes the single upstream identity provider.
type ProviderConfig struct {
	ClientID     string        `env:"LEAGUELEDGER_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"LEAGUELEDGER_OAUTH_CLIENT_SECRET"`
	AuthURL      string        `env:"LEAGUELEDGER_OAUTH_AUTH_URL"`
	TokenURL     string        `env:"LEAGUELEDGER_OAUTH_TOKEN_URL"`
	UserInfoURL  string        `env:"LEAGUELEDGER_OAUTH_USERINFO_URL"`
	RedirectURL  string        `env:"LEAGUELEDGER_OAUTH_REDIRECT_URL"`
	Scopes       []string      `env:"LEAGUELEDGER_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile"`
	Timeout      time.Duration `env:"LEAGUELEDGER_OAUTH_TIMEOUT" envDefault:"10s"`
}

// StateConfig controls the anti-forgery state cookie.
type StateConfig struct {
	CookieName string        `env:"LEAGUELEDGER_STATE_COOKIE" envDefault:"__league_oauth_state"`
	TTL        time.Duration `env:"LEAGUELEDGER_STATE_TTL" envDefault:"5m"`
	// Secure must only be disabled for local development over plain HTTP.
	Secure bool `env:"LEAGUELEDGER_STATE_COOKIE_SECURE" envDefault:"true"`
}

// CredentialConfig controls the short-lived signed credential handed to the
// front-end. Minting is disabled when the key is empty.
type CredentialConfig struct {
	SigningKeyPEM string        `env:"LEAGUELEDGER_CREDENTIAL_KEY"`
	Issuer        string        `env:"LEAGUELEDGER_CREDENTIAL_ISSUER" envDefault:"leagueledger"`
	TTL           time.Duration `env:"LEAGUELEDGER_CREDENTIAL_TTL" envDefault:"60s"`
}

// RedisConfig mirrors the connection settings of the platform redis client.
type RedisConfig struct {
	URL          string        `env:"LEAGUELEDGER_REDIS_URL"`
	PoolSize     int           `env:"LEAGUELEDGER_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"LEAGUELEDGER_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"LEAGUELEDGER_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"LEAGUELEDGER_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"LEAGUELEDGER_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv parses the full configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ErrorURL == "" {
		cfg.ErrorURL = cfg.FrontendURL
	}
	return cfg, nil
}
