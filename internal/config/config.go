// Package config loads escrowd settings from ESCROW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	solana "github.com/gagliardetto/solana-go"
)

// Config is the raw environment configuration of the server.
type Config struct {
	Addr   string `env:"ESCROW_ADDR"    envDefault:":8080"`
	DBPath string `env:"ESCROW_DB_PATH" envDefault:"./data/escrow.db"`

	ProgramID   string        `env:"ESCROW_PROGRAM_ID"   envDefault:"JCpwefFuKLrZEczt7FFcZ3oLE9nCdGNtRmTSXpQ4dLRd"`
	BridgeOwner string        `env:"ESCROW_BRIDGE_OWNER" envDefault:"7c7DvpirKPx6qxSgtRkmsEi1a78tNyjLZR6wsmAGsegz"`
	SessionTTL  time.Duration `env:"ESCROW_SESSION_TTL"  envDefault:"15m"`

	// TokenDecimals scales base units into the decimal amounts of payment links.
	TokenDecimals uint8 `env:"ESCROW_TOKEN_DECIMALS" envDefault:"6"`

	JWTSecret string        `env:"ESCROW_JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"ESCROW_TOKEN_TTL" envDefault:"24h"`

	// RedisAddr enables the event relay when set.
	RedisAddr     string        `env:"ESCROW_REDIS_ADDR"`
	EventStream   string        `env:"ESCROW_EVENT_STREAM"   envDefault:"escrow:events"`
	RelayInterval time.Duration `env:"ESCROW_RELAY_INTERVAL" envDefault:"1s"`
	RelayBatch    int           `env:"ESCROW_RELAY_BATCH"    envDefault:"100"`

	LogLevel  string `env:"ESCROW_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"ESCROW_LOG_FORMAT" envDefault:"text"`
}

// Keys are the validated addresses derived from Config.
type Keys struct {
	ProgramID   solana.PublicKey
	BridgeOwner solana.PublicKey
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints and decodes the configured keys.
func (c Config) Validate() (Keys, error) {
	var keys Keys
	var err error
	if keys.ProgramID, err = solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return Keys{}, fmt.Errorf("ESCROW_PROGRAM_ID: %w", err)
	}
	if keys.BridgeOwner, err = solana.PublicKeyFromBase58(c.BridgeOwner); err != nil {
		return Keys{}, fmt.Errorf("ESCROW_BRIDGE_OWNER: %w", err)
	}
	if len(c.JWTSecret) < 16 {
		return Keys{}, errors.New("ESCROW_JWT_SECRET must be at least 16 bytes")
	}
	if c.SessionTTL <= 0 {
		return Keys{}, errors.New("ESCROW_SESSION_TTL must be positive")
	}
	if c.RelayBatch <= 0 {
		return Keys{}, errors.New("ESCROW_RELAY_BATCH must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return Keys{}, fmt.Errorf("ESCROW_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	return keys, nil
}
