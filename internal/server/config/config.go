// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinBcryptCost is the lowest password hashing cost the server accepts.
	MinBcryptCost = 10
	// MaxBcryptCost is the highest cost bcrypt supports.
	MaxBcryptCost = bcrypt.MaxCost
)

// SMTP holds outgoing mail settings. An empty Host disables mail delivery.
type SMTP struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
}

// Config holds runtime settings for the task manager server.
//
// Fields:
//   - HTTPAddr: bind address for the REST API.
//   - GRPCHealthAddr: bind address for the gRPC health service, empty disables it.
//   - DatabaseURI: storage URI; the scheme (mongodb, postgres, memory) selects the backend.
//   - RedisURL: optional Redis URL; when set, refresh tokens are kept in Redis.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration /
//     VerificationTokenValidityDuration: token lifetimes.
//   - RotateRefreshTokens: replace the presented refresh token on every refresh.
//   - ClientOrigins: comma-separated CORS allow-list (exact, hostname or *.wildcard).
//   - AppURL: front-end base URL used in verification links and redirects.
type Config struct {
	HTTPAddr                          string
	GRPCHealthAddr                    string
	DatabaseURI                       string
	RedisURL                          string
	SecretKey                         string
	AccessTokenValidityDuration       time.Duration
	RefreshTokenValidityDuration      time.Duration
	VerificationTokenValidityDuration time.Duration
	RotateRefreshTokens               bool
	ClientOrigins                     string
	AppURL                            string
	BcryptCost                        int
	SMTP                              SMTP
	Production                        bool
}

// LoadDefaults populates Config with development defaults. SecretKey is
// deliberately left empty so that a forgotten secret stops the server.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.GRPCHealthAddr = ":50051"
	c.DatabaseURI = "mongodb://localhost:27017/taskmanager"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 30 * 24 * time.Hour
	c.VerificationTokenValidityDuration = 7 * 24 * time.Hour
	c.ClientOrigins = "https://task-tab.netlify.app"
	c.AppURL = "http://localhost:5173"
	c.BcryptCost = MinBcryptCost
	c.SMTP.Port = 587
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is not set (JWT_SECRET)"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration))
	}
	if c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("refresh token validity must be positive, got %s", c.RefreshTokenValidityDuration))
	}
	if c.VerificationTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("verification token validity must be positive, got %s", c.VerificationTokenValidityDuration))
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", MinBcryptCost, MaxBcryptCost, c.BcryptCost))
	}
	if c.DatabaseURI == "" {
		errs = append(errs, errors.New("database URI is not set"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the .env file and process environment, and
// finally from command-line flags. The result is validated.
func LoadConfig(args []string) (*Config, error) {
	cfg, err := Load(args)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load layers defaults, the JSON file, the environment and flags without
// validating the result. Tools that only need storage settings use it
// directly.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}

	lookup, err := envLookup(".env", os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	return cfg, nil
}
