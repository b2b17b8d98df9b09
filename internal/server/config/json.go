package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskmanager/internal/flagx"
	"github.com/dmitrijs2005/taskmanager/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "15m" and integer nanoseconds are accepted. Pointers distinguish an
// absent key from a zero value, so a partial file only overrides what it names.
type JsonConfig struct {
	HTTPAddr                          *string         `json:"http_addr"`
	GRPCHealthAddr                    *string         `json:"grpc_health_addr"`
	DatabaseURI                       *string         `json:"database_uri"`
	RedisURL                          *string         `json:"redis_url"`
	SecretKey                         *string         `json:"secret_key"`
	AccessTokenValidityDuration       *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      *timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration *timex.Duration `json:"verification_token_validity_duration"`
	RotateRefreshTokens               *bool           `json:"rotate_refresh_tokens"`
	ClientOrigins                     *string         `json:"client_origins"`
	AppURL                            *string         `json:"app_url"`
	BcryptCost                        *int            `json:"bcrypt_cost"`
	SMTP                              *struct {
		Host     *string `json:"host"`
		Port     *int    `json:"port"`
		Secure   *bool   `json:"secure"`
		User     *string `json:"user"`
		Password *string `json:"password"`
		From     *string `json:"from"`
	} `json:"smtp"`
	Production *bool `json:"production"`
}

// parseJson overlays values from the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)

	// nothing to load
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setIf(&config.DatabaseURI, c.DatabaseURI)
	setIf(&config.RedisURL, c.RedisURL)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.RotateRefreshTokens, c.RotateRefreshTokens)
	setIf(&config.ClientOrigins, c.ClientOrigins)
	setIf(&config.AppURL, c.AppURL)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.Production, c.Production)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration != nil {
		config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}

	if s := c.SMTP; s != nil {
		setIf(&config.SMTP.Host, s.Host)
		setIf(&config.SMTP.Port, s.Port)
		setIf(&config.SMTP.Secure, s.Secure)
		setIf(&config.SMTP.User, s.User)
		setIf(&config.SMTP.Password, s.Password)
		setIf(&config.SMTP.From, s.From)
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
