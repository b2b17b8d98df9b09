package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envLookup layers the process environment over the variables of a .env
// file. A missing file is not an error.
func envLookup(path string, process LookupFunc) (LookupFunc, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		dotenv = map[string]string{}
	}

	return func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// parseEnv populates Config fields from environment variables.
//
// Recognised variables:
//
//	PORT, HTTP_ADDR            REST bind address (PORT becomes ":PORT")
//	GRPC_HEALTH_ADDR           gRPC health bind address
//	MONGO_URI, DATABASE_URI    storage URI (DATABASE_URI wins)
//	REDIS_URL                  Redis URL for refresh tokens
//	JWT_SECRET                 HMAC secret
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, VERIFICATION_TOKEN_TTL   Go durations
//	ROTATE_REFRESH_TOKENS      bool
//	CLIENT_URL                 comma-separated origin allow-list
//	APP_URL                    front-end base URL
//	BCRYPT_COST                int
//	SMTP_HOST, SMTP_PORT, SMTP_SECURE, SMTP_USER, SMTP_PASS, FROM_EMAIL
//	ENV                        "PRODUCTION" switches to production mode
func parseEnv(config *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var errs []error

	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + strings.TrimPrefix(port, ":")
	}
	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	str("MONGO_URI", &config.DatabaseURI)
	str("DATABASE_URI", &config.DatabaseURI)
	str("REDIS_URL", &config.RedisURL)
	str("JWT_SECRET", &config.SecretKey)
	dur("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	dur("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	dur("VERIFICATION_TOKEN_TTL", &config.VerificationTokenValidityDuration)
	boolean("ROTATE_REFRESH_TOKENS", &config.RotateRefreshTokens)
	str("CLIENT_URL", &config.ClientOrigins)
	str("APP_URL", &config.AppURL)
	integer("BCRYPT_COST", &config.BcryptCost)

	str("SMTP_HOST", &config.SMTP.Host)
	integer("SMTP_PORT", &config.SMTP.Port)
	boolean("SMTP_SECURE", &config.SMTP.Secure)
	str("SMTP_USER", &config.SMTP.User)
	str("SMTP_PASS", &config.SMTP.Password)
	str("FROM_EMAIL", &config.SMTP.From)

	if v, ok := lookup("ENV"); ok {
		config.Production = strings.EqualFold(v, "PRODUCTION")
	}

	return errors.Join(errs...)
}
