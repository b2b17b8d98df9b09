// Package common contains shared constants and sentinel errors used across
// the task manager components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RefreshTokenSize is the number of random bytes behind a refresh token
// before hex encoding.
const RefreshTokenSize = 40
