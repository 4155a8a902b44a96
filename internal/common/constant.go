// Package common contains shared constants and sentinel errors used across
// ContactHub components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer session token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"
