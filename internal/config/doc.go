// Package config loads settings from defaults, an optional config.yaml and
// TASKBOARD_-prefixed environment variables, then validates them before any
// component is built. A nested key such as auth.jwt_secret is read from
// TASKBOARD_AUTH_JWT_SECRET.
package config
