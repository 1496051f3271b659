// Package config defines the application's configuration structures and
// loading logic. Configuration is read from environment variables with
// the MUSE_ prefix and optionally from a yaml config file, with the
// environment taking precedence, then validated before use.
package config
