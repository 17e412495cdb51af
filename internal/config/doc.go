// ABOUTME: Configuration package documentation
// ABOUTME: Describes settings sources and precedence
// Package config loads sampler settings.
//
// Precedence, highest first: command line flags, RESONATE_SAMPLER_*
// environment variables, config.yaml, built-in defaults.
package config
