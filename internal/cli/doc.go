// Package cli provides command-line interface setup and configuration
// for the coltrans application. It handles flag parsing, command
// creation, logging setup and configuration management using cobra,
// viper and zerolog.
package cli
