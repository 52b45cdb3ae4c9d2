// Package config loads runtime configuration from a YAML file and CLI flags
// with precedence: CLI flags > YAML config > Defaults. Paths to the project
// inputs are resolved against the project root. The tool deliberately reads
// no environment variables of its own, since the environment file is the
// data under inspection.
package config
