// Package config loads componentsgen settings with viper from defaults, an
// optional config file, COMPONENTSGEN_* environment variables and command
// line flags.
package config
