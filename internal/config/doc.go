// Package config provides configuration types and loading for create-sandbox.
//
// # Sources
//
// The effective configuration is layered, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. A config file: --config <path>, or
//     $XDG_CONFIG_HOME/create-sandbox/config.toml when present.
//     TOML (.toml) and YAML (.yaml, .yml) are accepted.
//  3. Environment variables prefixed with CREATE_SANDBOX_
//  4. Command-line flags (applied by the cmd package)
//
// # Keys
//
//	build_script   = "build"                 # CREATE_SANDBOX_BUILD_SCRIPT
//	generator      = "npx create-react-app"  # CREATE_SANDBOX_GENERATOR
//	timeout        = "10m"                   # CREATE_SANDBOX_TIMEOUT, 0 disables
//	sandbox_suffix = "-sandbox"              # CREATE_SANDBOX_SANDBOX_SUFFIX
//
// # Validation
//
// Config.Validate checks required fields and value ranges. Load validates
// after all sources are merged. ValidateDirectoryName guards the directory
// names derived from user input.
package config
