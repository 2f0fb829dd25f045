// Package config provides configuration loading for salesdash.
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file (config.yaml, configs/config.yaml or SALESDASH_CONFIG_FILE)
//  3. Default values (lowest priority)
//
// A .env file in the working directory is read first and only fills variables
// that are not already set. All variables use the SALESDASH_ prefix:
//
//	SALESDASH_SERVER_PORT=8080
//	SALESDASH_LOGGING_LEVEL=debug
//	SALESDASH_FORECAST_METHOD=linear_trend
//	SALESDASH_FORECAST_HORIZON=6
//	SALESDASH_CACHE_TTL=10m
//
// Paths are resolved with ResolvePaths; data files are relative to the data
// directory, which is relative to the root directory.
package config
