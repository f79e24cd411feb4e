// Package config provides centralized configuration management for the EGX
// signals service.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file (config.yaml or configs/config.yaml)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// Variables are namespaced with EGX and follow the struct layout:
//
//	EGX_SERVER_PORT=8080
//	EGX_PATHS_BASE_DIR=/srv/egx
//	EGX_ANALYTICS_MIN_ABS_CORR=0.8
//	EGX_CACHE_BACKEND=redis
//	EGX_CACHE_REDIS_ADDR=localhost:6379
//
// # Paths
//
// The intraday, transaction and CASE directories are resolved against
// Paths.BaseDir, which defaults to the executable directory.
package config
