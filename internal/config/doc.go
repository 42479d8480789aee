// Package config manages application configuration for the Globetrotter API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single source
// of truth. A .env file in the working directory is honored when present.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - GameConfig: gameplay settings such as the challenge link base URL
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT          - HTTP server port (default: 8080)
//	SERVER_ENV           - development, production, or test
//	CORS_ALLOWED_ORIGINS - comma-separated list of allowed origins
//	DB_HOST              - SurrealDB host
//	DB_PORT              - SurrealDB port
//	DB_NAMESPACE         - database namespace
//	DB_DATABASE          - database name
//	DB_USER              - database username
//	DB_PASSWORD          - database password
//	GAME_FRONTEND_URL    - default base URL for challenge invite links
package config
