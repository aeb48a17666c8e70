// Package config defines grocer's configuration model and loading logic.
//
// Configuration is assembled from three layers: built-in defaults, an
// optional config.yaml, and environment variables (with optional .env file
// support). Secrets — the Grocy API key and the Home Assistant long-lived
// token — are typically supplied through the environment and validated at
// serve time.
package config
