package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// Duration wraps time.Duration so that values like "60s" or "250ms" can be
// used directly in config.yaml.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// GrocerConfig is the top-level configuration structure for grocer.
type GrocerConfig struct {
	Grocy         GrocyConfig         `yaml:"grocy"`
	HomeAssistant HomeAssistantConfig `yaml:"homeAssistant"`
	Server        ServerConfig        `yaml:"server"`
}

// GrocyConfig holds everything needed to reach the Grocy REST API through
// the Home Assistant ingress proxy.
type GrocyConfig struct {
	// APIURL is the full ingress URL of the Grocy API, e.g.
	// http://homeassistant.local:8123/api/hassio_ingress/<slug>/api
	APIURL string `yaml:"apiUrl,omitempty"`
	// APIKey is the static Grocy API key sent on every request.
	APIKey string `yaml:"apiKey,omitempty"`
	// RequestTimeout bounds each individual HTTP attempt (default: 30s).
	RequestTimeout Duration `yaml:"requestTimeout,omitempty"`
	// RetryAttempts is the total attempt budget per logical call (default: 3).
	RetryAttempts int `yaml:"retryAttempts,omitempty"`
	// RetryInterval is the fixed pause between retry attempts (default: 250ms).
	RetryInterval Duration `yaml:"retryInterval,omitempty"`
}

// HomeAssistantConfig holds the settings for the supervisor websocket
// session that mints short-lived ingress tokens.
type HomeAssistantConfig struct {
	// Token is the long-lived Home Assistant access token used in the
	// websocket auth handshake.
	Token string `yaml:"token,omitempty"`
	// TokenTTL is the freshness window after which a cached ingress session
	// token is renewed (default: 60s).
	TokenTTL Duration `yaml:"tokenTTL,omitempty"`
	// HandshakeTimeout bounds the websocket dial and handshake (default: 10s).
	HandshakeTimeout Duration `yaml:"handshakeTimeout,omitempty"`
}

// ServerConfig defines how the MCP server is exposed.
type ServerConfig struct {
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for HTTP transports (default: 8010)
	Transport string `yaml:"transport,omitempty"` // Transport to use (default: sse)
}

// GetDefaultConfig returns the default configuration for grocer.
func GetDefaultConfig() GrocerConfig {
	return GrocerConfig{
		Grocy: GrocyConfig{
			APIURL:         "http://homeassistant.local:8123/api",
			RequestTimeout: Duration(30 * time.Second),
			RetryAttempts:  3,
			RetryInterval:  Duration(250 * time.Millisecond),
		},
		HomeAssistant: HomeAssistantConfig{
			TokenTTL:         Duration(60 * time.Second),
			HandshakeTimeout: Duration(10 * time.Second),
		},
		Server: ServerConfig{
			Host:      "localhost",
			Port:      8010,
			Transport: MCPTransportSSE,
		},
	}
}

// Validate checks that the configuration is complete enough to serve.
// The API key and Home Assistant token are secrets with no sensible
// defaults, so their absence is a hard error.
func (c *GrocerConfig) Validate() error {
	if c.Grocy.APIURL == "" {
		return fmt.Errorf("grocy.apiUrl (or GROCY_API_URL) is required")
	}
	if c.Grocy.APIKey == "" {
		return fmt.Errorf("grocy.apiKey (or GROCY_API_KEY) is required")
	}
	if c.HomeAssistant.Token == "" {
		return fmt.Errorf("homeAssistant.token (or HA_TOKEN) is required")
	}
	if c.Grocy.RetryAttempts < 1 {
		return fmt.Errorf("grocy.retryAttempts must be at least 1, got %d", c.Grocy.RetryAttempts)
	}
	switch c.Server.Transport {
	case MCPTransportSSE, MCPTransportStdio, MCPTransportStreamableHTTP:
	default:
		return fmt.Errorf("unknown transport %q (expected %s, %s or %s)",
			c.Server.Transport, MCPTransportSSE, MCPTransportStdio, MCPTransportStreamableHTTP)
	}
	return nil
}
