package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"grocer/internal/config"
	"grocer/internal/grocy"
	"grocer/internal/homeassistant"
	"grocer/internal/server"
	"grocer/pkg/logging"
)

// Application wires the session manager, the Grocy client and the MCP
// server together and owns their lifecycle.
//
// The bootstrap runs in two phases: NewApplication loads configuration and
// constructs the component graph, Run starts the chosen transport and
// blocks until shutdown.
type Application struct {
	config   Config
	sessions *homeassistant.SessionManager
	server   *server.GrocyServer
}

// NewApplication performs the full bootstrap sequence: logging, config
// loading and validation, then component wiring.
func NewApplication(cfg Config) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	grocerCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	// Command-line flags win over file and environment values.
	if cfg.Transport != "" {
		grocerCfg.Server.Transport = cfg.Transport
	}
	if cfg.Host != "" {
		grocerCfg.Server.Host = cfg.Host
	}
	if cfg.Port != 0 {
		grocerCfg.Server.Port = cfg.Port
	}

	if err := grocerCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	sessions := homeassistant.NewSessionManager(homeassistant.Options{
		WebsocketURL:     homeassistant.WebsocketURL(grocerCfg.Grocy.APIURL),
		AccessToken:      grocerCfg.HomeAssistant.Token,
		TokenTTL:         grocerCfg.HomeAssistant.TokenTTL.Std(),
		HandshakeTimeout: grocerCfg.HomeAssistant.HandshakeTimeout.Std(),
		MessageTimeout:   grocerCfg.Grocy.RequestTimeout.Std(),
	})

	client := grocy.NewClient(grocy.ClientOptions{
		BaseURL:        grocerCfg.Grocy.APIURL,
		APIKey:         grocerCfg.Grocy.APIKey,
		Tokens:         sessions,
		RequestTimeout: grocerCfg.Grocy.RequestTimeout.Std(),
		RetryAttempts:  grocerCfg.Grocy.RetryAttempts,
		RetryInterval:  grocerCfg.Grocy.RetryInterval.Std(),
	})

	mcpServer := server.New(grocy.NewRepository(client), server.Config{
		Host:      grocerCfg.Server.Host,
		Port:      grocerCfg.Server.Port,
		Transport: grocerCfg.Server.Transport,
		Version:   cfg.Version,
	})

	return &Application{
		config:   cfg,
		sessions: sessions,
		server:   mcpServer,
	}, nil
}

// Run starts the MCP server and blocks until the context is cancelled or
// an interrupt arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}

	<-ctx.Done()
	logging.Info("Bootstrap", "Shutting down")

	shutdownCtx := context.Background()
	if err := a.server.Stop(shutdownCtx); err != nil {
		logging.Error("Bootstrap", err, "Error during server shutdown")
	}
	a.sessions.Close()

	return nil
}
