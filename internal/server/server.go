package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"grocer/internal/config"
	"grocer/internal/grocy"
	"grocer/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// Config defines how the MCP server is exposed.
type Config struct {
	Host      string
	Port      int
	Transport string
	Version   string
}

// GrocyServer exposes the Grocy repository as an MCP server. It owns the
// tool and resource registrations and the lifecycle of the chosen transport.
type GrocyServer struct {
	config Config
	repo   *grocy.Repository

	mcpServer   *server.MCPServer
	httpServer  *http.Server
	stdioServer *server.StdioServer

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates the MCP server and registers all tools and resources.
func New(repo *grocy.Repository, cfg Config) *GrocyServer {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := server.NewMCPServer(
		"grocer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s := &GrocyServer{
		config:    cfg,
		repo:      repo,
		mcpServer: mcpServer,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Start launches the configured transport. HTTP transports run in the
// background; callers block on their own context and invoke Stop on
// shutdown.
func (s *GrocyServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	switch s.config.Transport {
	case config.MCPTransportSSE:
		logging.Info("Server", "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
		sseServer := server.NewSSEServer(
			s.mcpServer,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		s.httpServer = &http.Server{Addr: addr, Handler: corsHandler(sseServer)}
		go s.serveHTTP()

	case config.MCPTransportStdio:
		logging.Info("Server", "Starting MCP server with stdio transport")
		s.stdioServer = server.NewStdioServer(s.mcpServer)
		stdioServer := s.stdioServer
		go func() {
			if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Server", err, "Stdio server error")
			}
		}()

	case config.MCPTransportStreamableHTTP:
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		streamableServer := server.NewStreamableHTTPServer(s.mcpServer)
		s.httpServer = &http.Server{Addr: addr, Handler: corsHandler(streamableServer)}
		go s.serveHTTP()

	default:
		return fmt.Errorf("unknown transport %q", s.config.Transport)
	}

	return nil
}

func (s *GrocyServer) serveHTTP() {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("Server", err, "HTTP server error")
	}
}

// Stop shuts the transport down gracefully.
func (s *GrocyServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	httpServer := s.httpServer
	s.mu.Unlock()

	logging.Info("Server", "Stopping MCP server")

	if cancel != nil {
		cancel()
	}

	if httpServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	// The stdio server stops on context cancellation, no explicit shutdown.
	return nil
}

// corsHandler adds the permissive CORS headers the browser-based MCP
// clients need. Grocer only serves a local assistant integration, so a
// wildcard origin is acceptable here.
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
