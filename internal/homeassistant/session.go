package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"grocer/pkg/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Options configures a SessionManager.
type Options struct {
	// WebsocketURL is the Home Assistant websocket endpoint, usually derived
	// from the Grocy ingress URL via WebsocketURL.
	WebsocketURL string

	// AccessToken is the long-lived Home Assistant token used during the
	// auth handshake.
	AccessToken string

	// TokenTTL is the freshness window for minted ingress session tokens.
	TokenTTL time.Duration

	// HandshakeTimeout bounds the websocket dial and upgrade.
	HandshakeTimeout time.Duration

	// MessageTimeout bounds each individual read and write on the channel.
	MessageTimeout time.Duration
}

// SessionManager owns the single logical websocket connection to Home
// Assistant and mints short-lived ingress session tokens over it.
//
// The connection is established lazily on the first Token call and reused
// until a handshake or channel failure discards it. All state is guarded by
// a single mutex, which also linearizes connect and renewal: when many
// callers race after the freshness window expires, exactly one handshake
// and one supervisor round-trip happen on the wire and every caller
// observes the outcome.
type SessionManager struct {
	options Options

	mu        sync.Mutex
	conn      *websocket.Conn
	connID    string
	requestID int
	session   string
	issuedAt  time.Time

	// now is replaceable in tests to control token aging.
	now func() time.Time
}

// NewSessionManager creates a session manager. The connection is not opened
// until the first Token call.
func NewSessionManager(options Options) *SessionManager {
	return &SessionManager{
		options:   options,
		requestID: 1,
		now:       time.Now,
	}
}

// WebsocketURL derives the Home Assistant websocket endpoint from a Grocy
// ingress URL, e.g.
//
//	http://homeassistant.local:8123/api/hassio_ingress/<slug>/api
//
// becomes
//
//	ws://homeassistant.local:8123/api/websocket
func WebsocketURL(grocyAPIURL string) string {
	base := grocyAPIURL
	if idx := strings.Index(base, "/api/hassio_ingress"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSuffix(base, "/api")

	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	return strings.TrimSuffix(base, "/") + "/api/websocket"
}

// Token returns an ingress session token that is connected, authenticated
// and no older than the configured freshness window, performing the
// handshake and renewal as needed.
func (m *SessionManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		if err := m.connect(ctx); err != nil {
			return "", err
		}
	}

	if m.session == "" || m.now().Sub(m.issuedAt) > m.options.TokenTTL {
		if err := m.renew(ctx); err != nil {
			return "", err
		}
	}

	return m.session, nil
}

// Invalidate marks the cached token stale so the next Token call performs a
// renewal. Used by the Grocy client when the upstream rejects the session.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = ""
}

// Close tears down the websocket connection if one is open.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardLocked()
}

// connect dials the websocket endpoint and runs the auth handshake.
// Callers must hold m.mu. On any failure the connection is discarded so the
// next Token call starts from scratch.
func (m *SessionManager) connect(ctx context.Context) error {
	dialer := &websocket.Dialer{
		HandshakeTimeout: m.options.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, m.options.WebsocketURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s failed: %w", m.options.WebsocketURL, err)
	}

	m.conn = conn
	m.connID = uuid.New().String()

	greeting, err := m.readMessage()
	if err != nil {
		m.discardLocked()
		return fmt.Errorf("failed to read websocket greeting: %w", err)
	}
	if greeting.Type != messageTypeAuthRequired {
		m.discardLocked()
		return &ProtocolError{Expected: messageTypeAuthRequired, Got: greeting.Type}
	}

	auth := authMessage{Type: messageTypeAuth, AccessToken: m.options.AccessToken}
	if err := m.writeMessage(auth); err != nil {
		m.discardLocked()
		return fmt.Errorf("failed to send auth message: %w", err)
	}

	reply, err := m.readMessage()
	if err != nil {
		m.discardLocked()
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	if reply.Type != messageTypeAuthOK {
		m.discardLocked()
		return &AuthenticationError{Message: reply.Message}
	}

	logging.Info("Session", "Connected to Home Assistant websocket (connection %s)", m.connID)
	return nil
}

// renew asks the supervisor to mint a new ingress session over the already
// authenticated channel. Callers must hold m.mu. A refusal leaves the
// connection open and the token stale; a channel failure discards the
// connection.
func (m *SessionManager) renew(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	request := supervisorRequest{
		ID:       m.requestID,
		Type:     messageTypeSupervisor,
		Endpoint: "/ingress/session",
		Method:   "post",
	}
	m.requestID++

	if err := m.writeMessage(request); err != nil {
		m.discardLocked()
		return fmt.Errorf("failed to send ingress session request: %w", err)
	}

	// Other message kinds (events, pings) can interleave on the shared
	// channel; skip until the matching correlation id arrives.
	var response serverMessage
	for {
		msg, err := m.readMessage()
		if err != nil {
			m.discardLocked()
			return fmt.Errorf("failed to read ingress session response: %w", err)
		}
		if msg.ID == request.ID {
			response = msg
			break
		}
		logging.Debug("Session", "Skipping interleaved message type %q (id %d) while waiting for id %d",
			msg.Type, msg.ID, request.ID)
	}

	if !response.Success {
		return &CredentialRenewalError{Message: response.Message}
	}

	var result ingressSessionResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return &CredentialRenewalError{Message: fmt.Sprintf("malformed result: %v", err)}
	}
	if result.Session == "" {
		return &CredentialRenewalError{Message: "supervisor response contained no session"}
	}

	m.session = result.Session
	m.issuedAt = m.now()
	logging.Debug("Session", "Minted ingress session (request %d, connection %s)", request.ID, m.connID)
	return nil
}

func (m *SessionManager) readMessage() (serverMessage, error) {
	var msg serverMessage
	if m.options.MessageTimeout > 0 {
		if err := m.conn.SetReadDeadline(time.Now().Add(m.options.MessageTimeout)); err != nil {
			return msg, err
		}
	}
	err := m.conn.ReadJSON(&msg)
	return msg, err
}

func (m *SessionManager) writeMessage(v interface{}) error {
	if m.options.MessageTimeout > 0 {
		if err := m.conn.SetWriteDeadline(time.Now().Add(m.options.MessageTimeout)); err != nil {
			return err
		}
	}
	return m.conn.WriteJSON(v)
}

// discardLocked closes and forgets the connection. Callers must hold m.mu.
func (m *SessionManager) discardLocked() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
		logging.Debug("Session", "Discarded websocket connection %s", m.connID)
	}
}
