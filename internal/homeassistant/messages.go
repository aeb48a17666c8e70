package homeassistant

import "encoding/json"

// Message kinds used by the Home Assistant websocket API during the auth
// handshake and supervisor calls.
const (
	messageTypeAuthRequired = "auth_required"
	messageTypeAuth         = "auth"
	messageTypeAuthOK       = "auth_ok"
	messageTypeAuthInvalid  = "auth_invalid"
	messageTypeSupervisor   = "supervisor/api"
)

// serverMessage is the envelope for every message received over the
// websocket. Only the fields relevant to the handshake and supervisor
// responses are decoded; everything else is ignored.
type serverMessage struct {
	ID      int             `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success bool            `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// authMessage authenticates the websocket with a long-lived access token.
type authMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

// supervisorRequest asks the Home Assistant supervisor to perform an API
// call on our behalf. The ID correlates the response on the shared channel.
type supervisorRequest struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
}

// ingressSessionResult is the supervisor response payload for
// POST /ingress/session.
type ingressSessionResult struct {
	Session string `json:"session"`
}
