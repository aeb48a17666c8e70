// Package homeassistant manages the authenticated websocket session to Home
// Assistant that mints short-lived ingress tokens for the Grocy API.
//
// Grocy add-on installs are only reachable through the Home Assistant
// ingress proxy, which requires an ingress_session cookie on every request.
// Those session tokens are minted by the supervisor over the Home Assistant
// websocket API and expire quickly, so the SessionManager keeps one logical
// connection open, performs the auth handshake once, and renews the token
// whenever its age exceeds the freshness window.
//
// Renewal is single-flight: concurrent callers of Token block on one mutex
// and share the result of a single handshake/renewal, so a burst of tool
// calls after expiry produces exactly one supervisor round-trip.
package homeassistant
