// Package grocy is the HTTP client layer for the Grocy API behind the Home
// Assistant ingress proxy.
//
// Client is the single dispatch point for every outbound call: it attaches
// the ingress session cookie and the static API key, bounds each attempt
// with a timeout, and retries transient faults (5xx responses, network
// errors) up to a fixed attempt budget with a constant backoff. Client
// errors (4xx) are never retried and surface immediately with full
// diagnostic context.
//
// Repository builds the domain operations (stock, products, shopping lists,
// master data) on top of Client. Domain payloads are treated as opaque JSON
// except where tools need structured fields.
package grocy
