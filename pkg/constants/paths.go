package constants

// HTTP paths shared between the router and tests.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathStreams = "/api/streams"
	PathWS      = "/ws"
)
