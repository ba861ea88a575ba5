package api

// HTTP routes served by the sync server
const (
	PathSync    = "/api/v1/sync"
	PathOps     = "/api/v1/ops"
	PathWS      = "/api/v1/ws"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)

// EncodingSnappy is the Content-Encoding / Accept-Encoding token for
// snappy block compressed bodies
const EncodingSnappy = "snappy"

// Websocket message types
const (
	WSTypeSync  = "sync"
	WSTypeOp    = "op"
	WSTypeError = "error"
)

// WSMessage is one JSON frame on the websocket transport. Every request
// carries an ID that the response echoes.
type WSMessage struct {
	Envelope *SyncEnvelope    `json:"envelope,omitempty"`
	Deliver  *DeliverRequest  `json:"deliver,omitempty"`
	Ack      *DeliverResponse `json:"ack,omitempty"`
	Type     string           `json:"type"`
	ID       string           `json:"id"`
	Error    string           `json:"error,omitempty"`
}
