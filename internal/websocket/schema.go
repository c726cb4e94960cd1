package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventPong     Event = "pong"
	EventError    Event = "error"
)

// SnapshotMessage carries a full dashboard statistics snapshot. One is sent
// on connect and after every record mutation.
type SnapshotMessage struct {
	Event Event       `json:"event"`
	Stats interface{} `json:"stats"`
}

type PongMessage struct {
	Event Event `json:"event"`
}

type ErrorMessage struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
