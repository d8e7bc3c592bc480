package protocol

// BootstrapResponse answers the observer's initial HTTP request with enough
// to interpret the event stream.
type BootstrapResponse struct {
	ProtocolVersion string   `json:"protocol_version"`
	ScenarioName    string   `json:"scenario_name"`
	Tick            uint64   `json:"tick"`
	GridU           uint32   `json:"grid_u"`
	GridV           uint32   `json:"grid_v"`
	Seed            int64    `json:"seed"`
	TickRateHz      int      `json:"tick_rate_hz"`
	Cities          []string `json:"cities"`
}

// SubscribeMsg opens (or retunes) an observer session.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// EveryTicks thins the TICK stream; 0 means every tick.
	EveryTicks int `json:"every_ticks,omitempty"`
}

// Event kinds carried by EventMsg.
const (
	EventCityAdded    = "CITY_ADDED"
	EventUnitAdded    = "UNIT_ADDED"
	EventAgentAdded   = "AGENT_ADDED"
	EventAgentRemoved = "AGENT_REMOVED"
	EventWarning      = "WARNING"
)

// EventMsg is one listener callback rendered for the wire.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Kind            string `json:"kind"`
	City            string `json:"city,omitempty"`
	EntityID        uint32 `json:"entity_id,omitempty"`
	EntityType      string `json:"entity_type,omitempty"`
	Position        [3]float32 `json:"position,omitempty"`
	Detail          string `json:"detail,omitempty"`
}

// TickMsg carries the per-tick state digest.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`
	Agents          int    `json:"agents"`
}
