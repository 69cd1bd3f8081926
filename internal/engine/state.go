package engine

// ClientState mirrors the engine's client connection state.
type ClientState int

// Client states in engine order.
const (
	ClientDedicated ClientState = iota
	ClientDisconnected
	ClientConnecting
	ClientConnected
	ClientUninitialized
	ClientActive
)

// Simulating returns true in the two states where the client runs movement:
// while the level finishes spawning and while fully active.
func (s ClientState) Simulating() bool {
	return s == ClientUninitialized || s == ClientActive
}

func (s ClientState) String() string {
	switch s {
	case ClientDedicated:
		return "dedicated"
	case ClientDisconnected:
		return "disconnected"
	case ClientConnecting:
		return "connecting"
	case ClientConnected:
		return "connected"
	case ClientUninitialized:
		return "uninitialized"
	case ClientActive:
		return "active"
	default:
		return "unknown"
	}
}

// Capabilities records which engine functions and variables the hooking layer
// managed to locate. The recorder refuses to run without the ones it reads.
type Capabilities struct {
	CLMove             bool
	ClientStatic       bool
	FrametimeRemainder bool
	HostFrametime      bool
	SVFrame            bool
	ServerState        bool

	// CmdStart is the server-side hook that delivers user commands. Without it
	// the callbacks are never meaningful, but the console commands still exist.
	CmdStart bool
}

// AllCapabilities returns a fully populated set, as for a supported engine build.
func AllCapabilities() Capabilities {
	return Capabilities{
		CLMove:             true,
		ClientStatic:       true,
		FrametimeRemainder: true,
		HostFrametime:      true,
		SVFrame:            true,
		ServerState:        true,
		CmdStart:           true,
	}
}

// Enabled reports whether the recording console commands may run.
func (c Capabilities) Enabled() bool {
	return c.CLMove &&
		c.ClientStatic &&
		c.FrametimeRemainder &&
		c.HostFrametime &&
		c.SVFrame &&
		c.ServerState
}

// CanObserve reports whether lifecycle callbacks carry usable data.
func (c Capabilities) CanObserve() bool {
	return c.CmdStart
}
