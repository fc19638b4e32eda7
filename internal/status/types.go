package status

// Status is the gateway-reported lifecycle state of a session. Values the
// gateway adds later pass through unchanged.
type Status string

const (
	Stopped       Status = "STOPPED"
	Starting      Status = "STARTING"
	ScanQRCode    Status = "SCAN_QR_CODE"
	Authenticated Status = "AUTHENTICATED"
	Working       Status = "WORKING"
	Failed        Status = "FAILED"
	Error         Status = "ERROR"
)

// LoggedIn reports whether the session is paired and needs no QR.
func (s Status) LoggedIn() bool {
	return s == Working || s == Authenticated
}

// expectedTransitions is the lifecycle the gateway normally follows.
// FAILED and ERROR are reachable from anywhere and are not terminal.
// The gateway stays authoritative: other moves are logged, not rejected.
var expectedTransitions = map[Status][]Status{
	Stopped:       {Starting},
	Starting:      {ScanQRCode, Authenticated, Working, Stopped},
	ScanQRCode:    {Authenticated, Working, Starting, Stopped},
	Authenticated: {Working, Stopped, Starting},
	Working:       {Stopped, Starting, ScanQRCode},
	Failed:        {Starting, Stopped},
	Error:         {Starting, Stopped, ScanQRCode, Authenticated, Working},
}

// Expected reports whether moving from one status to another follows the
// documented lifecycle.
func Expected(from, to Status) bool {
	if from == to || to == Failed || to == Error {
		return true
	}
	for _, s := range expectedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Info is a session snapshot as returned by the gateway.
type Info struct {
	Name   string  `json:"name"`
	Status Status  `json:"status"`
	Me     *Me     `json:"me,omitempty"`
	Engine *Engine `json:"engine,omitempty"`
}

// Me identifies the paired account.
type Me struct {
	ID       string `json:"id"`
	PushName string `json:"pushName"`
}

// Engine describes the gateway's backend for the session.
type Engine struct {
	Engine string `json:"engine"`
	State  string `json:"state"`
}

// User returns the paired account's display name, its id, or "-".
func (i Info) User() string {
	switch {
	case i.Me == nil:
		return "-"
	case i.Me.PushName != "":
		return i.Me.PushName
	case i.Me.ID != "":
		return i.Me.ID
	}
	return "-"
}

// EngineLabel renders "ENGINE (state)" or "-".
func (i Info) EngineLabel() string {
	if i.Engine == nil || i.Engine.Engine == "" {
		return "-"
	}
	if i.Engine.State == "" {
		return i.Engine.Engine
	}
	return i.Engine.Engine + " (" + i.Engine.State + ")"
}

// Change is the bus payload for session.status_changed.
type Change struct {
	From Status
	To   Status
	Info Info
}
