package render

// State is a step of the render lifecycle.
type State int

const (
	StateLoading State = iota
	StateNetworkIdle
	StateAwaitingDiagrams
	StateSettling
	StateReadyToCapture
	StateFailed
)

var stateNames = [...]string{
	StateLoading:          "loading",
	StateNetworkIdle:      "network-idle",
	StateAwaitingDiagrams: "awaiting-diagrams",
	StateSettling:         "settling",
	StateReadyToCapture:   "ready-to-capture",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateReadyToCapture || s == StateFailed
}
