package firing

// State is a step of the firing state machine.
type State int

const (
	Idle State = iota
	EnabledSetComputed
	PriorityFiltered
	Selected
	NoneEnabled
)

var stateNames = [...]string{
	Idle:               "idle",
	EnabledSetComputed: "enabled-set-computed",
	PriorityFiltered:   "priority-filtered",
	Selected:           "selected",
	NoneEnabled:        "none-enabled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
