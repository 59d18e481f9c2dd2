package core

// State is the position of a banking session in its lifecycle
type State uint8

const (
	Idle State = iota
	CardPresent
	PinEntry
	Authenticated
	TransactionInProgress
	Dispensing
	Completed
	Failed
)

// UnknownStateName is reported for values outside the enumerated set
const UnknownStateName = "UNKNOWN"

var stateNames = map[State]string{
	Idle:                  "IDLE",
	CardPresent:           "CARD_PRESENT",
	PinEntry:              "PIN_ENTRY",
	Authenticated:         "AUTHENTICATED",
	TransactionInProgress: "TRANSACTION",
	Dispensing:            "DISPENSING",
	Completed:             "COMPLETED",
	Failed:                "FAILED",
}

// States lists every valid state in declaration order
func States() []State {
	return []State{Idle, CardPresent, PinEntry, Authenticated, TransactionInProgress, Dispensing, Completed, Failed}
}

// NameOf returns the diagnostic label of a state. It never fails.
func NameOf(s State) string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return UnknownStateName
}

func (s State) String() string {
	return NameOf(s)
}

// Valid reports whether s is one of the enumerated states
func (s State) Valid() bool {
	_, ok := stateNames[s]
	return ok
}
