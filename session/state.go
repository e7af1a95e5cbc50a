package session

// A ConnState tracks where a connection is in its lifecycle.
// The happy path runs straight through; every failure path jumps
// to StateWrite (to emit an error response) or StateClosed.
type ConnState uint8

const (
	StateReadRequest ConnState = iota
	StateResolve
	StateRender
	StateWrite
	StateClosed
)

var stateNames = map[ConnState]string{
	StateReadRequest: "ReadRequest",
	StateResolve:     "Resolve",
	StateRender:      "Render",
	StateWrite:       "Write",
	StateClosed:      "Closed",
}

func (s ConnState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Next advances along the happy path.
func (s ConnState) Next() ConnState {
	if s >= StateClosed {
		panic("advance past Closed")
	}
	return s + 1
}

// Failed short-circuits a pipeline failure to the write stage,
// where an error response goes out; a failure during the write
// itself means the connection just closes.
func (s ConnState) Failed() ConnState {
	if s >= StateWrite {
		return StateClosed
	}
	return StateWrite
}
