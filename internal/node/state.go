package node

// State is the lifecycle state of a node within one graph instance.
type State int32

const (
	// New nodes have never been instantiated.
	New State = iota
	// Initializing nodes are running their factory and interceptors.
	Initializing
	// Initialized nodes hold a published value.
	Initialized
	// Releasing nodes are unwinding interceptors and releasing their value.
	Releasing
	// Released nodes have been torn down.
	Released
	// Failed is terminal for the node within the current graph instance.
	Failed
)

func (s State) String() string {
	switch s {
	case New:
		return "NEW"
	case Initializing:
		return "INITIALIZING"
	case Initialized:
		return "INITIALIZED"
	case Releasing:
		return "RELEASING"
	case Released:
		return "RELEASED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
