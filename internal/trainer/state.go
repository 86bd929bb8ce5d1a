package trainer

// State is the orchestrator's position in a training run.
//
//	Idle → EpochRunning → (BatchDispatch → BatchAwait)* → EpochComplete
//	     → EpochRunning | Finished
type State int32

// Training states.
const (
	Idle State = iota
	EpochRunning
	BatchDispatch
	BatchAwait
	EpochComplete
	Finished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EpochRunning:
		return "epoch-running"
	case BatchDispatch:
		return "batch-dispatch"
	case BatchAwait:
		return "batch-await"
	case EpochComplete:
		return "epoch-complete"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}
