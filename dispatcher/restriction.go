package dispatcher

// Restriction controls how a submitted task competes for worker capacity
// against other tasks, mirroring asynqro's RestrictionType.
type Restriction int

const (
	// None imposes no restriction beyond the dispatcher's overall capacity.
	None Restriction = iota
	// Intensive caps concurrently-running tasks sharing this restriction to
	// IntensiveCapacity (by default the number of logical CPUs), regardless
	// of restrictor name — all Intensive tasks share one pool of slots.
	Intensive
	// Custom caps concurrently-running tasks under a named restrictor to a
	// capacity registered via Dispatcher.AddCustomRestrictor (or
	// DefaultCustomCapacity if never registered).
	Custom
	// ThreadBound pins all tasks sharing a restrictor key to the same
	// worker, guaranteeing they never run concurrently with each other and
	// always execute on the same goroutine/worker.
	ThreadBound
)

// String renders the restriction for logging.
func (r Restriction) String() string {
	switch r {
	case None:
		return "none"
	case Intensive:
		return "intensive"
	case Custom:
		return "custom"
	case ThreadBound:
		return "thread-bound"
	default:
		return "unknown"
	}
}
