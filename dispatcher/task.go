package dispatcher

// intensiveRestrictorKey is the single shared restrictor name all Intensive
// tasks are filed under, so they all compete for one pool-wide concurrency
// budget instead of each task having its own.
const intensiveRestrictorKey = "_"

// taskInfo is one queued unit of work together with the restriction it is
// subject to while being scheduled.
type taskInfo struct {
	run         func()
	restriction Restriction
	restrictor  string
}

func (t taskInfo) schedulingRestrictor() string {
	if t.restriction == Intensive {
		return intensiveRestrictorKey
	}

	return t.restrictor
}
