package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// completed and rejected are terminal; nothing transitions back to pending.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusRejected: true},
	StatusCompleted: {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
