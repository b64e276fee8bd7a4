package session

// State is the day lifecycle state.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	default:
		return "inactive"
	}
}
