package orders

type Status string

const (
	StatusPending Status = "pending"
	StatusOrdered Status = "ordered"
)

var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusOrdered: true},
	StatusOrdered: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
