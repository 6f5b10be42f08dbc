package enums

import "fmt"

// Priority ranks curated products and the monitor events they match.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRanks = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// IsValid checks whether the given priority matches the canonical enum.
func (p Priority) IsValid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank returns the ordering value used when comparing priorities.
// Unknown priorities rank lowest.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether p ranks at or above the given floor.
func (p Priority) AtLeast(floor Priority) bool {
	return p.Rank() >= floor.Rank()
}

// ParsePriority converts raw strings into Priority.
func ParsePriority(value string) (Priority, error) {
	candidate := Priority(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid priority %q", value)
}
