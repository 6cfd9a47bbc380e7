package cts

// Layout is a versioned site-record structure. Layout1 records carry no
// allele-state strings (states are implied 0/1 indicators); Layout2 records
// carry explicit ancestral and derived states.
type Layout uint32

const (
	Layout1 Layout = iota + 1
	Layout2
)

func (l Layout) String() string {
	switch l {
	case Layout1:
		return "Layout1"
	case Layout2:
		return "Layout2"

	default:
		return "Illegal selection"
	}
}
