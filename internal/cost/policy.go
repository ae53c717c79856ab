package cost

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// JoinDistinctPolicy decides the distinct-value count given to the two
// equated attributes of an equi-join.
type JoinDistinctPolicy int

const (
	// JoinDistinctMin gives both attributes min(Va, Vb): only values present
	// on both sides survive the join.
	JoinDistinctMin JoinDistinctPolicy = iota
	// JoinDistinctMax gives both attributes max(Va, Vb).
	JoinDistinctMax
)

func (p JoinDistinctPolicy) String() string {
	switch p {
	case JoinDistinctMin:
		return "min"
	case JoinDistinctMax:
		return "max"
	default:
		return "unknown"
	}
}

// ParseJoinDistinctPolicy parses "min" or "max". The empty string means min.
func ParseJoinDistinctPolicy(s string) (JoinDistinctPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "min":
		return JoinDistinctMin, nil
	case "max":
		return JoinDistinctMax, nil
	default:
		return 0, errors.Newf("unknown join distinct policy %q", s)
	}
}

func (p JoinDistinctPolicy) apply(va, vb int) int {
	if p == JoinDistinctMax {
		return max(va, vb)
	}
	return min(va, vb)
}
