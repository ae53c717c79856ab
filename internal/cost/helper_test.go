package cost

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/record"
)

// relationSpec describes a catalogue relation for tests: tuple count plus
// attribute name / distinct-value pairs in order.
type relationSpec struct {
	tuples int
	attrs  []record.Attribute
}

func attr(name string, distinct int) record.Attribute {
	return record.NewAttribute(name, distinct)
}

// setupCatalog registers the given relations in a fresh catalogue.
func setupCatalog(t *testing.T, relations map[string]relationSpec) *metadata.Manager {
	m := metadata.NewManager()
	for name, rs := range relations {
		rel := record.NewRelation(rs.tuples)
		for _, a := range rs.attrs {
			rel.AddAttribute(a.Name(), a.DistinctValues())
		}
		require.NoError(t, m.Register(name, rel))
	}
	return m
}
