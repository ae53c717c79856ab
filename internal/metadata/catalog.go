package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/record"
)

var (
	// ErrUnknownRelation is returned when a relation is not in the catalogue.
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrInvalidStatistics is returned when registered statistics break the
	// catalogue's invariants.
	ErrInvalidStatistics = errors.New("invalid statistics")
)

// Catalog supplies the statistics of base relations.
type Catalog interface {
	// Relation returns the statistics of the named base relation. The caller
	// owns the returned value.
	Relation(name string) (*record.Relation, error)
}

var (
	_ Catalog = (*Manager)(nil)
	_ Catalog = (*StatsManager)(nil)
)
