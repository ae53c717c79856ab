package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/record"
)

// StatInfo holds the statistics of one base relation.
type StatInfo struct {
	tableName string
	relation  *record.Relation
}

// NewStatInfo creates a new StatInfo instance. The relation is copied.
func NewStatInfo(tableName string, relation *record.Relation) *StatInfo {
	return &StatInfo{
		tableName: tableName,
		relation:  relation.Clone(),
	}
}

// TableName returns the name of the relation the statistics describe.
func (s *StatInfo) TableName() string {
	return s.tableName
}

// RecordsOutput returns the number of records in this table
func (s *StatInfo) RecordsOutput() int {
	return s.relation.Tuples()
}

// Relation returns a copy of the statistics as a relation shape.
func (s *StatInfo) Relation() *record.Relation {
	return s.relation.Clone()
}

// validate checks that the relation has a name, a non-negative tuple count
// and at least one distinct value per attribute.
func (s *StatInfo) validate() error {
	if s.tableName == "" {
		return errors.Wrap(ErrInvalidStatistics, "empty relation name")
	}
	if s.relation.Tuples() < 0 {
		return errors.Wrapf(ErrInvalidStatistics, "relation %s: negative tuple count %d", s.tableName, s.relation.Tuples())
	}
	for _, attr := range s.relation.Attributes() {
		if attr.DistinctValues() < 1 {
			return errors.Wrapf(ErrInvalidStatistics, "relation %s: attribute %s has %d distinct values",
				s.tableName, attr.Name(), attr.DistinctValues())
		}
	}
	return nil
}
