package metadata

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/yashagw/craneopt/internal/record"
)

const statsTreeDegree = 16

func lessStatInfo(a, b *StatInfo) bool {
	return a.tableName < b.tableName
}

// StatsManager keeps the statistics of every known base relation, ordered by name.
type StatsManager struct {
	tableStats *btree.BTreeG[*StatInfo]
	mutex      sync.RWMutex
}

// NewStatsManager creates a new, empty StatsManager instance
func NewStatsManager() *StatsManager {
	return &StatsManager{
		tableStats: btree.NewG[*StatInfo](statsTreeDegree, lessStatInfo),
	}
}

// Register stores the statistics for a relation, replacing earlier ones.
// Relation names are case-insensitive and stored lower-cased.
func (sm *StatsManager) Register(tblName string, relation *record.Relation) error {
	tblName = strings.ToLower(tblName)
	si := NewStatInfo(tblName, relation)
	if err := si.validate(); err != nil {
		return err
	}

	sm.mutex.Lock()
	_, replaced := sm.tableStats.ReplaceOrInsert(si)
	sm.mutex.Unlock()

	if replaced {
		log.Printf("[STATS] Register: Replaced statistics for %s (%s)", tblName, relation)
	} else {
		log.Printf("[STATS] Register: Added statistics for %s (%s)", tblName, relation)
	}
	return nil
}

// GetStatInfo returns statistical information for a given table
func (sm *StatsManager) GetStatInfo(tblName string) (*StatInfo, error) {
	sm.mutex.RLock()
	si, exists := sm.tableStats.Get(&StatInfo{tableName: strings.ToLower(tblName)})
	sm.mutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(ErrUnknownRelation, "%q", tblName)
	}
	return si, nil
}

// Relation returns a copy of the statistics of the named relation.
func (sm *StatsManager) Relation(tblName string) (*record.Relation, error) {
	si, err := sm.GetStatInfo(tblName)
	if err != nil {
		return nil, err
	}
	return si.Relation(), nil
}

// All returns the statistics of every relation in ascending name order.
func (sm *StatsManager) All() []*StatInfo {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	infos := make([]*StatInfo, 0, sm.tableStats.Len())
	sm.tableStats.Ascend(func(si *StatInfo) bool {
		infos = append(infos, si)
		return true
	})
	return infos
}

// Len returns the number of registered relations.
func (sm *StatsManager) Len() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.tableStats.Len()
}

// Analyze computes statistics for every table the TableManager can see and
// registers them.
func (sm *StatsManager) Analyze(ctx context.Context, tm *TableManager) error {
	tables, err := tm.Tables(ctx)
	if err != nil {
		return err
	}
	for _, tblName := range tables {
		rel, err := sm.calcTableStats(ctx, tm, tblName)
		if err != nil {
			return err
		}
		if err := sm.Register(tblName, rel); err != nil {
			return err
		}
	}
	return nil
}

// calcTableStats counts the rows of a table and the distinct values of each column.
func (sm *StatsManager) calcTableStats(ctx context.Context, tm *TableManager, tblName string) (*record.Relation, error) {
	log.Printf("[STATS] calcTableStats: Starting scan of table %s", tblName)

	columns, err := tm.Columns(ctx, tblName)
	if err != nil {
		return nil, err
	}
	numRecs, err := tm.CountRows(ctx, tblName)
	if err != nil {
		return nil, err
	}

	rel := record.NewRelation(numRecs)
	for _, column := range columns {
		distinct, err := tm.CountDistinct(ctx, tblName, column)
		if err != nil {
			return nil, err
		}
		// An empty column still has one (null) value for estimation purposes.
		if distinct < 1 {
			distinct = 1
		}
		rel.AddAttribute(column, distinct)
	}

	log.Printf("[STATS] calcTableStats: Completed scan of %s: %s", tblName, rel)
	return rel, nil
}
