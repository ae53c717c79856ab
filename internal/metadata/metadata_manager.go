package metadata

import (
	"context"
	"io"
	"log"

	"github.com/yashagw/craneopt/internal/record"
)

// Manager is the catalogue used by the planner. Statistics come from YAML
// files, from analysing SQLite databases, or from direct registration.
type Manager struct {
	statsManager *StatsManager
}

func NewManager() *Manager {
	return &Manager{
		statsManager: NewStatsManager(),
	}
}

// Register adds or replaces the statistics of one relation.
func (m *Manager) Register(tableName string, relation *record.Relation) error {
	return m.statsManager.Register(tableName, relation)
}

// LoadFile registers every relation of a YAML statistics file.
func (m *Manager) LoadFile(path string) error {
	log.Printf("[CATALOG] LoadFile: Loading statistics from %s", path)
	if err := ReadStatsFile(path, m.statsManager); err != nil {
		return err
	}
	log.Printf("[CATALOG] LoadFile: %d relation(s) known", m.statsManager.Len())
	return nil
}

// AnalyzeSQLite registers statistics computed from the tables of a SQLite database.
func (m *Manager) AnalyzeSQLite(ctx context.Context, path string) error {
	log.Printf("[CATALOG] AnalyzeSQLite: Analysing %s", path)
	tm, err := OpenTableManager(path)
	if err != nil {
		return err
	}
	defer tm.Close()

	if err := m.statsManager.Analyze(ctx, tm); err != nil {
		return err
	}
	log.Printf("[CATALOG] AnalyzeSQLite: %d relation(s) known", m.statsManager.Len())
	return nil
}

// Dump writes the whole catalogue as YAML.
func (m *Manager) Dump(w io.Writer) error {
	return EncodeStats(w, m.statsManager)
}

func (m *Manager) Relation(tableName string) (*record.Relation, error) {
	return m.statsManager.Relation(tableName)
}

func (m *Manager) GetStatInfo(tableName string) (*StatInfo, error) {
	return m.statsManager.GetStatInfo(tableName)
}

// Relations returns the statistics of every relation in name order.
func (m *Manager) Relations() []*StatInfo {
	return m.statsManager.All()
}
