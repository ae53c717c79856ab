package metadata

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/record"
	"gopkg.in/yaml.v3"
)

// statsFile is the on-disk YAML layout of a catalogue. Lists are used instead
// of maps so that attribute order survives a round trip.
type statsFile struct {
	Relations []relationEntry `yaml:"relations"`
}

type relationEntry struct {
	Name       string           `yaml:"name"`
	Tuples     int              `yaml:"tuples"`
	Attributes []attributeEntry `yaml:"attributes"`
}

type attributeEntry struct {
	Name     string `yaml:"name"`
	Distinct int    `yaml:"distinct"`
}

// DecodeStats reads a YAML catalogue from r and registers every relation in
// sm. Nothing is registered unless the whole catalogue is valid.
func DecodeStats(r io.Reader, sm *StatsManager) error {
	var file statsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "decode statistics")
	}

	infos := make([]*StatInfo, 0, len(file.Relations))
	seen := make(map[string]bool, len(file.Relations))
	for _, entry := range file.Relations {
		tblName := strings.ToLower(entry.Name)
		if seen[tblName] {
			return errors.Wrapf(ErrInvalidStatistics, "duplicate relation %s", entry.Name)
		}
		seen[tblName] = true

		rel := record.NewRelation(entry.Tuples)
		for _, attr := range entry.Attributes {
			// Queries are lower-cased by the lexer.
			name := strings.ToLower(attr.Name)
			if rel.HasAttribute(name) {
				return errors.Wrapf(ErrInvalidStatistics, "relation %s: duplicate attribute %s", entry.Name, attr.Name)
			}
			rel.AddAttribute(name, attr.Distinct)
		}
		si := NewStatInfo(tblName, rel)
		if err := si.validate(); err != nil {
			return err
		}
		infos = append(infos, si)
	}

	for _, si := range infos {
		if err := sm.Register(si.TableName(), si.relation); err != nil {
			return err
		}
	}
	return nil
}

// EncodeStats writes every relation of sm to w as YAML, in name order.
func EncodeStats(w io.Writer, sm *StatsManager) error {
	var file statsFile
	for _, si := range sm.All() {
		rel := si.Relation()
		entry := relationEntry{
			Name:   si.TableName(),
			Tuples: si.RecordsOutput(),
		}
		for _, attr := range rel.Attributes() {
			entry.Attributes = append(entry.Attributes, attributeEntry{
				Name:     attr.Name(),
				Distinct: attr.DistinctValues(),
			})
		}
		file.Relations = append(file.Relations, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return errors.Wrap(err, "encode statistics")
	}
	return enc.Close()
}

// ReadStatsFile loads the YAML catalogue at path into sm.
func ReadStatsFile(path string, sm *StatsManager) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open statistics file %s", path)
	}
	defer f.Close()
	return DecodeStats(f, sm)
}
