package contentmap

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes one published curriculum: where its manifest lives and
// how its courses are delivered. Only MOC-typed entries take part in
// scheduling and notification sweeps.
type Entry struct {
	ManifestID string `yaml:"-" json:"-"`
	Manifest   string `yaml:"manifest" json:"manifest"`
	Lang       string `yaml:"lang" json:"lang"`
	CourseType string `yaml:"courseType" json:"courseType"`
}

// Map is the content map: manifest id to its published entries.
type Map map[string][]Entry

// Load reads a content map file. YAML superset, so plain JSON content maps
// load unchanged.
func Load(path string) (Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content map %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Map, error) {
	var m Map
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse content map: %w", err)
	}
	for id, entries := range m {
		for i := range entries {
			entries[i].ManifestID = id
		}
		m[id] = entries
	}
	return m, nil
}

// MOCEntries returns the entries with course type MOC, in stable manifest-id
// order so sweeps visit manifests deterministically.
func (m Map) MOCEntries() []Entry {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Entry
	for _, id := range ids {
		for _, e := range m[id] {
			if strings.EqualFold(e.CourseType, "MOC") {
				out = append(out, e)
			}
		}
	}
	return out
}

// ByManifestID resolves the entry for an attempt's manifest id. Stored ids
// carry a "manifest/" prefix the content map keys do not.
func (m Map) ByManifestID(manifestID string) (Entry, bool) {
	key := strings.TrimPrefix(manifestID, "manifest/")
	entries, ok := m[key]
	if !ok || len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}
