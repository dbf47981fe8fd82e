package validation

// instrument.go groups dataset rows into instruments.
//
// An instrument is the set of rows sharing the same values across all
// instrument-role columns. Keys are deterministic composites: the
// (variable, value) pairs sorted by variable name and joined as
// "var:value" segments with "|". Key values are normalized to strings
// explicitly, so "1", "1.0" and a numeric 1 group together.

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mquintana/itemcheck/internal/dataset"
)

const (
	// DefaultInstrumentKey identifies the single instrument used when no
	// instrument variables are configured.
	DefaultInstrumentKey = "default_instrument"

	// DefaultInstrumentDisplay is the human-readable name of the default
	// instrument.
	DefaultInstrumentDisplay = "Toda la base de datos"
)

// Instrument is one logical grouping of dataset rows.
type Instrument struct {
	Key         string            `json:"key"`
	DisplayName string            `json:"display_name"`
	Values      map[string]string `json:"values,omitempty"`
	RowIndices  []int             `json:"row_indices"`
}

// Size returns the number of rows in the instrument.
func (in *Instrument) Size() int {
	return len(in.RowIndices)
}

// Partition is the instrument map for one validation run. Instruments
// are derived, never stored: the partition is recomputed from dataset +
// schema on every run.
type Partition struct {
	byKey map[string]*Instrument
	keys  []string
}

// BuildPartition groups rows by the tuple of instrument-variable values.
// With no instrument variables it produces exactly one instrument
// holding every row. Identical input always yields identical keys and
// identical membership, independent of row order.
func BuildPartition(d *dataset.Dataset, instrumentVars []string) *Partition {
	byKey := make(map[string]*Instrument)

	if len(instrumentVars) == 0 {
		all := &Instrument{
			Key:         DefaultInstrumentKey,
			DisplayName: DefaultInstrumentDisplay,
			RowIndices:  make([]int, d.Len()),
		}
		for i := range all.RowIndices {
			all.RowIndices[i] = i
		}
		byKey[all.Key] = all
		return &Partition{byKey: byKey, keys: []string{all.Key}}
	}

	vars := append([]string{}, instrumentVars...)
	sort.Strings(vars)

	for row := 0; row < d.Len(); row++ {
		values := make(map[string]string, len(vars))
		parts := make([]string, 0, len(vars))
		for _, v := range vars {
			raw, _ := d.Value(row, v)
			val := NormalizeValue(raw)
			values[v] = val
			parts = append(parts, v+":"+val)
		}
		key := strings.Join(parts, "|")

		inst, ok := byKey[key]
		if !ok {
			inst = &Instrument{
				Key:         key,
				DisplayName: DisplayNameForKey(key),
				Values:      values,
			}
			byKey[key] = inst
		}
		inst.RowIndices = append(inst.RowIndices, row)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Partition{byKey: byKey, keys: keys}
}

// Len returns the number of instruments.
func (p *Partition) Len() int {
	return len(p.keys)
}

// Keys returns the instrument keys in sorted order.
func (p *Partition) Keys() []string {
	return p.keys
}

// Get returns the instrument for a key.
func (p *Partition) Get(key string) (*Instrument, bool) {
	in, ok := p.byKey[key]
	return in, ok
}

// Instruments returns all instruments in key order.
func (p *Partition) Instruments() []*Instrument {
	out := make([]*Instrument, len(p.keys))
	for i, k := range p.keys {
		out[i] = p.byKey[k]
	}
	return out
}

// DisplayNameForKey renders an instrument key for humans:
// "Año:2023|Forma:A" becomes "Año: 2023 - Forma: A".
func DisplayNameForKey(key string) string {
	if key == DefaultInstrumentKey {
		return DefaultInstrumentDisplay
	}
	name := strings.ReplaceAll(key, "|", " - ")
	return strings.ReplaceAll(name, ":", ": ")
}

// NormalizeValue renders a cell value for key building and value
// comparison. Integral numerics lose their decimal tail so "4" and
// "4.0" compare equal; everything else is the trimmed string itself.
func NormalizeValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
