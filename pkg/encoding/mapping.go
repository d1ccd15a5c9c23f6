package encoding

import (
	"fmt"
	"sort"

	"targetenc/pkg/table"
)

// MappingEntry is the fitted encoding of one category value.
type MappingEntry struct {
	Kind     string  `json:"kind"`
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Encoded  float64 `json:"encoded"`
}

// Mapping is a category to value lookup fitted on every labeled row. It can
// be stored and later applied to new unlabeled data.
type Mapping struct {
	Method      Method         `json:"method"`
	Column      string         `json:"column"`
	Output      string         `json:"output"`
	PriorWeight float64        `json:"prior_weight"`
	Prior       float64        `json:"prior"`
	Count       int            `json:"count"`
	Entries     []MappingEntry `json:"entries"`
}

func NewMapping(method Method, column, output string, priorWeight float64, s *Statistic, est Estimator) *Mapping {
	keys := make([]table.Value, 0, len(s.Groups))
	for key := range s.Groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	m := &Mapping{
		Method:  method,
		Column:  column,
		Output:  output,
		Prior:   s.Prior(),
		Count:   s.Count,
		Entries: make([]MappingEntry, len(keys)),
	}
	if method == MethodBayesian {
		m.PriorWeight = priorWeight
	}
	for i, key := range keys {
		g := s.Groups[key]
		m.Entries[i] = MappingEntry{
			Kind:     key.Kind().String(),
			Category: key.Text(),
			Count:    g.Count,
			Mean:     g.Mean(),
			Encoded:  est.Estimate(g, m.Prior),
		}
	}
	return m
}

// Lookup rebuilds the category keys of the mapping.
func (m *Mapping) Lookup() (map[table.Value]float64, error) {
	lookup := make(map[table.Value]float64, len(m.Entries))
	for i, e := range m.Entries {
		kind, err := table.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		key, err := table.ParseAs(kind, e.Category)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, ok := lookup[key]; ok {
			return nil, fmt.Errorf("entry %d: duplicate category %s", i, key)
		}
		lookup[key] = e.Encoded
	}
	return lookup, nil
}

// Apply encodes every row of t as unlabeled and appends the Output column.
func (m *Mapping) Apply(t *table.Table) (*table.Table, error) {
	lookup, err := m.Lookup()
	if err != nil {
		return nil, err
	}
	if t.HasColumn(m.Output) {
		return nil, fmt.Errorf("%w: output column %s already exists", ErrInput, m.Output)
	}
	categories, err := column(t, m.Column)
	if err != nil {
		return nil, err
	}
	encoded := make([]table.Value, len(categories))
	for i, key := range categories {
		if v, ok := lookup[key]; ok {
			encoded[i] = table.FloatValue(v)
		}
	}
	return t.WithColumn(m.Output, encoded)
}
