package encoding

import "targetenc/pkg/table"

// Apply encodes every key with the statistic. Keys absent from the statistic
// stay missing; they are never replaced by a default.
func Apply(s *Statistic, est Estimator, keys []table.Value) []table.Value {
	result := make([]table.Value, len(keys))
	for i, key := range keys {
		result[i] = s.Encode(est, key)
	}
	return result
}

// Merge appends column to the labeled rows and to the unlabeled rows of t and
// stacks them, labeled rows first. Both groups keep their relative input
// order. The returned positions give the input row of every output row.
func Merge(t *table.Table, column string, labeled []int, labeledValues []table.Value, unlabeled []int, unlabeledValues []table.Value) (*table.Table, []int, error) {
	top, err := t.Take(labeled).WithColumn(column, labeledValues)
	if err != nil {
		return nil, nil, err
	}
	bottom, err := t.Take(unlabeled).WithColumn(column, unlabeledValues)
	if err != nil {
		return nil, nil, err
	}
	merged, err := table.Concat(top, bottom)
	if err != nil {
		return nil, nil, err
	}
	positions := make([]int, 0, len(labeled)+len(unlabeled))
	positions = append(positions, labeled...)
	positions = append(positions, unlabeled...)
	return merged, positions, nil
}
