// Package encoding implements out-of-fold target encoding of a categorical
// column against a binary target.
//
// Labeled rows are split into stratified folds. The rows of each fold are
// encoded with statistics computed only from the other folds, so no row's
// encoding depends on its own label. Unlabeled rows are encoded with
// statistics over every labeled row.
package encoding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"targetenc/pkg/folds"
	"targetenc/pkg/table"
)

// Method names an encoding scheme.
type Method string

const (
	MethodHoldout  Method = "holdout"
	MethodBayesian Method = "bayesian"
)

func (m Method) estimator(priorWeight float64) (Estimator, string, error) {
	switch m {
	case MethodHoldout:
		return MeanEstimator{}, HoldoutSuffix, nil
	case MethodBayesian:
		return SmoothingEstimator{PriorWeight: priorWeight}, BayesianSuffix, nil
	}
	return nil, "", fmt.Errorf("%w: unknown encoding method %q", ErrConfiguration, m)
}

// Result is an encoded table along with what is needed to reorder it or to
// encode further unlabeled data.
type Result struct {
	// Table holds the labeled rows followed by the unlabeled rows, with the
	// encoded column appended.
	Table *table.Table

	// Column is the name of the encoded column.
	Column string

	// Positions maps each row of Table to its row in the input table.
	Positions []int

	Labeled   int
	Unlabeled int

	// Mapping is the encoding fitted on all labeled rows.
	Mapping *Mapping
}

// Restore returns the encoded table in the row order of the input table.
func (r *Result) Restore() *table.Table {
	order := make([]int, len(r.Positions))
	for row, position := range r.Positions {
		order[position] = row
	}
	return r.Table.Take(order)
}

// Holdout appends Column+"_hte": the mean target of the row's category over
// the out-of-fold labeled rows, or over all labeled rows for unlabeled rows.
func Holdout(t *table.Table, p Parameters) (*Result, error) {
	return Encode(t, MethodHoldout, p)
}

// Bayesian appends Column+"_bte": like Holdout, but each category mean is
// shrunk toward the mean target of the same reference rows with the strength
// of p.PriorWeight.
func Bayesian(t *table.Table, p Parameters) (*Result, error) {
	return Encode(t, MethodBayesian, p)
}

// Encode runs the given method over t.
func Encode(t *table.Table, method Method, p Parameters) (*Result, error) {
	est, suffix, err := method.estimator(p.PriorWeight)
	if err != nil {
		return nil, err
	}
	if err := p.validate(method); err != nil {
		return nil, err
	}
	output := p.Column + suffix
	if t.HasColumn(output) {
		return nil, fmt.Errorf("%w: output column %s already exists", ErrInput, output)
	}

	categories, err := column(t, p.Column)
	if err != nil {
		return nil, err
	}
	targetValues, err := column(t, p.Target)
	if err != nil {
		return nil, err
	}
	flags, err := column(t, p.Partition)
	if err != nil {
		return nil, err
	}

	labeled, unlabeled, err := partition(flags)
	if err != nil {
		return nil, err
	}
	if len(labeled) == 0 {
		return nil, fmt.Errorf("%w: no labeled rows in column %s", ErrInput, p.Partition)
	}

	keys := make([]table.Value, len(labeled))
	targets := make([]float64, len(labeled))
	labels := make([]int, len(labeled))
	for i, row := range labeled {
		label, err := parseLabel(targetValues[row])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: target %s: %s", ErrInput, row, p.Target, err)
		}
		keys[i] = categories[row]
		labels[i] = label
		targets[i] = float64(label)
	}

	assignment, err := folds.Stratified(labels, p.NSplits, p.Seed)
	if err != nil {
		return nil, err
	}
	log.Debug().Ints("FoldSizes", assignment.Sizes()).Uint64("Seed", p.Seed).Msg("Split labeled rows")

	encoded, err := encodeFolds(assignment, p.NSplits, keys, targets, est, p.workers())
	if err != nil {
		return nil, err
	}

	full := NewStatistic(keys, targets, nil)
	unlabeledKeys := make([]table.Value, len(unlabeled))
	for i, row := range unlabeled {
		unlabeledKeys[i] = categories[row]
	}
	var fallback []table.Value
	if len(unlabeled) > 0 {
		fallback = Apply(full, est, unlabeledKeys)
	}

	merged, positions, err := Merge(t, output, labeled, encoded, unlabeled, fallback)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("Method", string(method)).
		Str("Column", output).
		Int("Labeled", len(labeled)).
		Int("Unlabeled", len(unlabeled)).
		Int("Categories", len(full.Groups)).
		Msg("Encoded column")

	return &Result{
		Table:     merged,
		Column:    output,
		Positions: positions,
		Labeled:   len(labeled),
		Unlabeled: len(unlabeled),
		Mapping:   NewMapping(method, p.Column, output, p.PriorWeight, full, est),
	}, nil
}

// encodeFolds fills one value per labeled position. Each fold only writes the
// positions it holds out, so folds can run concurrently without locking.
func encodeFolds(assignment folds.Assignment, k int, keys []table.Value, targets []float64, est Estimator, workers int) ([]table.Value, error) {
	encoded := make([]table.Value, len(keys))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for f := 0; f < k; f++ {
		g.Go(func() error {
			train, val := assignment.Split(f)
			s := NewStatistic(keys, targets, train)
			for _, i := range val {
				encoded[i] = s.Encode(est, keys[i])
			}
			log.Debug().
				Int("Fold", f).
				Int("Train", len(train)).
				Int("Validation", len(val)).
				Int("Categories", len(s.Groups)).
				Float64("Prior", s.Prior()).
				Msg("Encoded fold")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}

func column(t *table.Table, name string) ([]table.Value, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	return values, nil
}

// partition splits row indices by their partition flag.
func partition(flags []table.Value) (labeled, unlabeled []int, err error) {
	for row, v := range flags {
		isLabeled, err := parseFlag(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %s", ErrInput, row, err)
		}
		if isLabeled {
			labeled = append(labeled, row)
		} else {
			unlabeled = append(unlabeled, row)
		}
	}
	return labeled, unlabeled, nil
}

func parseFlag(v table.Value) (bool, error) {
	if f, ok := binary(v); ok {
		return f == 1, nil
	}
	return false, fmt.Errorf("invalid partition flag %s", v)
}

func parseLabel(v table.Value) (int, error) {
	if f, ok := binary(v); ok {
		return int(f), nil
	}
	return 0, fmt.Errorf("expected 0 or 1, got %s", v)
}

// binary reads v as 0 or 1. Strings may hold true/false in any case or a
// number, as CSV cells do.
func binary(v table.Value) (float64, bool) {
	var f float64
	switch v.Kind() {
	case table.Bool, table.Int, table.Float:
		f, _ = v.Float()
	case table.String:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "true":
			f = 1
		case "false":
			f = 0
		default:
			var err error
			if f, err = strconv.ParseFloat(s, 64); err != nil {
				return 0, false
			}
		}
	default:
		return 0, false
	}
	return f, f == 0 || f == 1
}
