package encoding

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"targetenc/pkg/folds"
)

var (
	// ErrConfiguration reports invalid encoder parameters, including fold
	// counts that the labeled rows cannot support.
	ErrConfiguration = folds.ErrConfiguration

	// ErrInput reports a table that cannot be encoded as requested.
	ErrInput = errors.New("input error")
)

const (
	DefaultPartition    = "train"
	DefaultNSplits      = 10
	DefaultHoldoutSeed  = 123
	DefaultBayesianSeed = 300
	DefaultPriorWeight  = 100.0

	HoldoutSuffix  = "_hte"
	BayesianSuffix = "_bte"
)

// Parameters configures a single column encoding.
type Parameters struct {
	// Column is the categorical column to encode.
	Column string

	// Target is the binary 0/1 label column. It is only read on labeled rows.
	Target string

	// Partition is the boolean column telling labeled rows (true) from
	// unlabeled rows (false).
	Partition string

	// NSplits is the number of cross-validation folds. Callers should use the
	// same NSplits and Seed as their downstream model validation.
	NSplits int
	Seed    uint64

	// PriorWeight is the smoothing strength of the Bayesian encoder.
	PriorWeight float64

	// Workers bounds the number of folds encoded concurrently. Zero means
	// GOMAXPROCS.
	Workers int
}

func DefaultHoldoutParameters(column, target string) Parameters {
	return Parameters{
		Column:    column,
		Target:    target,
		Partition: DefaultPartition,
		NSplits:   DefaultNSplits,
		Seed:      DefaultHoldoutSeed,
	}
}

func DefaultBayesianParameters(column, target string) Parameters {
	return Parameters{
		Column:      column,
		Target:      target,
		Partition:   DefaultPartition,
		NSplits:     DefaultNSplits,
		Seed:        DefaultBayesianSeed,
		PriorWeight: DefaultPriorWeight,
	}
}

func (p Parameters) validate(method Method) error {
	switch {
	case p.Column == "":
		return fmt.Errorf("%w: no category column given", ErrInput)
	case p.Target == "":
		return fmt.Errorf("%w: no target column given", ErrInput)
	case p.Partition == "":
		return fmt.Errorf("%w: no partition column given", ErrInput)
	case p.Column == p.Target:
		return fmt.Errorf("%w: category column %s is also the target", ErrInput, p.Column)
	}
	if p.NSplits < 2 {
		return fmt.Errorf("%w: number of folds must be at least 2, got %d", ErrConfiguration, p.NSplits)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrConfiguration, p.Workers)
	}
	if method == MethodBayesian && (p.PriorWeight < 0 || math.IsNaN(p.PriorWeight) || math.IsInf(p.PriorWeight, 0)) {
		return fmt.Errorf("%w: prior weight must be a finite non-negative number, got %v", ErrConfiguration, p.PriorWeight)
	}
	return nil
}

func (p Parameters) workers() int {
	if p.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return p.Workers
}
