package pkg

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"targetenc/pkg/encoding"
	"targetenc/pkg/table"
)

// valueSummary describes the defined values of part of an encoded column.
type valueSummary struct {
	Defined int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

type columnSummary struct {
	Rows      int
	Labeled   valueSummary
	Unlabeled valueSummary
}

func summarize(r *encoding.Result) columnSummary {
	values, _ := r.Table.Column(r.Column)
	return columnSummary{
		Rows:      len(values),
		Labeled:   summarizeValues(values[:r.Labeled]),
		Unlabeled: summarizeValues(values[r.Labeled:]),
	}
}

func summarizeValues(values []table.Value) valueSummary {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			defined = append(defined, f)
		}
	}
	s := valueSummary{Defined: len(defined), Missing: len(values) - len(defined)}
	if len(defined) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(defined, nil)
	if len(defined) == 1 {
		s.StdDev = 0
	}
	s.Min = floats.Min(defined)
	s.Max = floats.Max(defined)
	return s
}

func (c columnSummary) LogMetrics(column string) {
	for _, part := range []struct {
		name    string
		summary valueSummary
	}{
		{name: "labeled", summary: c.Labeled},
		{name: "unlabeled", summary: c.Unlabeled},
	} {
		s := part.summary
		if s.Defined+s.Missing == 0 {
			continue
		}
		log.Info().Str("Column", column).
			Str("Partition", part.name).
			Int("Defined", s.Defined).
			Int("Missing", s.Missing).
			Float64("Mean", s.Mean).
			Float64("StdDev", s.StdDev).
			Float64("Min", s.Min).
			Float64("Max", s.Max).
			Msg("")
	}
	log.Info().Str("Column", column).Int("Rows", c.Rows).Msg("Encoded")
}
