package encoding

import "targetenc/pkg/table"

// Group accumulates the targets of one category value.
type Group struct {
	Count int
	Sum   float64
}

func (g Group) Mean() float64 {
	return g.Sum / float64(g.Count)
}

// Statistic holds per-category target sums over a reference set of rows
// together with the totals over that same set.
type Statistic struct {
	Groups map[table.Value]Group
	Count  int
	Sum    float64
}

// NewStatistic aggregates targets by key over rows. A nil rows slice means
// every position.
func NewStatistic(keys []table.Value, targets []float64, rows []int) *Statistic {
	s := &Statistic{Groups: map[table.Value]Group{}}
	add := func(i int) {
		g := s.Groups[keys[i]]
		g.Count++
		g.Sum += targets[i]
		s.Groups[keys[i]] = g
		s.Count++
		s.Sum += targets[i]
	}
	if rows == nil {
		for i := range keys {
			add(i)
		}
	} else {
		for _, i := range rows {
			add(i)
		}
	}
	return s
}

// Prior is the mean target over the whole reference set.
func (s *Statistic) Prior() float64 {
	return s.Sum / float64(s.Count)
}

// Encode returns the estimate for key, or a missing value when key never
// occurred in the reference rows.
func (s *Statistic) Encode(est Estimator, key table.Value) table.Value {
	g, ok := s.Groups[key]
	if !ok {
		return table.MissingValue()
	}
	return table.FloatValue(est.Estimate(g, s.Prior()))
}

// Estimator turns a category's group and the reference prior into a value.
type Estimator interface {
	Estimate(g Group, prior float64) float64
}

// MeanEstimator is the raw group mean.
type MeanEstimator struct{}

func (MeanEstimator) Estimate(g Group, _ float64) float64 {
	return g.Mean()
}

// SmoothingEstimator shrinks the group mean toward the prior with the
// strength of PriorWeight pseudo-observations.
type SmoothingEstimator struct {
	PriorWeight float64
}

func (e SmoothingEstimator) Estimate(g Group, prior float64) float64 {
	return (g.Sum + prior*e.PriorWeight) / (float64(g.Count) + e.PriorWeight)
}
