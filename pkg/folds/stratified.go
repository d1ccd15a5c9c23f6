// Package folds assigns labeled rows to stratified cross-validation folds.
package folds

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

// ErrConfiguration is returned when the requested folds cannot be built.
var ErrConfiguration = errors.New("configuration error")

// Assignment maps a labeled row position to its fold number.
type Assignment []int

// NumFolds is one more than the largest fold number in the assignment.
func (a Assignment) NumFolds() int {
	n := 0
	for _, f := range a {
		if f+1 > n {
			n = f + 1
		}
	}
	return n
}

// Split returns the out-of-fold (train) and in-fold (val) positions of fold f,
// both in ascending order.
func (a Assignment) Split(f int) (train, val []int) {
	for i, fold := range a {
		if fold == f {
			val = append(val, i)
		} else {
			train = append(train, i)
		}
	}
	return train, val
}

// Sizes returns the number of positions in each fold.
func (a Assignment) Sizes() []int {
	sizes := make([]int, a.NumFolds())
	for _, f := range a {
		sizes[f]++
	}
	return sizes
}

// Stratified partitions len(labels) positions into k folds. Positions of each
// class are shuffled with a PCG source seeded by seed and dealt round-robin, so
// fold sizes and per-class fold counts each differ by at most one.
func Stratified(labels []int, k int, seed uint64) (Assignment, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: number of folds must be at least 2, got %d", ErrConfiguration, k)
	}
	if k > len(labels) {
		return nil, fmt.Errorf("%w: cannot build %d folds from %d rows", ErrConfiguration, k, len(labels))
	}

	byClass := map[int][]int{}
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	for _, class := range classes {
		if n := len(byClass[class]); n < k {
			return nil, fmt.Errorf("%w: class %d has %d rows, fewer than %d folds", ErrConfiguration, class, n, k)
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	assignment := make(Assignment, len(labels))
	next := 0
	for _, class := range classes {
		members := byClass[class]
		rnd.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		for _, position := range members {
			assignment[position] = next % k
			next++
		}
	}
	return assignment, nil
}
