package game

import (
	"maps"
	"slices"
)

// Tally is the outcome of counting a complete vote
type Tally struct {
	Counts    map[string]int `json:"counts"`
	Candidate string         `json:"candidate"`
	MaxCount  int            `json:"maxCount"`
	Tie       bool           `json:"tie"`
}

// CountVotes counts votes per target, SKIP included. Targets are visited in
// sorted order so the reported candidate is deterministic.
func CountVotes(votes map[string]string) Tally {
	counts := make(map[string]int)
	for _, target := range votes {
		counts[target]++
	}

	t := Tally{Counts: counts}
	for _, target := range slices.Sorted(maps.Keys(counts)) {
		n := counts[target]
		switch {
		case n > t.MaxCount:
			t.MaxCount = n
			t.Candidate = target
			t.Tie = false
		case n == t.MaxCount:
			t.Tie = true
		}
	}
	return t
}

// Conclusive reports whether the tally ejects a player
func (t Tally) Conclusive() bool {
	return !t.Tie && t.Candidate != "" && t.Candidate != Skip
}
