// Package report turns the per-category counters into per-roster report rows
// and writes them out.
package report

import (
	"fmt"
	"slices"

	"mariinsky-counter/internal/attendance"
)

// Row is one roster member with their counts in attendance.Slots order.
type Row struct {
	Name   string
	Counts [4]int
}

func (r Row) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// CounterSource loads a persisted counter.
type CounterSource interface {
	LoadCounter(category attendance.Category, billing attendance.Billing, action attendance.Action) (attendance.Counter, error)
}

// Load reads the four counters of a category in attendance.Slots order.
func Load(src CounterSource, category attendance.Category) ([4]attendance.Counter, error) {
	var counters [4]attendance.Counter
	for i, slot := range attendance.Slots {
		counter, err := src.LoadCounter(category, slot.Billing, slot.Action)
		if err != nil {
			return counters, fmt.Errorf("load %s %s %s counter: %w", category, slot.Billing, slot.Action, err)
		}
		counters[i] = counter
	}
	return counters, nil
}

// Aggregate builds the report rows of a roster. Names that are not in the
// roster are ignored, roster members with no appearances are dropped.
// Rows are ordered by their counts compared left to right, largest first,
// members with equal counts keep their roster order.
func Aggregate(roster []string, counters [4]attendance.Counter) []Row {
	rows := make([]Row, 0, len(roster))
	index := map[string]int{}
	for _, name := range roster {
		if _, ok := index[name]; ok {
			continue
		}
		index[name] = len(rows)
		rows = append(rows, Row{Name: name})
	}

	for slot, counter := range counters {
		for name, count := range counter {
			i, ok := index[name]
			if !ok {
				continue
			}
			rows[i].Counts[slot] += count
		}
	}

	rows = slices.DeleteFunc(rows, func(r Row) bool {
		return r.Counts == [4]int{}
	})
	slices.SortStableFunc(rows, func(a, b Row) int {
		return slices.Compare(b.Counts[:], a.Counts[:])
	})
	return rows
}
