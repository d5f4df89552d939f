// Package roster holds the externally maintained name lists that bound the
// reports.
package roster

import (
	"errors"
	"fmt"
	"slices"

	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/lib/textutil"

	"github.com/antzucaro/matchr"
)

var ErrUnknownRoster = errors.New("unknown roster")

// Table maps "<category>_<gender>" to the ordered names of that roster.
type Table map[string][]string

func Key(category attendance.Category, gender attendance.Gender) string {
	return fmt.Sprintf("%s_%s", category, gender)
}

func (t Table) Lookup(category attendance.Category, gender attendance.Gender) ([]string, error) {
	names, ok := t[Key(category, gender)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoster, Key(category, gender))
	}
	return names, nil
}

// Merged returns every name of the category's rosters, in gender order.
func (t Table) Merged(category attendance.Category) []string {
	var out []string
	for _, gender := range attendance.Genders {
		out = append(out, t[Key(category, gender)]...)
	}
	return out
}

// SimilarityThreshold is the minimum Jaro-Winkler similarity for a roster
// name to be suggested as the intended spelling. Names are compared without
// regard to case or spacing.
const SimilarityThreshold = 0.9

// Suggestion is a counted name that no roster lists.
type Suggestion struct {
	Name  string
	Count int
	// Closest is empty when nothing in the roster is similar enough.
	Closest    string
	Similarity float64
}

// Unlisted finds the counted names that are missing from the roster. These
// never show up in reports, so a misspelling on the portal silently loses
// the person's appearances.
func Unlisted(roster []string, counters ...attendance.Counter) []Suggestion {
	listed := attendance.NewNameSet(roster...)

	totals := attendance.Counter{}
	for _, counter := range counters {
		for name, count := range counter {
			if name == "" || listed.Has(name) {
				continue
			}
			totals[name] += count
		}
	}

	out := make([]Suggestion, 0, len(totals))
	for _, name := range totals.Names() {
		suggestion := Suggestion{
			Name:  name,
			Count: totals[name],
		}
		key := textutil.NormalizeName(name)
		for _, candidate := range roster {
			similarity := matchr.JaroWinkler(key, textutil.NormalizeName(candidate), false)
			if similarity >= SimilarityThreshold && similarity > suggestion.Similarity {
				suggestion.Closest = candidate
				suggestion.Similarity = similarity
			}
		}
		out = append(out, suggestion)
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return b.Count - a.Count
	})
	return out
}
