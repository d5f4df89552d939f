package attendance

import (
	"fmt"
	"slices"
)

// EventID is the portal's code for one scheduled event. It is produced by
// code discovery and never generated here.
type EventID string

// Category selects the troupe whose events are counted.
type Category string

const (
	Ballet Category = "ballet"
	Extras Category = "extras"
)

var Categories = []Category{Ballet, Extras}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Action partitions events into performances and rehearsals. The values are
// the short forms used in file names.
type Action string

const (
	Performance Action = "perfs"
	Rehearsal   Action = "rehs"
)

var Actions = []Action{Performance, Rehearsal}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !slices.Contains(Actions, a) {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Billing is the participation level of a person in an event.
type Billing string

const (
	// Primary is a featured (first cast) participant.
	Primary Billing = "feat"
	// Secondary is a supporting (understudy) participant.
	Secondary Billing = "secure"
)

var Billings = []Billing{Primary, Secondary}

// Gender selects a roster subset for reports.
type Gender string

const (
	Men   Gender = "men"
	Women Gender = "women"
)

var Genders = []Gender{Men, Women}

func ParseGender(s string) (Gender, error) {
	g := Gender(s)
	if !slices.Contains(Genders, g) {
		return "", fmt.Errorf("%w: %q", ErrUnknownGender, s)
	}
	return g, nil
}

// Slot is one of the four report columns.
type Slot struct {
	Action  Action
	Billing Billing
}

// Slots lists the report columns in their fixed order.
var Slots = [4]Slot{
	{Action: Performance, Billing: Primary},
	{Action: Performance, Billing: Secondary},
	{Action: Rehearsal, Billing: Primary},
	{Action: Rehearsal, Billing: Secondary},
}

// NameSet holds the distinct names seen in one event.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	set := NameSet{}
	for _, n := range names {
		set.Add(n)
	}
	return set
}

func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Counter maps a participant name to the number of events they appeared in.
type Counter map[string]int

func (c Counter) Increment(name string) {
	c[name]++
}

// Names returns the counted names in lexical order.
func (c Counter) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
