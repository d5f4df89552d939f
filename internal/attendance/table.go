package attendance

import (
	"fmt"
	"strings"

	"mariinsky-counter/lib/textutil"
)

// DefaultSkipRoles are lowercase fragments of role titles whose rows do not
// list performers: directors, extras, coaches, inspectors, accompanists and
// the troupe management. Both spellings seen on the portal are listed.
var DefaultSkipRoles = []string{
	"режиссер",
	"режисер",
	"миманс",
	"педагог",
	"инспектор",
	"концермейстер",
	"концертмейстер",
	"руководитель балетной труппы",
}

const rowWidth = 3

// ParseTable splits the flat cell list of an event table into rows of
// (role, primary names, secondary names) and collects the names of every row
// whose role does not match a skip phrase.
//
// Names are comma separated and have their parenthesized annotations removed.
// An empty name is kept in the result, callers drop it before persisting.
func ParseTable(cells []string, skipRoles []string) (primary, secondary NameSet, err error) {
	if len(cells)%rowWidth != 0 {
		return nil, nil, fmt.Errorf("%w: %d cells is not a multiple of %d", ErrMalformedTable, len(cells), rowWidth)
	}

	primary = NameSet{}
	secondary = NameSet{}
	for i := 0; i < len(cells); i += rowWidth {
		role := strings.TrimSpace(cells[i])
		if textutil.MatchRole(role, skipRoles) {
			continue
		}
		addNames(primary, cells[i+1])
		addNames(secondary, cells[i+2])
	}

	return primary, secondary, nil
}

func addNames(set NameSet, cell string) {
	for _, name := range strings.Split(strings.TrimSpace(cell), ",") {
		set.Add(textutil.RemoveBrackets(name))
	}
}
