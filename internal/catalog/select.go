package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidSelectionError reports a selection token that cannot be used
// against the catalog: a malformed term or an ID outside the catalog.
type InvalidSelectionError struct {
	Token string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid endpoint selection %q", e.Token)
}

// Resolve parses a selection expression into endpoints, preserving catalog
// order and dropping duplicates. The grammar is comma-separated terms where
// each term is an ID ("5") or an inclusive range ("1-10"). An empty
// expression selects the whole catalog.
func Resolve(sel string) ([]Endpoint, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" || sel == "all" {
		return All(), nil
	}

	want := make(map[int]bool)
	for _, term := range strings.Split(sel, ",") {
		term = strings.TrimSpace(term)
		lo, hi, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		for id := lo; id <= hi; id++ {
			if _, ok := ByID(id); !ok {
				return nil, &InvalidSelectionError{Token: strconv.Itoa(id)}
			}
			want[id] = true
		}
	}

	out := make([]Endpoint, 0, len(want))
	for _, ep := range endpoints {
		if want[ep.ID] {
			out = append(out, ep)
		}
	}
	return out, nil
}

func parseTerm(term string) (lo, hi int, err error) {
	if term == "" {
		return 0, 0, &InvalidSelectionError{Token: term}
	}
	if a, b, ok := strings.Cut(term, "-"); ok {
		lo, err = strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, &InvalidSelectionError{Token: term}
		}
		hi, err = strconv.Atoi(strings.TrimSpace(b))
		if err != nil || hi < lo {
			return 0, 0, &InvalidSelectionError{Token: term}
		}
		return lo, hi, nil
	}
	lo, err = strconv.Atoi(term)
	if err != nil {
		return 0, 0, &InvalidSelectionError{Token: term}
	}
	return lo, lo, nil
}
