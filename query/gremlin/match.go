package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// matchEntry is a reserved label that holds the element a match started from.
// Fragments without a bound start label start from it.
const matchEntry = "\x00match"

// matchStart moves the traversal to the start label of a fragment.
type matchStart struct {
	label string
}

func (matchStart) Description() string { return "starts a match fragment" }

func (s matchStart) Compile(c *Context) error {
	if v, ok := c.labels[s.label]; ok {
		c.setPivot(v)
		return nil
	}
	entry, ok := c.labels[matchEntry]
	if !ok {
		return errMissingPivot()
	}
	c.labels[s.label] = entry
	c.setPivot(entry)
	return nil
}

// matchEnd binds the end label of a fragment, or requires it to be equal to the bound element.
type matchEnd struct {
	label string
}

func (matchEnd) Description() string { return "ends a match fragment" }

func (s matchEnd) Compile(c *Context) error {
	if s.label == "" {
		return nil
	}
	if c.pivot == nil {
		return errMissingPivot()
	}
	if v, ok := c.labels[s.label]; ok {
		c.addWhere(identityEq(c.pivot, v))
		return nil
	}
	c.labels[s.label] = c.pivot
	return nil
}

// isPattern reports if a traversal starts with a label, like fragments of match().
func isPattern(t Traversal) bool {
	if len(t) == 0 {
		return false
	}
	l, ok := t[0].(Labeled)
	return ok && len(l.StepLabels()) != 0
}

// normalizeFragment replaces the start and the end labels of a fragment with steps
// that bind them or compare with already bound elements.
func normalizeFragment(t Traversal) (Traversal, []string, error) {
	if len(t) == 0 {
		return nil, nil, errorf(InvalidFragmentLabels, "empty fragment")
	}
	first, ok := t[0].(Labeled)
	if !ok {
		return nil, nil, errorf(InvalidFragmentLabels, "fragment must start with a label")
	}
	if n := len(first.StepLabels()); n != 1 {
		return nil, nil, errorf(InvalidFragmentLabels, "fragment must start with exactly one label, got %d", n)
	}
	start := first.StepLabels()[0]
	labels := []string{start}
	mid := t[1:]
	end := ""
	if n := len(mid); n != 0 {
		if last, ok := mid[n-1].(Labeled); ok {
			switch ls := last.StepLabels(); len(ls) {
			case 0:
			case 1:
				end = ls[0]
				labels = append(labels, end)
			default:
				return nil, nil, errorf(InvalidFragmentLabels, "fragment must end with at most one label, got %d", len(ls))
			}
			mid = mid[:n-1]
		}
	}
	out := make(Traversal, 0, len(mid)+2)
	out = append(out, matchStart{label: start})
	out = append(out, mid...)
	out = append(out, matchEnd{label: end})
	return out, labels, nil
}

// opMatch applies every fragment in place, in the order of declaration, and returns
// a row of all labels used by the fragments.
func opMatch(c *Context, v Variable, a Args) error {
	if len(a.Branches) == 0 {
		return nil
	}
	var (
		all   Traversal
		names []string
	)
	seen := make(map[string]struct{})
	for _, t := range a.Branches {
		nt, labels, err := normalizeFragment(t)
		if err != nil {
			return err
		}
		all = append(all, nt...)
		for _, l := range labels {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				names = append(names, l)
			}
		}
	}
	c.labels[matchEntry] = v
	err := c.Apply(all)
	delete(c.labels, matchEntry)
	if err != nil {
		return err
	}
	vals := make([]sql.Expr, 0, len(names))
	for _, name := range names {
		lv, err := c.labelVar(name)
		if err != nil {
			return err
		}
		vals = append(vals, scalarOf(lv))
	}
	c.hop(c.pivot, nil, c.newRow(names, vals))
	return nil
}

// matchWhere filters traversers by a single pattern fragment. Labels bound by the
// fragment are visible only inside of it.
func (c *Context) matchWhere(t Traversal) error {
	v := c.pivot
	nt, _, err := normalizeFragment(t)
	if err != nil {
		return err
	}
	c.labels[matchEntry] = v
	e, err := c.filter(v, nt)
	delete(c.labels, matchEntry)
	if err != nil {
		return err
	}
	c.addWhere(e)
	return nil
}
