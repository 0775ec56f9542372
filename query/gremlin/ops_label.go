package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

func opAs(c *Context, v Variable, a Args) error {
	if len(a.Labels) == 0 {
		return errorf(InvalidArgument, "as() requires a label")
	}
	for _, name := range a.Labels {
		c.labels[name] = v
	}
	return nil
}

// byValue returns a value of a variable as modulated by by().
func (c *Context) byValue(v Variable, by By) (sql.Expr, error) {
	if err := by.validate(); err != nil {
		return nil, err
	}
	switch {
	case by.Key != "":
		switch k := v.Kind(); {
		case k.IsElement():
			return c.property(v, by.Key)
		case k == Row:
			for _, key := range keysOf(v) {
				if key == by.Key {
					return v.Column(key), nil
				}
			}
			return nil, errorf(InvalidArgument, "no such key: %q", by.Key)
		case k == PropertyRow && (by.Key == colKey || by.Key == colValue):
			return v.Column(by.Key), nil
		}
		return nil, errorf(InvalidArgument, "by(%q) cannot be applied to %s", by.Key, v.Kind())
	case by.Traversal != nil:
		return c.valueOf(v, by.Traversal)
	}
	return scalarOf(v), nil
}

// selected resolves a name used in select(): a bound label, or a key of the row pivot.
func (c *Context) selected(v Variable, name string) (Variable, error) {
	if lv, ok := c.labels[name]; ok {
		return lv, nil
	}
	if v.Kind() == Row {
		for _, key := range keysOf(v) {
			if key == name {
				return c.newValue(v.Column(key)), nil
			}
		}
	}
	return nil, errorf(InvalidArgument, "label %q is not bound", name)
}

func opSelect(c *Context, v Variable, a Args) error {
	var names []string
	seen := make(map[string]struct{}, len(a.Labels))
	for _, name := range a.Labels {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return errorf(InvalidArgument, "select() requires at least one label")
	}
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		lv, err := c.selected(v, name)
		if err != nil {
			return err
		}
		vars = append(vars, lv)
	}
	if len(names) == 1 {
		lv := vars[0]
		if len(a.By) == 0 {
			c.hop(v, nil, lv)
			return nil
		}
		val, err := c.byValue(lv, a.By[0])
		if err != nil {
			return err
		}
		c.hop(v, nil, c.newValue(val))
		return nil
	}
	vals := make([]sql.Expr, 0, len(vars))
	for i, lv := range vars {
		var by By
		if len(a.By) != 0 {
			by = a.By[i%len(a.By)]
		}
		val, err := c.byValue(lv, by)
		if err != nil {
			return err
		}
		vals = append(vals, val)
	}
	c.hop(v, nil, c.newRow(names, vals))
	return nil
}

func opProject(c *Context, v Variable, a Args) error {
	if len(a.Keys) == 0 {
		return errorf(InvalidArgument, "project() requires at least one key")
	}
	seen := make(map[string]struct{}, len(a.Keys))
	vals := make([]sql.Expr, 0, len(a.Keys))
	for i, key := range a.Keys {
		if _, ok := seen[key]; ok {
			return errorf(InvalidArgument, "duplicate key: %q", key)
		}
		seen[key] = struct{}{}
		var by By
		if len(a.By) != 0 {
			by = a.By[i%len(a.By)]
		}
		val, err := c.byValue(v, by)
		if err != nil {
			return err
		}
		vals = append(vals, val)
	}
	c.hop(v, nil, c.newRow(append([]string(nil), a.Keys...), vals))
	return nil
}
