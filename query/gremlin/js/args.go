package js

import (
	"github.com/cayleygraph/quad"
	"github.com/dop251/goja"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

// exportArgs converts call arguments to Go values. Arrays are flattened one level.
func exportArgs(args []goja.Value) []interface{} {
	if len(args) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(args))
	for _, a := range args {
		o := a.Export()
		if arr, ok := o.([]interface{}); ok {
			out = append(out, arr...)
			continue
		}
		out = append(out, o)
	}
	return out
}

func toString(o interface{}) (string, error) {
	switch o := o.(type) {
	case string:
		return o, nil
	case *tokenT:
		return o.key, nil
	}
	return "", invalid("expected a string, got %s", typeName(o))
}

func toStrings(objs []interface{}) ([]string, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		s, err := toString(o)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func toValue(o interface{}) (quad.Value, error) {
	switch o.(type) {
	case *traversal, *gremlin.P, *tokenT, *tokenOrder, *tokenNone:
		return nil, invalid("expected a value, got %s", typeName(o))
	}
	return gremlin.AsValue(o)
}

func toValues(objs []interface{}) ([]quad.Value, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	out := make([]quad.Value, 0, len(objs))
	for _, o := range objs {
		v, err := toValue(o)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toInt(o interface{}) (int64, error) {
	switch o := o.(type) {
	case int64:
		return o, nil
	case int:
		return int64(o), nil
	case float64:
		if o == float64(int64(o)) {
			return int64(o), nil
		}
	}
	return 0, invalid("expected an integer, got %s", typeName(o))
}

func toTraversal(o interface{}) (gremlin.Traversal, error) {
	t, ok := o.(*traversal)
	if !ok {
		return nil, invalid("expected a traversal, got %s", typeName(o))
	}
	return t.steps, nil
}

func toTraversals(objs []interface{}) ([]gremlin.Traversal, error) {
	out := make([]gremlin.Traversal, 0, len(objs))
	for _, o := range objs {
		t, err := toTraversal(o)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func toPred(o interface{}) (gremlin.P, error) {
	p, ok := o.(*gremlin.P)
	if !ok {
		return gremlin.P{}, invalid("expected a predicate, got %s", typeName(o))
	}
	return *p, nil
}

func typeName(o interface{}) string {
	switch o := o.(type) {
	case nil:
		return "null"
	case *traversal:
		return "traversal"
	case *gremlin.P:
		return "predicate " + string(o.Op)
	case *tokenT:
		return "T." + o.key
	case *tokenOrder:
		return "order " + string(o.order)
	case *tokenNone:
		return "Pick.none"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	}
	return "object"
}
