package js

import (
	"github.com/cayleygraph/quad"
	"github.com/dop251/goja"

	"github.com/cayleygraph/gremsql/query/gremlin"
	"github.com/cayleygraph/gremsql/query/gremlin/steps"
)

// traversal is an immutable list of steps. Every method returns a new traversal.
// Both g and __ are empty traversals.
type traversal struct {
	env   *env
	steps gremlin.Traversal
}

func (t *traversal) wrap(steps gremlin.Traversal) goja.Value {
	return t.env.vm.ToValue(&traversal{env: t.env, steps: steps})
}

func (t *traversal) with(s gremlin.Step) goja.Value {
	steps := make(gremlin.Traversal, 0, len(t.steps)+1)
	steps = append(steps, t.steps...)
	return t.wrap(append(steps, s))
}

// modulate applies a modulator to a copy of the last step.
func (t *traversal) modulate(name string, fn func(s gremlin.Step) error) goja.Value {
	if len(t.steps) == 0 {
		return t.env.throw(invalid("%s() must follow a step", name))
	}
	last, err := cloneStep(t.steps[len(t.steps)-1])
	if err != nil {
		return t.env.throw(err)
	}
	if err = fn(last); err != nil {
		return t.env.throw(err)
	}
	steps := append(gremlin.Traversal{}, t.steps...)
	steps[len(steps)-1] = last
	return t.wrap(steps)
}

// cloneStep makes a deep copy of the step, so modulators never change steps shared with other traversals.
func cloneStep(s gremlin.Step) (gremlin.Step, error) {
	data, err := gremlin.Marshal(s)
	if err != nil {
		return nil, err
	}
	return gremlin.Unmarshal(data)
}

func (t *traversal) fail(err error) goja.Value {
	return t.env.throw(err)
}

func (t *traversal) strings(call goja.FunctionCall) []string {
	out, err := toStrings(exportArgs(call.Arguments))
	if err != nil {
		t.fail(err)
	}
	return out
}

func (t *traversal) values(call goja.FunctionCall) []quad.Value {
	out, err := toValues(exportArgs(call.Arguments))
	if err != nil {
		t.fail(err)
	}
	return out
}

func (t *traversal) traversals(call goja.FunctionCall) []gremlin.Traversal {
	out, err := toTraversals(exportArgs(call.Arguments))
	if err != nil {
		t.fail(err)
	}
	return out
}

func (t *traversal) single(name string, call goja.FunctionCall) gremlin.Traversal {
	if len(call.Arguments) != 1 {
		t.fail(invalid("%s() expects one traversal, got %d arguments", name, len(call.Arguments)))
	}
	tr, err := toTraversal(call.Argument(0).Export())
	if err != nil {
		t.fail(err)
	}
	return tr
}

func (t *traversal) number(name string, call goja.FunctionCall, def int64) int64 {
	switch len(call.Arguments) {
	case 0:
		if def < 0 {
			t.fail(invalid("%s() expects a number", name))
		}
		return def
	case 1:
	default:
		t.fail(invalid("%s() expects one number, got %d arguments", name, len(call.Arguments)))
	}
	n, err := toInt(call.Argument(0).Export())
	if err != nil {
		t.fail(err)
	}
	return n
}

func (t *traversal) optString(name string, call goja.FunctionCall) string {
	args := t.strings(call)
	switch len(args) {
	case 0:
		return ""
	case 1:
		return args[0]
	}
	t.fail(invalid("%s() expects at most one key", name))
	return ""
}

func (t *traversal) key(name string, call goja.FunctionCall) string {
	k := t.optString(name, call)
	if k == "" {
		t.fail(invalid("%s() expects a key", name))
	}
	return k
}

// start steps

func (t *traversal) V(call goja.FunctionCall) goja.Value {
	return t.with(&steps.V{IDs: t.values(call)})
}
func (t *traversal) E(call goja.FunctionCall) goja.Value {
	return t.with(&steps.E{IDs: t.values(call)})
}
func (t *traversal) AddV(call goja.FunctionCall) goja.Value {
	return t.with(&steps.AddV{Label: t.optString("addV", call)})
}
func (t *traversal) AddE(call goja.FunctionCall) goja.Value {
	return t.with(&steps.AddE{Label: t.key("addE", call)})
}
func (t *traversal) Inject(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Inject{Values: t.values(call)})
}

// hops

func (t *traversal) Out(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Out{Labels: t.strings(call)})
}
func (t *traversal) In(call goja.FunctionCall) goja.Value {
	return t.with(&steps.In{Labels: t.strings(call)})
}
func (t *traversal) Both(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Both{Labels: t.strings(call)})
}
func (t *traversal) OutE(call goja.FunctionCall) goja.Value {
	return t.with(&steps.OutE{Labels: t.strings(call)})
}
func (t *traversal) InE(call goja.FunctionCall) goja.Value {
	return t.with(&steps.InE{Labels: t.strings(call)})
}
func (t *traversal) BothE(call goja.FunctionCall) goja.Value {
	return t.with(&steps.BothE{Labels: t.strings(call)})
}
func (t *traversal) OutV(call goja.FunctionCall) goja.Value   { return t.with(&steps.OutV{}) }
func (t *traversal) InV(call goja.FunctionCall) goja.Value    { return t.with(&steps.InV{}) }
func (t *traversal) BothV(call goja.FunctionCall) goja.Value  { return t.with(&steps.BothV{}) }
func (t *traversal) OtherV(call goja.FunctionCall) goja.Value { return t.with(&steps.OtherV{}) }

// filters

// condition fills one of value, predicate or traversal from a has() or is() argument.
func condition(o interface{}) (quad.Value, *gremlin.P, gremlin.Traversal, error) {
	switch o := o.(type) {
	case *gremlin.P:
		p := *o
		return nil, &p, nil, nil
	case *traversal:
		return nil, nil, o.steps, nil
	}
	v, err := toValue(o)
	return v, nil, nil, err
}

func (t *traversal) Has(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	s := &steps.Has{}
	var (
		cond interface{}
		err  error
	)
	switch len(args) {
	case 1:
		s.Key, err = toString(args[0])
	case 2:
		s.Key, err = toString(args[0])
		cond = args[1]
	case 3:
		if s.Label, err = toString(args[0]); err == nil {
			s.Key, err = toString(args[1])
		}
		cond = args[2]
	default:
		return t.fail(invalid("has() expects 1 to 3 arguments, got %d", len(args)))
	}
	if err != nil {
		return t.fail(err)
	}
	if cond != nil {
		if s.Value, s.Pred, s.Traversal, err = condition(cond); err != nil {
			return t.fail(err)
		}
	}
	return t.with(s)
}

func (t *traversal) HasLabel(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) == 1 {
		if p, ok := args[0].(*gremlin.P); ok {
			pr := *p
			return t.with(&steps.HasLabel{Pred: &pr})
		}
	}
	return t.with(&steps.HasLabel{Labels: t.strings(call)})
}

func (t *traversal) HasId(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) == 1 {
		if p, ok := args[0].(*gremlin.P); ok {
			pr := *p
			return t.with(&steps.HasID{Pred: &pr})
		}
	}
	return t.with(&steps.HasID{IDs: t.values(call)})
}

func (t *traversal) HasNot(call goja.FunctionCall) goja.Value {
	return t.with(&steps.HasNot{Key: t.key("hasNot", call)})
}

func (t *traversal) Is(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) != 1 {
		return t.fail(invalid("is() expects one argument"))
	}
	v, p, tr, err := condition(call.Argument(0).Export())
	if err == nil && tr != nil {
		err = invalid("is() does not accept traversals")
	}
	if err != nil {
		return t.fail(err)
	}
	return t.with(&steps.Is{Value: v, Pred: p})
}

func (t *traversal) Where(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	s := &steps.Where{}
	switch len(args) {
	case 1:
		switch a := args[0].(type) {
		case *gremlin.P:
			p := *a
			s.Pred = &p
		case *traversal:
			s.Traversal = a.steps
		default:
			return t.fail(invalid("where() expects a predicate or a traversal, got %s", typeName(a)))
		}
	case 2:
		label, err := toString(args[0])
		if err != nil {
			return t.fail(err)
		}
		p, err := toPred(args[1])
		if err != nil {
			return t.fail(err)
		}
		s.Label, s.Pred = label, &p
	default:
		return t.fail(invalid("where() expects 1 or 2 arguments, got %d", len(args)))
	}
	return t.with(s)
}

func (t *traversal) And(call goja.FunctionCall) goja.Value {
	return t.with(&steps.And{Traversals: t.traversals(call)})
}
func (t *traversal) Or(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Or{Traversals: t.traversals(call)})
}
func (t *traversal) Not(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Not{Traversal: t.single("not", call)})
}
func (t *traversal) Dedup(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Dedup{Labels: t.strings(call)})
}

func (t *traversal) Range(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) != 2 {
		return t.fail(invalid("range() expects two numbers"))
	}
	lo, err := toInt(call.Argument(0).Export())
	if err != nil {
		return t.fail(err)
	}
	hi, err := toInt(call.Argument(1).Export())
	if err != nil {
		return t.fail(err)
	}
	return t.with(&steps.Range{Low: lo, High: hi})
}

func (t *traversal) Limit(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Limit{N: t.number("limit", call, -1)})
}
func (t *traversal) Skip(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Skip{N: t.number("skip", call, -1)})
}
func (t *traversal) Tail(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Tail{N: t.number("tail", call, 1)})
}
func (t *traversal) Sample(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Sample{N: t.number("sample", call, -1)})
}
func (t *traversal) SimplePath(call goja.FunctionCall) goja.Value {
	return t.with(&steps.SimplePath{})
}
func (t *traversal) CyclicPath(call goja.FunctionCall) goja.Value {
	return t.with(&steps.CyclicPath{})
}

// properties

func (t *traversal) Values(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Values{Keys: t.strings(call)})
}
func (t *traversal) Properties(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Properties{Keys: t.strings(call)})
}
func (t *traversal) Key(call goja.FunctionCall) goja.Value   { return t.with(&steps.Key{}) }
func (t *traversal) Value(call goja.FunctionCall) goja.Value { return t.with(&steps.Value{}) }
func (t *traversal) Id(call goja.FunctionCall) goja.Value    { return t.with(&steps.ID{}) }
func (t *traversal) Label(call goja.FunctionCall) goja.Value { return t.with(&steps.Label{}) }

func (t *traversal) ValueMap(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	s := &steps.ValueMap{}
	if len(args) != 0 {
		if b, ok := args[0].(bool); ok {
			s.Tokens = b
			args = args[1:]
		}
	}
	keys, err := toStrings(args)
	if err != nil {
		return t.fail(err)
	}
	s.Keys = keys
	return t.with(s)
}

func (t *traversal) Constant(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) != 1 {
		return t.fail(invalid("constant() expects one value"))
	}
	v, err := toValue(call.Argument(0).Export())
	if err != nil {
		return t.fail(err)
	}
	return t.with(&steps.Constant{Value: v})
}

// branches

func (t *traversal) Union(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Union{Traversals: t.traversals(call)})
}
func (t *traversal) Coalesce(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Coalesce{Traversals: t.traversals(call)})
}
func (t *traversal) Optional(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Optional{Traversal: t.single("optional", call)})
}
func (t *traversal) Repeat(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Repeat{Traversal: t.single("repeat", call)})
}
func (t *traversal) Map(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Map{Traversal: t.single("map", call)})
}
func (t *traversal) FlatMap(call goja.FunctionCall) goja.Value {
	return t.with(&steps.FlatMap{Traversal: t.single("flatMap", call)})
}
func (t *traversal) Local(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Local{Traversal: t.single("local", call)})
}
func (t *traversal) SideEffect(call goja.FunctionCall) goja.Value {
	return t.with(&steps.SideEffect{Traversal: t.single("sideEffect", call)})
}
func (t *traversal) Identity(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Identity{})
}

func (t *traversal) Choose(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) == 0 || len(args) > 3 {
		return t.fail(invalid("choose() expects 1 to 3 arguments, got %d", len(args)))
	}
	s := &steps.Choose{}
	switch a := args[0].(type) {
	case *gremlin.P:
		p := *a
		s.Pred = &p
		if len(args) == 1 {
			return t.fail(invalid("choose() with a predicate expects a traversal"))
		}
	case *traversal:
		s.Traversal = a.steps
	default:
		return t.fail(invalid("choose() expects a predicate or a traversal, got %s", typeName(a)))
	}
	var err error
	if len(args) > 1 {
		if s.True, err = toTraversal(args[1]); err != nil {
			return t.fail(err)
		}
	}
	if len(args) > 2 {
		if s.False, err = toTraversal(args[2]); err != nil {
			return t.fail(err)
		}
	}
	return t.with(s)
}

// labels and side effects

func (t *traversal) As(call goja.FunctionCall) goja.Value {
	labels := t.strings(call)
	if len(labels) == 0 {
		return t.fail(invalid("as() expects a label"))
	}
	return t.with(&steps.As{Labels: labels})
}
func (t *traversal) Select(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Select{Labels: t.strings(call)})
}
func (t *traversal) Project(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Project{Keys: t.strings(call)})
}
func (t *traversal) Aggregate(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Aggregate{Key: t.key("aggregate", call)})
}
func (t *traversal) Store(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Store{Key: t.key("store", call)})
}
func (t *traversal) Cap(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Cap{Keys: t.strings(call)})
}
func (t *traversal) Match(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Match{Fragments: t.traversals(call)})
}

// reducers

func (t *traversal) Count(call goja.FunctionCall) goja.Value  { return t.with(&steps.Count{}) }
func (t *traversal) Sum(call goja.FunctionCall) goja.Value    { return t.with(&steps.Sum{}) }
func (t *traversal) Min(call goja.FunctionCall) goja.Value    { return t.with(&steps.Min{}) }
func (t *traversal) Max(call goja.FunctionCall) goja.Value    { return t.with(&steps.Max{}) }
func (t *traversal) Mean(call goja.FunctionCall) goja.Value   { return t.with(&steps.Mean{}) }
func (t *traversal) Fold(call goja.FunctionCall) goja.Value   { return t.with(&steps.Fold{}) }
func (t *traversal) Unfold(call goja.FunctionCall) goja.Value { return t.with(&steps.Unfold{}) }
func (t *traversal) Tree(call goja.FunctionCall) goja.Value   { return t.with(&steps.Tree{}) }
func (t *traversal) Order(call goja.FunctionCall) goja.Value  { return t.with(&steps.Order{}) }
func (t *traversal) Path(call goja.FunctionCall) goja.Value   { return t.with(&steps.Path{}) }

func (t *traversal) Group(call goja.FunctionCall) goja.Value {
	return t.with(&steps.Group{Key: t.optString("group", call)})
}
func (t *traversal) GroupCount(call goja.FunctionCall) goja.Value {
	return t.with(&steps.GroupCount{Key: t.optString("groupCount", call)})
}

// mutations

func (t *traversal) Property(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) != 2 {
		return t.fail(invalid("property() expects a key and a value, got %d arguments", len(args)))
	}
	key, err := toString(args[0])
	if err != nil {
		return t.fail(err)
	}
	s := &steps.Property{Key: key}
	if tr, ok := args[1].(*traversal); ok {
		s.Traversal = tr.steps
	} else if s.Value, err = toValue(args[1]); err != nil {
		return t.fail(err)
	}
	return t.with(s)
}

func (t *traversal) Drop(call goja.FunctionCall) goja.Value { return t.with(&steps.Drop{}) }

// modulators

func (t *traversal) By(call goja.FunctionCall) goja.Value {
	var b gremlin.By
	for i, a := range exportArgs(call.Arguments) {
		switch a := a.(type) {
		case string:
			if i != 0 {
				return t.fail(invalid("by() expects a key as the first argument"))
			}
			b.Key = a
		case *tokenT:
			b.Key = a.key
		case *traversal:
			b.Traversal = a.steps
		case *tokenOrder:
			b.Order = a.order
		default:
			return t.fail(invalid("by() does not accept %s", typeName(a)))
		}
	}
	return t.modulate("by", func(s gremlin.Step) error {
		m, ok := s.(gremlin.ByModulator)
		if !ok {
			return invalid("by() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.AddBy(b)
	})
}

func (t *traversal) endpoint(name string, call goja.FunctionCall) gremlin.Endpoint {
	if len(call.Arguments) != 1 {
		t.fail(invalid("%s() expects a label or a traversal", name))
	}
	switch a := call.Argument(0).Export().(type) {
	case string:
		return gremlin.Endpoint{Label: a}
	case *traversal:
		return gremlin.Endpoint{Traversal: a.steps}
	default:
		t.fail(invalid("%s() expects a label or a traversal, got %s", name, typeName(a)))
	}
	return gremlin.Endpoint{}
}

func (t *traversal) From(call goja.FunctionCall) goja.Value {
	e := t.endpoint("from", call)
	return t.modulate("from", func(s gremlin.Step) error {
		m, ok := s.(gremlin.EndpointModulator)
		if !ok {
			return invalid("from() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.SetFrom(e)
	})
}

func (t *traversal) To(call goja.FunctionCall) goja.Value {
	e := t.endpoint("to", call)
	return t.modulate("to", func(s gremlin.Step) error {
		m, ok := s.(gremlin.EndpointModulator)
		if !ok {
			return invalid("to() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.SetTo(e)
	})
}

func (t *traversal) Times(call goja.FunctionCall) goja.Value {
	n := t.number("times", call, -1)
	return t.modulate("times", func(s gremlin.Step) error {
		m, ok := s.(gremlin.TimesModulator)
		if !ok {
			return invalid("times() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.SetTimes(int(n))
	})
}

func (t *traversal) Until(call goja.FunctionCall) goja.Value {
	tr := t.single("until", call)
	return t.modulate("until", func(s gremlin.Step) error {
		m, ok := s.(gremlin.LoopModulator)
		if !ok {
			return invalid("until() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.SetUntil(tr)
	})
}

func (t *traversal) Emit(call goja.FunctionCall) goja.Value {
	tr := gremlin.Traversal{}
	if len(call.Arguments) != 0 {
		tr = t.single("emit", call)
	}
	return t.modulate("emit", func(s gremlin.Step) error {
		m, ok := s.(gremlin.LoopModulator)
		if !ok {
			return invalid("emit() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.SetEmit(tr)
	})
}

func (t *traversal) Option(call goja.FunctionCall) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) != 2 {
		return t.fail(invalid("option() expects a key and a traversal"))
	}
	var (
		o   gremlin.Option
		err error
	)
	if _, ok := args[0].(*tokenNone); ok {
		o.None = true
	} else if o.Key, err = toValue(args[0]); err != nil {
		return t.fail(err)
	}
	if o.Traversal, err = toTraversal(args[1]); err != nil {
		return t.fail(err)
	}
	return t.modulate("option", func(s gremlin.Step) error {
		m, ok := s.(gremlin.OptionModulator)
		if !ok {
			return invalid("option() cannot modulate %s", gremlin.NameOf(s))
		}
		return m.AddOption(o)
	})
}
