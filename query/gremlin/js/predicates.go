package js

import (
	"github.com/cayleygraph/quad"
	"github.com/dop251/goja"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

// predicates is exposed to scripts as P and TextP.
type predicates struct {
	env *env
}

func (p *predicates) ret(pr gremlin.P) goja.Value {
	return p.env.vm.ToValue(&pr)
}

func (p *predicates) values(call goja.FunctionCall, op gremlin.PredicateOp) goja.Value {
	vals, err := toValues(exportArgs(call.Arguments))
	if err != nil {
		return p.env.throw(err)
	}
	pr := gremlin.P{Op: op, Values: vals}
	if n := len(vals); n == 0 && op != gremlin.PredWithin && op != gremlin.PredWithout {
		return p.env.throw(invalid("%s() expects a value", op))
	}
	return p.ret(pr)
}

// single accepts exactly one value. A null argument is kept as a nil value.
func (p *predicates) single(call goja.FunctionCall, op gremlin.PredicateOp) goja.Value {
	if len(call.Arguments) != 1 {
		return p.env.throw(invalid("%s() expects one argument, got %d", op, len(call.Arguments)))
	}
	a := call.Argument(0)
	if goja.IsNull(a) || goja.IsUndefined(a) {
		return p.ret(gremlin.P{Op: op, Values: []quad.Value{nil}})
	}
	v, err := toValue(a.Export())
	if err != nil {
		return p.env.throw(err)
	}
	return p.ret(gremlin.P{Op: op, Values: []quad.Value{v}})
}

func (p *predicates) pair(call goja.FunctionCall, op gremlin.PredicateOp) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) != 2 {
		return p.env.throw(invalid("%s() expects two values, got %d", op, len(args)))
	}
	return p.values(call, op)
}

func (p *predicates) preds(call goja.FunctionCall, op gremlin.PredicateOp) goja.Value {
	args := exportArgs(call.Arguments)
	if len(args) == 0 {
		return p.env.throw(invalid("%s() expects a predicate", op))
	}
	out := make([]gremlin.P, 0, len(args))
	for _, a := range args {
		pr, err := toPred(a)
		if err != nil {
			return p.env.throw(err)
		}
		out = append(out, pr)
	}
	return p.ret(gremlin.P{Op: op, Preds: out})
}

func (p *predicates) Eq(call goja.FunctionCall) goja.Value  { return p.single(call, gremlin.PredEq) }
func (p *predicates) Neq(call goja.FunctionCall) goja.Value { return p.single(call, gremlin.PredNeq) }
func (p *predicates) Lt(call goja.FunctionCall) goja.Value  { return p.single(call, gremlin.PredLt) }
func (p *predicates) Lte(call goja.FunctionCall) goja.Value { return p.single(call, gremlin.PredLte) }
func (p *predicates) Gt(call goja.FunctionCall) goja.Value  { return p.single(call, gremlin.PredGt) }
func (p *predicates) Gte(call goja.FunctionCall) goja.Value { return p.single(call, gremlin.PredGte) }

func (p *predicates) Inside(call goja.FunctionCall) goja.Value {
	return p.pair(call, gremlin.PredInside)
}
func (p *predicates) Outside(call goja.FunctionCall) goja.Value {
	return p.pair(call, gremlin.PredOutside)
}
func (p *predicates) Between(call goja.FunctionCall) goja.Value {
	return p.pair(call, gremlin.PredBetween)
}
func (p *predicates) Within(call goja.FunctionCall) goja.Value {
	return p.values(call, gremlin.PredWithin)
}
func (p *predicates) Without(call goja.FunctionCall) goja.Value {
	return p.values(call, gremlin.PredWithout)
}

func (p *predicates) StartingWith(call goja.FunctionCall) goja.Value {
	return p.single(call, gremlin.PredStartingWith)
}
func (p *predicates) EndingWith(call goja.FunctionCall) goja.Value {
	return p.single(call, gremlin.PredEndingWith)
}
func (p *predicates) Containing(call goja.FunctionCall) goja.Value {
	return p.single(call, gremlin.PredContaining)
}
func (p *predicates) Regex(call goja.FunctionCall) goja.Value {
	return p.single(call, gremlin.PredRegex)
}

func (p *predicates) And(call goja.FunctionCall) goja.Value { return p.preds(call, gremlin.PredAnd) }
func (p *predicates) Or(call goja.FunctionCall) goja.Value  { return p.preds(call, gremlin.PredOr) }

func (p *predicates) Not(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) != 1 {
		return p.env.throw(invalid("not() expects one predicate"))
	}
	return p.preds(call, gremlin.PredNot)
}
