package gremlin

import (
	"encoding/json"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/graph/sql"
)

// PredicateOp is a name of a predicate function.
type PredicateOp string

const (
	PredEq           = PredicateOp("eq")
	PredNeq          = PredicateOp("neq")
	PredLt           = PredicateOp("lt")
	PredLte          = PredicateOp("lte")
	PredGt           = PredicateOp("gt")
	PredGte          = PredicateOp("gte")
	PredInside       = PredicateOp("inside")
	PredOutside      = PredicateOp("outside")
	PredBetween      = PredicateOp("between")
	PredWithin       = PredicateOp("within")
	PredWithout      = PredicateOp("without")
	PredStartingWith = PredicateOp("startingWith")
	PredEndingWith   = PredicateOp("endingWith")
	PredContaining   = PredicateOp("containing")
	PredRegex        = PredicateOp("regex")
	PredAnd          = PredicateOp("and")
	PredOr           = PredicateOp("or")
	PredNot          = PredicateOp("not")
)

// P is a predicate over a value, like P.gt(30) in Gremlin.
type P struct {
	Op     PredicateOp
	Values []quad.Value
	Preds  []P
}

func Eq(v quad.Value) P         { return P{Op: PredEq, Values: []quad.Value{v}} }
func Neq(v quad.Value) P        { return P{Op: PredNeq, Values: []quad.Value{v}} }
func Lt(v quad.Value) P         { return P{Op: PredLt, Values: []quad.Value{v}} }
func Lte(v quad.Value) P        { return P{Op: PredLte, Values: []quad.Value{v}} }
func Gt(v quad.Value) P         { return P{Op: PredGt, Values: []quad.Value{v}} }
func Gte(v quad.Value) P        { return P{Op: PredGte, Values: []quad.Value{v}} }
func Inside(a, b quad.Value) P  { return P{Op: PredInside, Values: []quad.Value{a, b}} }
func Outside(a, b quad.Value) P { return P{Op: PredOutside, Values: []quad.Value{a, b}} }
func Between(a, b quad.Value) P { return P{Op: PredBetween, Values: []quad.Value{a, b}} }
func Within(vals ...quad.Value) P {
	return P{Op: PredWithin, Values: vals}
}
func Without(vals ...quad.Value) P {
	return P{Op: PredWithout, Values: vals}
}
func StartingWith(s string) P { return P{Op: PredStartingWith, Values: []quad.Value{quad.String(s)}} }
func EndingWith(s string) P   { return P{Op: PredEndingWith, Values: []quad.Value{quad.String(s)}} }
func Containing(s string) P   { return P{Op: PredContaining, Values: []quad.Value{quad.String(s)}} }
func Regex(s string) P        { return P{Op: PredRegex, Values: []quad.Value{quad.String(s)}} }
func AndP(preds ...P) P       { return P{Op: PredAnd, Preds: preds} }
func OrP(preds ...P) P        { return P{Op: PredOr, Preds: preds} }
func NotP(p P) P              { return P{Op: PredNot, Preds: []P{p}} }

type jsonP struct {
	Op     PredicateOp       `json:"p"`
	Values []json.RawMessage `json:"values,omitempty"`
	Preds  []P               `json:"preds,omitempty"`
}

func (p P) MarshalJSON() ([]byte, error) {
	out := jsonP{Op: p.Op, Preds: p.Preds}
	for _, v := range p.Values {
		data, err := json.Marshal(nativeOf(v))
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, data)
	}
	return json.Marshal(out)
}

func (p *P) UnmarshalJSON(data []byte) error {
	var in jsonP
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = P{Op: in.Op, Preds: in.Preds}
	for _, r := range in.Values {
		v, err := parseValue(r)
		if err != nil {
			return err
		}
		p.Values = append(p.Values, v)
	}
	return p.validate()
}

func (p P) arity() int {
	switch p.Op {
	case PredEq, PredNeq, PredLt, PredLte, PredGt, PredGte,
		PredStartingWith, PredEndingWith, PredContaining, PredRegex:
		return 1
	case PredInside, PredOutside, PredBetween:
		return 2
	case PredWithin, PredWithout:
		return -1
	}
	return 0
}

func (p P) validate() error {
	switch p.Op {
	case PredAnd, PredOr:
		if len(p.Preds) == 0 {
			return errorf(InvalidArgument, "%s requires at least one predicate", p.Op)
		}
	case PredNot:
		if len(p.Preds) != 1 {
			return errorf(InvalidArgument, "not requires exactly one predicate")
		}
	default:
		n := p.arity()
		if n == 0 {
			return errorf(InvalidArgument, "unknown predicate: %q", p.Op)
		}
		if n > 0 && len(p.Values) != n {
			return errorf(InvalidArgument, "%s expects %d values, got %d", p.Op, n, len(p.Values))
		}
	}
	for _, sub := range p.Preds {
		if err := sub.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p P) likePattern(x sql.Expr) (sql.Expr, error) {
	s, ok := stringValue(p.Values[0])
	if !ok {
		return nil, errorf(InvalidArgument, "%s expects a string, got %T", p.Op, p.Values[0])
	}
	s = sql.EscapeLike(s)
	switch p.Op {
	case PredStartingWith:
		s = s + "%"
	case PredEndingWith:
		s = "%" + s
	default:
		s = "%" + s + "%"
	}
	return sql.Like{Expr: x, Pattern: sql.Param{Value: s}}, nil
}

var cmpOps = map[PredicateOp]sql.CmpOp{
	PredEq:  sql.OpEqual,
	PredNeq: sql.OpNotEqual,
	PredLt:  sql.OpLT,
	PredLte: sql.OpLTE,
	PredGt:  sql.OpGT,
	PredGte: sql.OpGTE,
}

// Expr lowers the predicate to a condition over x.
func (p P) Expr(x sql.Expr) (sql.Expr, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p.expr(x, func(v quad.Value) (sql.Expr, error) {
		return valueExpr(v)
	})
}

// expr lowers the predicate; conv resolves predicate arguments, which are either
// constants or, for where(), label names.
func (p P) expr(x sql.Expr, conv func(quad.Value) (sql.Expr, error)) (sql.Expr, error) {
	switch p.Op {
	case PredAnd, PredOr:
		list := make([]sql.Expr, 0, len(p.Preds))
		for _, sub := range p.Preds {
			e, err := sub.expr(x, conv)
			if err != nil {
				return nil, err
			}
			list = append(list, e)
		}
		if p.Op == PredAnd {
			return sql.And(list), nil
		}
		return sql.Or(list), nil
	case PredNot:
		e, err := p.Preds[0].expr(x, conv)
		if err != nil {
			return nil, err
		}
		return sql.Not{Expr: e}, nil
	case PredStartingWith, PredEndingWith, PredContaining:
		return p.likePattern(x)
	case PredWithin, PredWithout:
		vals := make([]sql.Expr, 0, len(p.Values))
		for _, v := range p.Values {
			e, err := conv(v)
			if err != nil {
				return nil, err
			}
			vals = append(vals, e)
		}
		return sql.In{Expr: x, Values: vals, Not: p.Op == PredWithout}, nil
	}
	args := make([]sql.Expr, 0, len(p.Values))
	for _, v := range p.Values {
		e, err := conv(v)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	switch p.Op {
	case PredEq, PredNeq:
		if p.Values[0] == nil {
			return sql.IsNull{Expr: x, Not: p.Op == PredNeq}, nil
		}
		return sql.Cmp{Left: x, Op: cmpOps[p.Op], Right: args[0]}, nil
	case PredLt, PredLte, PredGt, PredGte:
		return sql.Cmp{Left: x, Op: cmpOps[p.Op], Right: args[0]}, nil
	case PredInside:
		return sql.And{
			sql.Cmp{Left: x, Op: sql.OpGT, Right: args[0]},
			sql.Cmp{Left: x, Op: sql.OpLT, Right: args[1]},
		}, nil
	case PredOutside:
		return sql.Or{
			sql.Cmp{Left: x, Op: sql.OpLT, Right: args[0]},
			sql.Cmp{Left: x, Op: sql.OpGT, Right: args[1]},
		}, nil
	case PredBetween:
		return sql.And{
			sql.Cmp{Left: x, Op: sql.OpGTE, Right: args[0]},
			sql.Cmp{Left: x, Op: sql.OpLT, Right: args[1]},
		}, nil
	case PredRegex:
		return sql.Cmp{Left: x, Op: sql.OpRegexp, Right: args[0]}, nil
	}
	return nil, errorf(InvalidArgument, "unknown predicate: %q", p.Op)
}

// labels returns label names referenced by a predicate used in where().
func (p P) labels() []string {
	var out []string
	for _, v := range p.Values {
		if s, ok := stringValue(v); ok {
			out = append(out, s)
		}
	}
	for _, sub := range p.Preds {
		out = append(out, sub.labels()...)
	}
	return out
}
