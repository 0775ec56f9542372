package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// Order is a sort direction used by order().by().
type Order string

const (
	Incr    = Order("incr")
	Decr    = Order("decr")
	Shuffle = Order("shuffle")
)

func (o Order) valid() bool {
	switch o {
	case "", Incr, Decr, Shuffle:
		return true
	}
	return false
}

// By is a modulator of select, project, order, group and path steps.
// Either Key or Traversal can be set. If neither is set, the element itself is used.
type By struct {
	Key       string    `json:"key,omitempty"`
	Traversal Traversal `json:"traversal,omitempty"`
	Order     Order     `json:"order,omitempty"`
}

func (b By) validate() error {
	if b.Key != "" && b.Traversal != nil {
		return errorf(InvalidArgument, "by() accepts either a key or a traversal")
	}
	if !b.Order.valid() {
		return errorf(InvalidArgument, "unknown order: %q", b.Order)
	}
	return nil
}

// OrderKey is a single sorting key of a block.
type OrderKey struct {
	Expr  sql.Expr
	Order Order
}

func (k OrderKey) sql() sql.OrderBy {
	if k.Order == Shuffle {
		return sql.OrderBy{Expr: sql.Random{}}
	}
	return sql.OrderBy{Expr: k.Expr, Desc: k.Order == Decr}
}

func (k OrderKey) reverse() OrderKey {
	switch k.Order {
	case Decr:
		k.Order = Incr
	case Shuffle:
	default:
		k.Order = Decr
	}
	return k
}
