package gremlin

import (
	"time"

	"github.com/cayleygraph/gremsql/graph/sql"
)

// Compile lowers a traversal in a new top-level context.
func Compile(t Traversal, opts *Options) (*Context, error) {
	start := time.Now()
	c := NewContext(opts)
	err := c.Apply(t)
	mCompileSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		mCompileTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	mCompileTotal.WithLabelValues("ok").Inc()
	return c, nil
}

// CompilePlan compiles a traversal and assembles the plan.
func CompilePlan(t Traversal, opts *Options) (*sql.Plan, error) {
	c, err := Compile(t, opts)
	if err != nil {
		return nil, err
	}
	return c.Plan()
}
