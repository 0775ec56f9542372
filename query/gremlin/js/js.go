// Package js parses traversals written in the JavaScript flavor of Gremlin:
//
//	g.V().hasLabel('person').out('knows').values('name')
//
// The script is evaluated by an embedded interpreter and must evaluate to a traversal.
package js

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/query"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

// Name is the name of the language in the query registry.
const Name = "js"

func init() {
	query.RegisterLanguage(query.Language{Name: Name, Parse: Parse})
}

// Parse evaluates a script and returns the traversal it builds.
func Parse(ctx context.Context, src string) (gremlin.Traversal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prog, err := goja.Compile("", src, false)
	if err != nil {
		var serr *goja.CompilerSyntaxError
		if errors.As(err, &serr) && strings.Contains(serr.Error(), "Unexpected end of input") {
			return nil, query.ErrParseMore
		}
		return nil, convError(err)
	}
	e := newEnv()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	v, err := e.vm.RunProgram(prog)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, convError(err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, invalid("script must evaluate to a traversal")
	}
	t, ok := v.Export().(*traversal)
	if !ok {
		return nil, invalid("script must evaluate to a traversal, got %T", v.Export())
	}
	clog.Debugf("js: parsed %d steps", len(t.steps))
	return t.steps, nil
}

// convError extracts errors thrown by native functions. Every other error is a bad script.
func convError(err error) error {
	if e, ok := err.(*goja.Exception); ok && e.Value() != nil {
		if er, ok := e.Value().Export().(error); ok {
			err = er
		}
	}
	var ce *gremlin.CompilationError
	if errors.As(err, &ce) {
		return err
	}
	return &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: err.Error()}
}

func invalid(format string, args ...interface{}) error {
	return &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// fieldNameMapper exposes Go methods in lowerCamel case. Single-letter methods (V, E) keep their case.
type fieldNameMapper struct{}

func (fieldNameMapper) FieldName(_ reflect.Type, f reflect.StructField) string {
	return ""
}

func (fieldNameMapper) MethodName(_ reflect.Type, m reflect.Method) string {
	if len(m.Name) == 1 {
		return m.Name
	}
	return lcFirst(m.Name)
}

func lcFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// env is a single interpreter with the traversal roots installed.
type env struct {
	vm *goja.Runtime
}

func newEnv() *env {
	e := &env{vm: goja.New()}
	e.vm.SetFieldNameMapper(fieldNameMapper{})
	e.vm.Set("g", &traversal{env: e})
	e.vm.Set("__", &traversal{env: e})
	preds := &predicates{env: e}
	e.vm.Set("P", preds)
	e.vm.Set("TextP", preds)
	e.vm.Set("T", map[string]interface{}{
		"id":    &tokenT{key: "id"},
		"label": &tokenT{key: "label"},
	})
	orders := map[string]interface{}{
		"incr":    &tokenOrder{order: gremlin.Incr},
		"decr":    &tokenOrder{order: gremlin.Decr},
		"asc":     &tokenOrder{order: gremlin.Incr},
		"desc":    &tokenOrder{order: gremlin.Decr},
		"shuffle": &tokenOrder{order: gremlin.Shuffle},
	}
	e.vm.Set("Order", orders)
	for _, name := range []string{"incr", "decr", "shuffle"} {
		e.vm.Set(name, orders[name])
	}
	e.vm.Set("Pick", map[string]interface{}{"none": &tokenNone{}})
	return e
}

func (e *env) throw(err error) goja.Value {
	panic(e.vm.ToValue(err))
}

// tokenT is T.id or T.label used in by() and valueMap().
type tokenT struct {
	key string
}

// tokenOrder is a sort direction used in by().
type tokenOrder struct {
	order gremlin.Order
}

// tokenNone is Pick.none used in option().
type tokenNone struct{}
