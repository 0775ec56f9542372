package gremlin

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/graph/sql"
)

// AsValue converts a native Go value (as produced by JSON or JS decoders) to a quad value.
func AsValue(a interface{}) (quad.Value, error) {
	switch a := a.(type) {
	case nil:
		return nil, nil
	case quad.Value:
		return a, nil
	case json.Number:
		if v, err := a.Int64(); err == nil {
			return quad.Int(v), nil
		}
		f, err := a.Float64()
		if err != nil {
			return nil, errorf(InvalidArgument, "cannot parse number %q", string(a))
		}
		return quad.Float(f), nil
	case map[string]interface{}:
		if id, ok := a["@id"].(string); ok {
			return quad.IRI(id), nil
		}
		return nil, errorf(InvalidArgument, "unexpected object value: %v", a)
	}
	if v, ok := quad.AsValue(a); ok {
		return v, nil
	}
	return nil, errorf(InvalidArgument, "unsupported value type: %T", a)
}

func parseValue(data json.RawMessage) (quad.Value, error) {
	var a interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	return AsValue(a)
}

func parseValues(data json.RawMessage) ([]quad.Value, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		// a single value is accepted as well
		v, err := parseValue(data)
		if err != nil {
			return nil, err
		}
		return []quad.Value{v}, nil
	}
	out := make([]quad.Value, 0, len(arr))
	for _, r := range arr {
		v, err := parseValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func nativeOf(v quad.Value) interface{} {
	if v == nil {
		return nil
	}
	switch v := v.(type) {
	case quad.IRI:
		return map[string]string{"@id": string(v)}
	case quad.BNode:
		return map[string]string{"@id": "_:" + string(v)}
	}
	return quad.NativeOf(v)
}

func nativeValues(vals []quad.Value) []interface{} {
	out := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		out = append(out, nativeOf(v))
	}
	return out
}

// valueExpr converts a constant to a query parameter. Numbers are cast explicitly,
// so databases compare and sort them numerically.
func valueExpr(v quad.Value) (sql.Expr, error) {
	switch v := v.(type) {
	case nil:
		return sql.Null, nil
	case quad.String:
		return sql.Param{Value: string(v)}, nil
	case quad.Int:
		return sql.Cast{Expr: sql.Param{Value: int64(v)}, Type: sql.TypeInt}, nil
	case quad.Float:
		return sql.Cast{Expr: sql.Param{Value: float64(v)}, Type: sql.TypeFloat}, nil
	case quad.Bool:
		return sql.Cast{Expr: sql.Param{Value: bool(v)}, Type: sql.TypeBool}, nil
	case quad.Time:
		return sql.Param{Value: time.Time(v)}, nil
	case quad.IRI:
		return sql.Param{Value: string(v)}, nil
	case quad.BNode:
		return sql.Param{Value: "_:" + string(v)}, nil
	case quad.LangString:
		return sql.Param{Value: string(v.Value)}, nil
	case quad.TypedString:
		return sql.Param{Value: string(v.Value)}, nil
	}
	return nil, errorf(InvalidArgument, "cannot use %T as a value", v)
}

func valueExprs(vals []quad.Value) ([]sql.Expr, error) {
	out := make([]sql.Expr, 0, len(vals))
	for _, v := range vals {
		e, err := valueExpr(v)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// idString converts an element identifier to the string stored in id columns.
func idString(v quad.Value) (string, error) {
	switch v := v.(type) {
	case quad.String:
		return string(v), nil
	case quad.IRI:
		return string(v), nil
	case quad.BNode:
		return "_:" + string(v), nil
	case quad.Int:
		return strconv.FormatInt(int64(v), 10), nil
	case quad.Float:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	}
	return "", errorf(InvalidArgument, "element id must be a string or a number, got %T", v)
}

func idParams(ids []quad.Value) ([]sql.Expr, error) {
	out := make([]sql.Expr, 0, len(ids))
	for _, v := range ids {
		s, err := idString(v)
		if err != nil {
			return nil, err
		}
		out = append(out, sql.Param{Value: s})
	}
	return out, nil
}

func stringValue(v quad.Value) (string, bool) {
	switch v := v.(type) {
	case quad.String:
		return string(v), true
	case quad.IRI:
		return string(v), true
	}
	return "", false
}
