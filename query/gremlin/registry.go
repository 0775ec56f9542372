package gremlin

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
)

var (
	typeByName = make(map[string]reflect.Type)
	nameByType = make(map[reflect.Type]string)
)

// TypeByName returns a type by its registration name. See Register.
func TypeByName(name string) (reflect.Type, bool) {
	t, ok := typeByName[name]
	return t, ok
}

// RegisteredTypes returns names of all registered steps.
func RegisteredTypes() []string {
	out := make([]string, 0, len(typeByName))
	for k := range typeByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Register adds a Step type to the registry. The name of the step is the name of its type.
func Register(s Step) {
	tp := reflect.TypeOf(s)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	if tp.Kind() != reflect.Struct {
		panic("only structs are allowed")
	}
	name := tp.Name()
	if _, ok := typeByName[name]; ok {
		panic("this name was already registered")
	}
	typeByName[name] = tp
	nameByType[tp] = name
}

// NameOf returns a registered name of the step.
func NameOf(s Step) string {
	tp := reflect.TypeOf(s)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	if name, ok := nameByType[tp]; ok {
		return name
	}
	return tp.Name()
}

const stepKey = "step"

var (
	quadValue      = reflect.TypeOf((*quad.Value)(nil)).Elem()
	quadSliceValue = reflect.TypeOf([]quad.Value{})
)

func fieldName(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" {
		return "", false
	}
	name := f.Name
	tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if tag == "-" {
		return "", false
	} else if tag != "" {
		name = tag
	}
	return name, true
}

// Unmarshal decodes a single step: {"step": "Out", "labels": ["knows"]}.
func Unmarshal(data []byte) (Step, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	var typ string
	if err := json.Unmarshal(m[stepKey], &typ); err != nil {
		return nil, fmt.Errorf("cannot decode step name: %w", err)
	}
	delete(m, stepKey)
	tp, ok := TypeByName(typ)
	if !ok {
		return nil, fmt.Errorf("unsupported step: %q", typ)
	}
	item := reflect.New(tp).Elem()
	for i := 0; i < tp.NumField(); i++ {
		f := tp.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		v, ok := m[name]
		if !ok {
			continue
		}
		delete(m, name)
		fv := item.Field(i)
		switch f.Type {
		case quadValue:
			value, err := parseValue(v)
			if err != nil {
				return nil, err
			}
			if value != nil {
				fv.Set(reflect.ValueOf(value))
			}
			continue
		case quadSliceValue:
			values, err := parseValues(v)
			if err != nil {
				return nil, err
			}
			fv.Set(reflect.ValueOf(values))
			continue
		}
		if err := json.Unmarshal(v, fv.Addr().Interface()); err != nil {
			return nil, fmt.Errorf("cannot decode %q of %s: %w", name, typ, err)
		}
	}
	for k := range m {
		return nil, fmt.Errorf("unknown field %q of %s", k, typ)
	}
	return item.Addr().Interface().(Step), nil
}

// UnmarshalTraversal decodes a JSON array of steps.
func UnmarshalTraversal(data []byte) (Traversal, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	if arr == nil {
		return nil, nil
	}
	t := make(Traversal, 0, len(arr))
	for _, r := range arr {
		s, err := Unmarshal(r)
		if err != nil {
			return nil, err
		}
		t = append(t, s)
	}
	return t, nil
}

// Marshal encodes a single step. Only non-zero fields are written.
func Marshal(s Step) ([]byte, error) {
	rv := reflect.ValueOf(s)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	tp := rv.Type()
	m := map[string]interface{}{stepKey: NameOf(s)}
	for i := 0; i < tp.NumField(); i++ {
		f := tp.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if fv.IsZero() {
			continue
		}
		switch f.Type {
		case quadValue:
			m[name] = nativeOf(fv.Interface().(quad.Value))
		case quadSliceValue:
			m[name] = nativeValues(fv.Interface().([]quad.Value))
		default:
			m[name] = fv.Interface()
		}
	}
	return json.Marshal(m)
}
