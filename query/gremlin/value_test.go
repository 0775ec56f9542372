package gremlin

import (
	"encoding/json"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"
)

func TestAsValue(t *testing.T) {
	for _, c := range []struct {
		in  interface{}
		exp quad.Value
	}{
		{in: nil, exp: nil},
		{in: "bob", exp: quad.String("bob")},
		{in: json.Number("42"), exp: quad.Int(42)},
		{in: json.Number("4.5"), exp: quad.Float(4.5)},
		{in: true, exp: quad.Bool(true)},
		{in: map[string]interface{}{"@id": "ex:bob"}, exp: quad.IRI("ex:bob")},
		{in: quad.Int(3), exp: quad.Int(3)},
	} {
		v, err := AsValue(c.in)
		require.NoError(t, err)
		require.Equal(t, c.exp, v)
	}

	_, err := AsValue(map[string]interface{}{"name": "bob"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = AsValue(struct{}{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseValues(t *testing.T) {
	vals, err := parseValues(json.RawMessage(`["a", 1, 2.5, null]`))
	require.NoError(t, err)
	require.Equal(t, []quad.Value{quad.String("a"), quad.Int(1), quad.Float(2.5), nil}, vals)

	vals, err = parseValues(json.RawMessage(`"a"`))
	require.NoError(t, err)
	require.Equal(t, []quad.Value{quad.String("a")}, vals)
}

func TestIDString(t *testing.T) {
	for _, c := range []struct {
		in  quad.Value
		exp string
	}{
		{in: quad.String("v1"), exp: "v1"},
		{in: quad.Int(7), exp: "7"},
		{in: quad.Float(7), exp: "7"},
		{in: quad.Float(7.25), exp: "7.25"},
		{in: quad.IRI("ex:a"), exp: "ex:a"},
		{in: quad.BNode("b1"), exp: "_:b1"},
	} {
		s, err := idString(c.in)
		require.NoError(t, err)
		require.Equal(t, c.exp, s)
	}
	_, err := idString(quad.Bool(true))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNativeOf(t *testing.T) {
	require.Nil(t, nativeOf(nil))
	require.Equal(t, map[string]string{"@id": "ex:a"}, nativeOf(quad.IRI("ex:a")))
	require.Equal(t, "a", nativeOf(quad.String("a")))
	require.Equal(t, []interface{}{"a", int64(1)}, nativeValues([]quad.Value{quad.String("a"), quad.Int(1)}))
}
