// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lru

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/graph/sql"
)

func key(i int) Key {
	return Key{Dialect: "sqlite", Lang: "js", Text: strconv.Itoa(i)}
}

func entry(s string) *Entry {
	return &Entry{Statements: []sql.Rendered{{SQL: s, Query: true}}}
}

func TestEviction(t *testing.T) {
	c := New(2)
	c.Put(key(1), entry("a"))
	c.Put(key(2), entry("b"))

	// touch 1, so 2 is evicted next
	_, ok := c.Get(key(1))
	require.True(t, ok)

	c.Put(key(3), entry("c"))
	require.Equal(t, 2, c.Len())

	_, ok = c.Get(key(2))
	require.False(t, ok)
	e, ok := c.Get(key(1))
	require.True(t, ok)
	require.Equal(t, "a", e.Statements[0].SQL)
}

func TestReplace(t *testing.T) {
	c := New(2)
	c.Put(key(1), entry("a"))
	c.Put(key(1), entry("b"))
	require.Equal(t, 1, c.Len())
	e, ok := c.Get(key(1))
	require.True(t, ok)
	require.Equal(t, "b", e.Statements[0].SQL)

	c.Del(key(1))
	_, ok = c.Get(key(1))
	require.False(t, ok)
	c.Del(key(1))
}

func TestKeyIncludesDialect(t *testing.T) {
	c := New(4)
	c.Put(key(1), entry("a"))
	k := key(1)
	k.Dialect = "postgres"
	_, ok := c.Get(k)
	require.False(t, ok)
}

func TestDisabled(t *testing.T) {
	c := New(0)
	c.Put(key(1), entry("a"))
	_, ok := c.Get(key(1))
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}
