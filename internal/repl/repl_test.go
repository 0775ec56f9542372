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

package repl

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/internal/catalog"
	"github.com/cayleygraph/gremsql/query"
	_ "github.com/cayleygraph/gremsql/query/gremlin/js"
)

var testSplitLines = []struct {
	line              string
	expectedCommand   string
	expectedArguments string
}{
	{
		line:              ":sql g.V().out('knows')",
		expectedCommand:   ":sql",
		expectedArguments: " g.V().out('knows')",
	},
	{
		line:              ":debug t",
		expectedCommand:   ":debug",
		expectedArguments: " t",
	},
	{
		line: "",
		// expectedCommand is nil
		// expectedArguments is nil
	},
	{
		line:              `  :save  friends  g.V().has('name', 'marko  ') `,
		expectedCommand:   ":save",
		expectedArguments: `  friends  g.V().has('name', 'marko  ')`,
	},
}

func TestSplitLines(t *testing.T) {
	for _, testcase := range testSplitLines {
		command, arguments := splitLine(testcase.line)
		require.Equal(t, testcase.expectedCommand, command)
		require.Equal(t, testcase.expectedArguments, arguments)
	}
}

func newShell(t *testing.T) (*shell, *bytes.Buffer) {
	ses, err := query.NewSession(query.Config{})
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	return &shell{
		c:    Config{Session: ses, Catalog: catalog.NewMemory(), Explain: true},
		w:    buf,
		lang: defaultLanguage,
	}, buf
}

func TestExplain(t *testing.T) {
	s, buf := newShell(t)
	err := s.exec(context.Background(), `g.V().hasLabel('person')`)
	require.NoError(t, err)
	require.Equal(t, "SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 WHERE n_0.label IN (?)\n-- args: [\"person\"]\n", buf.String())
}

func TestParseMore(t *testing.T) {
	s, _ := newShell(t)
	err := s.exec(context.Background(), "g.V().out(\n")
	require.ErrorIs(t, err, query.ErrParseMore)
}

func TestCommands(t *testing.T) {
	s, buf := newShell(t)
	ctx := context.Background()

	require.False(t, s.command(ctx, `g.V()`))

	require.True(t, s.command(ctx, `:lang json`))
	require.Equal(t, "json", s.lang)
	require.True(t, s.command(ctx, `:lang sparql`))
	require.Equal(t, "json", s.lang)
	require.True(t, s.command(ctx, `:lang js`))

	require.True(t, s.command(ctx, `:save people g.V().hasLabel('person')`))
	require.Contains(t, buf.String(), `Saved "people"`)

	buf.Reset()
	require.True(t, s.command(ctx, `:list`))
	require.Equal(t, "people\t[js]\tg.V().hasLabel('person')\n", buf.String())

	buf.Reset()
	require.True(t, s.command(ctx, `:run people`))
	require.Contains(t, buf.String(), "FROM vertices AS n_0 WHERE n_0.label IN (?)")

	buf.Reset()
	require.True(t, s.command(ctx, `:nope`))
	require.Equal(t, "Unknown command: \":nope\"\n", buf.String())
}

func TestRunWithoutDatabase(t *testing.T) {
	s, buf := newShell(t)
	err := Run(context.Background(), buf, s.c.Session, "js", `g.V()`)
	require.ErrorIs(t, err, query.ErrNoDatabase)
}
