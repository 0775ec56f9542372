package catalog

import (
	"context"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/query/gremlin"
	"github.com/cayleygraph/gremsql/query/gremlin/steps"
)

var friends = gremlin.Traversal{
	&steps.V{IDs: []quad.Value{quad.String("1")}},
	&steps.Out{Labels: []string{"knows"}},
	&steps.Values{Keys: []string{"name"}},
}

func testCatalog(t *testing.T, c *Catalog) {
	ctx := context.Background()

	_, err := c.Get(ctx, "friends")
	require.ErrorIs(t, err, ErrNotFound)

	err = c.Put(ctx, Entry{Name: "friends", Lang: "js", Text: `g.V('1').out('knows').values('name')`, Traversal: friends})
	require.NoError(t, err)
	err = c.Put(ctx, Entry{Name: "all", Lang: "json", Text: `[{"step":"V"}]`, Traversal: gremlin.Traversal{&steps.V{}}})
	require.NoError(t, err)

	e, err := c.Get(ctx, "friends")
	require.NoError(t, err)
	require.Equal(t, "js", e.Lang)
	require.Equal(t, friends, e.Traversal)
	require.False(t, e.Updated.IsZero())

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "all", list[0].Name)
	require.Equal(t, "friends", list[1].Name)

	require.NoError(t, c.Delete(ctx, "all"))
	require.ErrorIs(t, c.Delete(ctx, "all"), ErrNotFound)

	list, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMemory(t *testing.T) {
	c := NewMemory()
	defer c.Close()
	testCatalog(t, c)
}

func TestPersistent(t *testing.T) {
	for _, backend := range []string{"", LevelDB, Badger} {
		backend := backend
		t.Run("backend="+backend, func(t *testing.T) {
			dir := t.TempDir()
			c, err := Open(backend, dir)
			require.NoError(t, err)
			testCatalog(t, c)
			require.NoError(t, c.Close())

			c, err = Open(backend, dir)
			require.NoError(t, err)
			defer c.Close()
			e, err := c.Get(context.Background(), "friends")
			require.NoError(t, err)
			require.Equal(t, friends, e.Traversal)

			list, err := c.List(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 1)
		})
	}
}

func TestBadgerKeepsOtherKeys(t *testing.T) {
	st, err := openBadger(t.TempDir())
	require.NoError(t, err)
	c := &Catalog{st: st}
	defer c.Close()
	ctx := context.Background()

	err = st.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("traversalsX"), []byte("not json"))
	})
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, Entry{Name: "a", Lang: "js", Traversal: friends}))

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].Name)
}

func TestOpen(t *testing.T) {
	c, err := Open(Badger, "")
	require.NoError(t, err)
	testCatalog(t, c)
	require.NoError(t, c.Close())

	_, err = Open("bolt", t.TempDir())
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestInvalidName(t *testing.T) {
	c := NewMemory()
	defer c.Close()
	ctx := context.Background()
	require.ErrorIs(t, c.Put(ctx, Entry{Name: ""}), ErrInvalidName)
	_, err := c.Get(ctx, "a/b")
	require.ErrorIs(t, err, ErrInvalidName)
}
