package cli

import (
	"context"
	"strings"
	"testing"

	"bookminder/memstore"
	"bookminder/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seedJSON = `{
  "categories": [
    {"name": "Science Fiction", "image": "https://img/sf.png", "description": "space"},
    {"name": "History"}
  ],
  "books": [
    {"name": "Dune", "author": "Frank Herbert", "category": "Science Fiction", "quantity": 3, "rating": 4.5},
    {"name": "SPQR", "author": "Mary Beard", "category": "History", "quantity": 1}
  ]
}`

func TestSeed_ImportsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	catalog := services.NewCatalog(st, zap.NewNop())

	rep, err := Seed(ctx, catalog, strings.NewReader(seedJSON), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Categories: 2, Books: 2}, rep)

	rep, err = Seed(ctx, catalog, strings.NewReader(seedJSON), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Skipped: 4}, rep)

	books, borrows := st.Counts()
	assert.Equal(t, 2, books)
	assert.Zero(t, borrows)

	b, err := st.FindBookByName(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Quantity)
	assert.Equal(t, "Frank Herbert", b.Author)
}

func TestSeed_RejectsBadInput(t *testing.T) {
	catalog := services.NewCatalog(memstore.New(), zap.NewNop())

	_, err := Seed(context.Background(), catalog, strings.NewReader(`{"books": [`), zap.NewNop())
	assert.Error(t, err)

	_, err = Seed(context.Background(), catalog, strings.NewReader(`{"shelves": []}`), zap.NewNop())
	assert.Error(t, err, "unknown top-level keys are refused")

	_, err = Seed(context.Background(), catalog, strings.NewReader(`{"books": [{"name": "Broken", "quantity": -1}]}`), zap.NewNop())
	assert.ErrorContains(t, err, "Broken")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("jwt-secret"))
}
