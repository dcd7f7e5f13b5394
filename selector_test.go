package xmlstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectorFixtureXML = `<catalog>
	<book id="b1" class="featured hardcover">
		<title>Go in Action</title>
	</book>
	<book id="b2" class="paperback">
		<title>The Go Programming Language</title>
	</book>
	<magazine id="m1"><title>Wired</title></magazine>
</catalog>`

func fixtureStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Ingest(context.Background(), strings.NewReader(selectorFixtureXML)))
	return store
}

func TestSelectorTagMatch(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("book")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSelectorIDMatch(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("#b2")
	require.NoError(t, err)

	n, err := sel.MatchOne(store)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "book", n.Name)
}

func TestSelectorClassMatch(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector(".hardcover")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	idAttr, err := store.AttrByName(matches[0].NodeID, "id")
	require.NoError(t, err)
	assert.Equal(t, "b1", idAttr.Value)
}

func TestSelectorAttrExists(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("[class]")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSelectorAttrEquals(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector(`[id="m1"]`)
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "magazine", matches[0].Name)
}

func TestSelectorChildCombinator(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("catalog > book")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	sel2, err := ParseSelector("catalog > title")
	require.NoError(t, err)
	matches2, err := sel2.MatchAll(store)
	require.NoError(t, err)
	assert.Empty(t, matches2)
}

func TestSelectorDescendantCombinator(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("catalog title")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestSelectorAdjacentSiblingCombinator(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("book + book")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	idAttr, err := store.AttrByName(matches[0].NodeID, "id")
	require.NoError(t, err)
	assert.Equal(t, "b2", idAttr.Value)
}

func TestSelectorSubsequentSiblingCombinator(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("book ~ magazine")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "magazine", matches[0].Name)
}

func TestSelectorCommaAlternatives(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("magazine, #b1")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSelectorPseudoClassNeverMatches(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("book:hover")
	require.NoError(t, err)
	assert.True(t, sel.HasPseudoClasses())

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSelectorParseErrorOnEmptyCompound(t *testing.T) {
	_, err := ParseSelector("book >")
	assert.ErrorIs(t, err, ErrSelectorParse)
}

func TestSelectorWildcard(t *testing.T) {
	store := fixtureStore(t)
	sel, err := ParseSelector("catalog > *")
	require.NoError(t, err)

	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

const nsFixtureXML = `<catalog xmlns:x="urn:x-lang" xmlns:y="urn:y-lang">
	<book x:lang="en" y:lang="fr"><title>Go in Action</title></book>
</catalog>`

func TestSelectorNamespaceQualifiedAttrMatchesDeclaredPrefix(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Ingest(context.Background(), strings.NewReader(nsFixtureXML)))

	sel, err := ParseSelector(`[x|lang="en"]`)
	require.NoError(t, err)
	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "book", matches[0].Name)
}

func TestSelectorNamespaceQualifiedAttrDoesNotMatchOtherPrefix(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Ingest(context.Background(), strings.NewReader(nsFixtureXML)))

	// Same attribute name, different declared prefix: y:lang="fr" must not
	// satisfy an x|lang selector even though both resolve the same XML
	// local name "lang".
	sel, err := ParseSelector(`[x|lang="fr"]`)
	require.NoError(t, err)
	matches, err := sel.MatchAll(store)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
