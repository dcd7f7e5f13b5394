package xmlstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE catalog>
<catalog xmlns:x="urn:x-lang">
	<!-- first book -->
	<book id="b1" x:lang="en">
		<title>Go in Action</title>
		<price>29.99</price>
		<description><![CDATA[Has <angle> brackets]]></description>
	</book>
</catalog>`

func ptr(s string) *string { return &s }

func mustIngest(t *testing.T, xmlText string, opts ...Option) *Store {
	t.Helper()
	store, err := OpenInMemory(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.Ingest(context.Background(), strings.NewReader(xmlText))
	require.NoError(t, err)
	return store
}

func TestIngestBuildsRootInPlace(t *testing.T) {
	store := mustIngest(t, sampleXML)

	root, err := store.Node(RootPlaceholderID)
	require.NoError(t, err)
	assert.Equal(t, NodeElement, root.Type)
	assert.Equal(t, "catalog", root.Name)
	assert.Equal(t, int64(DocumentSentinelID), root.ParentNodeID)
}

func TestIngestElementCount(t *testing.T) {
	store := mustIngest(t, sampleXML)

	// catalog, book, title, price, description
	n, err := store.ElementCount()
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestIngestDocumentLevelSiblingsOfRoot(t *testing.T) {
	store := mustIngest(t, sampleXML)

	children, err := store.ChildNodes(DocumentSentinelID)
	require.NoError(t, err)
	require.Len(t, children, 3)

	var types []NodeType
	orders := make(map[int64]bool)
	for _, c := range children {
		types = append(types, c.Type)
		assert.False(t, orders[c.Order], "duplicate node_order %d among document-level siblings", c.Order)
		orders[c.Order] = true
	}
	assert.Contains(t, types, NodeDeclaration)
	assert.Contains(t, types, NodeDoctype)
	assert.Contains(t, types, NodeElement)

	// ChildNodes orders by node_order, so the returned slice must already
	// reflect document order: declaration, then DOCTYPE, then the root
	// element, matching sampleXML's byte order.
	assert.Equal(t, []NodeType{NodeDeclaration, NodeDoctype, NodeElement}, types)
}

func TestIngestAttributesAndNamespace(t *testing.T) {
	store := mustIngest(t, sampleXML)

	books, err := store.Children(RootPlaceholderID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	book := books[0]
	assert.Equal(t, "book", book.Name)

	idAttr, err := store.AttrByName(book.NodeID, "id")
	require.NoError(t, err)
	assert.Equal(t, "b1", idAttr.Value)

	langAttr, err := store.AttrByNameNS(book.NodeID, "lang", ptr("x"))
	require.NoError(t, err)
	assert.Equal(t, "en", langAttr.Value)
	assert.Equal(t, "x", langAttr.NS)
}

func TestIngestCDataDistinguishedFromText(t *testing.T) {
	store := mustIngest(t, sampleXML)

	books, err := store.Children(RootPlaceholderID)
	require.NoError(t, err)
	descriptions, err := store.ChildrenByName(books[0].NodeID, "description")
	require.NoError(t, err)
	require.Len(t, descriptions, 1)

	children, err := store.ChildNodes(descriptions[0].NodeID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, NodeCData, children[0].Type)
	assert.Equal(t, "Has <angle> brackets", children[0].Value)
}

func TestIngestTitleTextIsPlainText(t *testing.T) {
	store := mustIngest(t, sampleXML)

	books, _ := store.Children(RootPlaceholderID)
	titles, err := store.ChildrenByName(books[0].NodeID, "title")
	require.NoError(t, err)
	require.Len(t, titles, 1)

	children, err := store.ChildNodes(titles[0].NodeID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, NodeText, children[0].Type)
	assert.Equal(t, "Go in Action", children[0].Value)
}

func TestIngestWithTypeInferenceClassifiesPrice(t *testing.T) {
	store := mustIngest(t, sampleXML, WithTypeInference())

	books, _ := store.Children(RootPlaceholderID)
	prices, err := store.ChildrenByName(books[0].NodeID, "price")
	require.NoError(t, err)
	children, err := store.ChildNodes(prices[0].NodeID)
	require.NoError(t, err)

	ty, err := store.InferredTypeOf(children[0].NodeID)
	require.NoError(t, err)
	assert.Equal(t, InferredFloat, ty)
}

func TestIngestCaseInsensitiveFoldsNames(t *testing.T) {
	store := mustIngest(t, sampleXML, WithCaseInsensitive())

	books, err := store.ChildrenByName(RootPlaceholderID, "BOOK")
	require.NoError(t, err)
	require.Len(t, books, 1)
}

func TestIngestMalformedXMLRollsBack(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.Ingest(context.Background(), strings.NewReader("<a><b></a>"))
	assert.Error(t, err)

	// The transaction rolled back: the root sentinel was never overwritten.
	root, err := store.Node(RootPlaceholderID)
	require.NoError(t, err)
	assert.Empty(t, root.Name)
}
