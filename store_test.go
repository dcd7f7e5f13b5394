package xmlstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemorySeedsSentinelRows(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.Node(DocumentSentinelID)
	require.NoError(t, err)
	assert.Equal(t, NodeDocument, doc.Type)

	root, err := store.Node(RootPlaceholderID)
	require.NoError(t, err)
	assert.Equal(t, NodeElement, root.Type)
	assert.Equal(t, int64(DocumentSentinelID), root.ParentNodeID)
}

func TestOpenInMemoryWithTypeInferenceAddsColumn(t *testing.T) {
	store, err := OpenInMemory(WithTypeInference())
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, store.InferenceEnabled())

	_, err = store.InferredTypeOf(RootPlaceholderID)
	require.NoError(t, err)
}

func TestOpenInMemoryWithoutTypeInferenceRejectsLookup(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.InferenceEnabled())

	_, err = store.InferredTypeOf(RootPlaceholderID)
	assert.ErrorIs(t, err, ErrInferenceDisabled)
}

func TestOpenTempRemovesDirOnClose(t *testing.T) {
	store, err := OpenTemp()
	require.NoError(t, err)

	dir := store.tempDir
	require.NotEmpty(t, dir)

	require.NoError(t, store.Close())

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCaseInsensitiveOption(t *testing.T) {
	store, err := OpenInMemory(WithCaseInsensitive())
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, store.CaseInsensitive())
}
