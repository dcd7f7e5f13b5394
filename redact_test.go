package xmlstore

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redactFixtureXML = `<profile>
	<user id="550e8400-e29b-41d4-a716-446655440000">
		<name>Ada Lovelace</name>
		<age>36</age>
		<bio>Keep this one.</bio>
	</user>
</profile>`

func redactFixtureStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory(WithTypeInference())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Ingest(context.Background(), strings.NewReader(redactFixtureXML)))
	return store
}

func userNode(t *testing.T, store *Store) Node {
	t.Helper()
	users, err := store.ChildrenByName(RootPlaceholderID, "user")
	require.NoError(t, err)
	require.Len(t, users, 1)
	return users[0]
}

func textOf(t *testing.T, store *Store, parent Node, childName string) string {
	t.Helper()
	kids, err := store.ChildrenByName(parent.NodeID, childName)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	children, err := store.ChildNodes(kids[0].NodeID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	return children[0].Value
}

func TestRedactRequiresTypeInference(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Ingest(context.Background(), strings.NewReader(redactFixtureXML)))

	err = store.Redact()
	assert.ErrorIs(t, err, ErrInferenceDisabled)
}

func TestRedactScrubsEverythingByDefault(t *testing.T) {
	store := redactFixtureStore(t)
	user := userNode(t, store)

	require.NoError(t, store.Redact())

	assert.Equal(t, "[redacted]", textOf(t, store, user, "name"))
	assert.Equal(t, "0", textOf(t, store, user, "age"))
	assert.Equal(t, "[redacted]", textOf(t, store, user, "bio"))

	idAttr, err := store.AttrByName(user.NodeID, "id")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", idAttr.Value)
}

func TestRedactIgnoreRuleKeepsValue(t *testing.T) {
	store := redactFixtureStore(t)
	user := userNode(t, store)

	require.NoError(t, store.Redact(WithIgnoreRule(IgnoreRule{Tag: "bio", AllowValue: true})))

	assert.Equal(t, "Keep this one.", textOf(t, store, user, "bio"))
	assert.Equal(t, "[redacted]", textOf(t, store, user, "name"))
}

func TestRedactIgnoreRuleAllowsSpecificAttr(t *testing.T) {
	store := redactFixtureStore(t)
	user := userNode(t, store)

	require.NoError(t, store.Redact(
		WithIgnoreRule(IgnoreRule{Tag: "user", AllowAttrs: map[string]bool{"id": true}}),
	))

	idAttr, err := store.AttrByName(user.NodeID, "id")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", idAttr.Value)
}

func TestRedactMaskUUIDsIsDeterministicForAGivenSeed(t *testing.T) {
	seed := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	store1 := redactFixtureStore(t)
	require.NoError(t, store1.Redact(WithMaskUUIDs(), WithSeed(seed)))
	user1 := userNode(t, store1)
	attr1, err := store1.AttrByName(user1.NodeID, "id")
	require.NoError(t, err)

	store2 := redactFixtureStore(t)
	require.NoError(t, store2.Redact(WithMaskUUIDs(), WithSeed(seed)))
	user2 := userNode(t, store2)
	attr2, err := store2.AttrByName(user2.NodeID, "id")
	require.NoError(t, err)

	assert.Equal(t, attr1.Value, attr2.Value)
	assert.NotEqual(t, "550e8400-e29b-41d4-a716-446655440000", attr1.Value)
	_, err = uuid.Parse(attr1.Value)
	assert.NoError(t, err)
}

func TestRedactMaskUUIDsDifferentSeedsDiffer(t *testing.T) {
	store1 := redactFixtureStore(t)
	require.NoError(t, store1.Redact(WithMaskUUIDs(), WithSeed(uuid.MustParse("11111111-1111-1111-1111-111111111111"))))
	user1 := userNode(t, store1)
	attr1, _ := store1.AttrByName(user1.NodeID, "id")

	store2 := redactFixtureStore(t)
	require.NoError(t, store2.Redact(WithMaskUUIDs(), WithSeed(uuid.MustParse("22222222-2222-2222-2222-222222222222"))))
	user2 := userNode(t, store2)
	attr2, _ := store2.AttrByName(user2.NodeID, "id")

	assert.NotEqual(t, attr1.Value, attr2.Value)
}
