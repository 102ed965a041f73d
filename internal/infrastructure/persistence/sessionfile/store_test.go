package sessionfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

const testSealKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newStore(t *testing.T, sealKey string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewStore(StoreConfig{Path: path, SealKeyHex: sealKey})
	require.NoError(t, err)
	return store, path
}

func testRecord() *session.Record {
	return &session.Record{
		Token: "tok",
		Profile: session.Profile{
			ID:        100,
			FirstName: "Ольга",
			LastName:  "Иванова",
			Role:      session.RoleParent,
		},
		Pupils: []session.Pupil{
			{ID: 1, FirstName: "Маша", LastName: "Иванова"},
		},
	}
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newStore(t, "")

	_, err := store.Get(context.Background(), session.UserKey(42))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPutGetRoundTrip(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()
	key := session.UserKey(42)

	require.NoError(t, store.Put(ctx, key, testRecord()))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "Ольга Иванова", got.Profile.FullName())
	require.Len(t, got.Pupils, 1)
}

func TestGetReturnsCopy(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()
	key := session.UserKey(42)
	require.NoError(t, store.Put(ctx, key, testRecord()))

	first, err := store.Get(ctx, key)
	require.NoError(t, err)
	first.Token = "mutated"
	first.Pupils[0].FirstName = "mutated"

	second, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "tok", second.Token)
	assert.Equal(t, "Маша", second.Pupils[0].FirstName)
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")
	key := session.UserKey(42)

	store, err := NewStore(StoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, key, testRecord()))

	reopened, err := NewStore(StoreConfig{Path: path})
	require.NoError(t, err)

	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()
	key := session.UserKey(42)

	require.NoError(t, store.Delete(ctx, key))

	require.NoError(t, store.Put(ctx, key, testRecord()))
	require.NoError(t, store.Delete(ctx, key))

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCopyIsByValue(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()
	userKey := session.UserKey(42)
	chatKey := session.ChatKey(-100)

	require.NoError(t, store.Put(ctx, userKey, testRecord()))
	require.NoError(t, store.Copy(ctx, userKey, chatKey))

	// Mutating the chat copy must not touch the user session.
	chatRecord, err := store.Get(ctx, chatKey)
	require.NoError(t, err)
	require.NoError(t, chatRecord.SelectPupil(1))
	require.NoError(t, store.Put(ctx, chatKey, chatRecord))

	userRecord, err := store.Get(ctx, userKey)
	require.NoError(t, err)
	assert.Zero(t, userRecord.CurrentPupilID)
}

func TestCopyMissingSource(t *testing.T) {
	store, _ := newStore(t, "")

	err := store.Copy(context.Background(), session.UserKey(1), session.ChatKey(2))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestKeys(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, session.UserKey(1), testRecord()))
	require.NoError(t, store.Put(ctx, session.UserKey(2), testRecord()))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []session.Key{"1", "2"}, keys)
}

func TestSealedFileIsNotPlaintext(t *testing.T) {
	store, path := newStore(t, testSealKey)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, session.UserKey(42), testRecord()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok")

	reopened, err := NewStore(StoreConfig{Path: path, SealKeyHex: testSealKey})
	require.NoError(t, err)

	got, err := reopened.Get(ctx, session.UserKey(42))
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
}

func TestSealedFileRejectsWrongKey(t *testing.T) {
	store, path := newStore(t, testSealKey)
	require.NoError(t, store.Put(context.Background(), session.UserKey(42), testRecord()))

	wrongKey := "ff0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	_, err := NewStore(StoreConfig{Path: path, SealKeyHex: wrongKey})
	assert.Error(t, err)
}

func TestBadSealKeyRejected(t *testing.T) {
	_, err := NewStore(StoreConfig{
		Path:       filepath.Join(t.TempDir(), "s.json"),
		SealKeyHex: "not-hex",
	})
	assert.Error(t, err)
}
