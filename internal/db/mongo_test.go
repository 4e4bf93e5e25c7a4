package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/taller-finder/internal/models"
)

// testStore connects to MONGO_URI and returns a store on a scratch database.
// Tests using it are skipped when no server is available.
func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}

	client, err := Connect(context.Background(), uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}

	store := NewStore(client, "test_taller_finder")
	require.NoError(t, store.database.Drop(context.Background()))
	require.NoError(t, store.EnsureIndexes(context.Background()))
	t.Cleanup(func() {
		_ = store.database.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestConnect_NoURI(t *testing.T) {
	client, err := Connect(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoURI)
	assert.Nil(t, client)
}

func TestConnect_BadURI(t *testing.T) {
	client, err := Connect(context.Background(), "mongodb://bad:uri")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNilCollections(t *testing.T) {
	users := &MongoUserCollection{}
	assert.Error(t, users.InsertUser(context.Background(), models.User{}))
	_, err := users.FindUserByUsername(context.Background(), "x")
	assert.Error(t, err)

	history := &MongoHistoryCollection{}
	assert.Error(t, history.InsertRecord(context.Background(), models.SearchRecord{}))
	_, err = history.FindRecent(context.Background(), "x", 5)
	assert.Error(t, err)
}
