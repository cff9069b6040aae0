package seedclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
	"users": [
		{"username": "@alice", "displayName": "Alice", "role": "User"},
		{"username": "@bob", "displayName": "Bob", "role": "User"}
	],
	"chats": [
		{"id": "c1", "participants": ["@alice", "@bob"], "messages": []}
	]
}`

func TestFetchFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seedJSON))
	}))
	defer srv.Close()

	doc, err := New(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Users, 2)
	assert.Equal(t, "@alice", doc.Users[0].Username)
	require.Len(t, doc.Chats, 1)
	assert.Equal(t, []string{"@alice", "@bob"}, doc.Chats[0].Participants)
}

func TestFetchFromHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o644))

	doc, err := New(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Users, 2)
	assert.Len(t, doc.Chats, 1)
}

func TestFetchMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.json")).Fetch(context.Background())
	assert.Error(t, err)
}
