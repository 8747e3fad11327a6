package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takeru0219/factiva-fetcher/internal/feed"
)

func validCredentials() feed.Credentials {
	return feed.Credentials{
		UserID:       "user",
		Password:     "pass",
		ClientID:     "client",
		ClientSecret: "secret",
	}
}

func TestNewHTTPClientRequiresAllCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*feed.Credentials)
	}{
		{name: "user id", mutate: func(c *feed.Credentials) { c.UserID = "" }},
		{name: "password", mutate: func(c *feed.Credentials) { c.Password = "" }},
		{name: "client id", mutate: func(c *feed.Credentials) { c.ClientID = "" }},
		{name: "client secret", mutate: func(c *feed.Credentials) { c.ClientSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := validCredentials()
			tt.mutate(&creds)
			_, err := feed.NewHTTPClient("https://feed.example.com", creds)
			require.Error(t, err)
		})
	}
}

func TestFetchBatchDecodesDocuments(t *testing.T) {
	var gotPath, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"documents": []map[string]any{
				{"documentId": "d-1", "headline": "First"},
				{"id": "d-2", "title": "Second"},
			},
		})
	}))
	defer srv.Close()

	client, err := feed.NewHTTPClient(srv.URL, validCredentials())
	require.NoError(t, err)
	defer client.Close()

	docs, err := client.FetchBatch(context.Background(), "stream-1", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "d-1", docs[0]["documentId"])
	require.Equal(t, "/streams/stream-1/documents", gotPath)
	require.Equal(t, "user", gotUser)
}

func TestFetchBatchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := feed.NewHTTPClient(srv.URL, validCredentials())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.FetchBatch(context.Background(), "stream-1", 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
