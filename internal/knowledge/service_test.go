package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestService(handler http.HandlerFunc) (*Service, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "test-key", testLogger())
	return NewService(client, testLogger()), server
}

func TestSearchMapsResults(t *testing.T) {
	var captured SearchRequest

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(SearchResponse{
			Results: []SearchResult{
				{Text: "Assessments are timed.", Source: "portal-guide/assessment-rules#0", Score: 0.91},
				{Text: "", Source: "portal-guide/empty#0", Score: 0.40},
				{Text: "Results appear after submission.", Source: "portal-guide/viewing-results#0", Score: 0.35},
			},
		})
	})
	defer server.Close()

	docs := service.Search(context.Background(), "how long do assessments take", 3)

	assert.Equal(t, "how long do assessments take", captured.Query)
	assert.Equal(t, 3, captured.TopK)

	// Empty-text results are dropped.
	require.Len(t, docs, 2)
	assert.Equal(t, "Assessments are timed.", docs[0].Text)
	assert.Equal(t, "portal-guide/assessment-rules#0", docs[0].Source)
	assert.InDelta(t, 0.91, docs[0].Score, 0.001)
	assert.Equal(t, "Results appear after submission.", docs[1].Text)
}

func TestSearchDegradesToEmptyOnError(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	})
	defer server.Close()

	docs := service.Search(context.Background(), "assessments", 3)
	assert.Empty(t, docs)
}

func TestSearchDegradesToEmptyWhenUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "key", testLogger())
	service := NewService(client, testLogger())

	docs := service.Search(context.Background(), "assessments", 3)
	assert.Empty(t, docs)
}

func TestIndexSnippetSuccess(t *testing.T) {
	var captured IndexRequest

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(IndexResponse{Indexed: 1})
	})
	defer server.Close()

	err := service.IndexSnippet(context.Background(), "Pass mark is 60%.", "assessment/7#0", map[string]interface{}{
		"category": "assessments",
	})

	require.NoError(t, err)
	require.Len(t, captured.Documents, 1)
	assert.Equal(t, "Pass mark is 60%.", captured.Documents[0].Text)
	assert.Equal(t, "assessment/7#0", captured.Documents[0].Source)
	assert.Equal(t, "assessments", captured.Documents[0].Metadata["category"])
}

func TestIndexSnippetRejectedDocument(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(IndexResponse{Indexed: 0})
	})
	defer server.Close()

	err := service.IndexSnippet(context.Background(), "text", "portal-guide/x#0", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 of 1")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(server.URL, "key", testLogger())

	go func() {
		// Cancel while the retry loop is sleeping between attempts.
		cancel()
	}()

	_, err := client.IndexDocumentsWithRetry(ctx, IndexRequest{
		Documents: []Document{{Text: "t", Source: "s"}},
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
