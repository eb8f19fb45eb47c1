package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossEncoder_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bge", req.Model)
		assert.Equal(t, 3, req.TopN)
		// results arrive sorted by relevance, not by input position
		_, _ = w.Write([]byte(`{"results":[{"index":2,"relevance_score":0.9},{"index":0,"relevance_score":0.5},{"index":1,"relevance_score":0.1}]}`))
	}))
	defer srv.Close()

	scores, err := NewCrossEncoder(srv.URL, "secret", "bge").Score(context.Background(), "q", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.1, 0.9}, scores)
}

func TestCrossEncoder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusServiceUnavailable, `busy`},
		{"missing", http.StatusOK, `{"results":[{"index":0,"relevance_score":0.5}]}`},
		{"out of range", http.StatusOK, `{"results":[{"index":7,"relevance_score":0.5},{"index":0,"relevance_score":0.1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewCrossEncoder(srv.URL, "", "m").Score(context.Background(), "q", []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestCrossEncoder_EmptyInput(t *testing.T) {
	scores, err := NewCrossEncoder("http://unused", "", "m").Score(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
