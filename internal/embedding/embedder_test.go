package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vec, s.err
}

func TestLazy(t *testing.T) {
	t.Run("initializes once under concurrency", func(t *testing.T) {
		var builds atomic.Int32

		l := NewLazy(func(context.Context) (Embedder, error) {
			builds.Add(1)
			return stubEmbedder{vec: []float32{3, 4}}, nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := l.Embed(context.Background(), "text")
				assert.NoError(t, err)
				assert.InDeltaSlice(t, []float32{0.6, 0.8}, v, 1e-6)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), builds.Load())
	})

	t.Run("failed initialization is retried", func(t *testing.T) {
		calls := 0
		l := NewLazy(func(context.Context) (Embedder, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("model unavailable")
			}
			return stubEmbedder{vec: []float32{1, 0}}, nil
		})

		_, err := l.Embed(context.Background(), "text")
		assert.Error(t, err)

		v, err := l.Embed(context.Background(), "text")
		assert.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, v)
		assert.Equal(t, 2, calls)
	})

	t.Run("embed error", func(t *testing.T) {
		cause := errors.New("timeout")
		l := NewLazy(func(context.Context) (Embedder, error) {
			return stubEmbedder{err: cause}, nil
		})

		v, err := l.Embed(context.Background(), "text")

		assert.ErrorIs(t, err, cause)
		assert.Nil(t, v)
	})
}

func TestNormalize(t *testing.T) {
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, Normalize([]float32{3, 4}), 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1", normalizeHost("http://localhost:11434"))
	assert.Equal(t, "http://localhost:11434/v1", normalizeHost("http://localhost:11434/"))
	assert.Equal(t, "http://localhost:11434/v1", normalizeHost("http://localhost:11434/v1"))
}

func embeddingsServer(t *testing.T, vec []float32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "all-minilm",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vec},
			},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Embed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		srv := embeddingsServer(t, []float32{0.1, 0.2, 0.3})

		c, err := NewClient(Config{Host: srv.URL, Model: "all-minilm", Dimensions: 3}, logger)
		require.NoError(t, err)

		v, err := c.Embed(context.Background(), "wiki https://wiki.example.com ")

		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, v, 1e-6)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		srv := embeddingsServer(t, []float32{0.1, 0.2})

		c, err := NewClient(Config{Host: srv.URL, Model: "all-minilm", Dimensions: 3}, logger)
		require.NoError(t, err)

		_, err = c.Embed(context.Background(), "text")

		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := NewClient(Config{Host: "http://localhost:11434"}, logger)

		assert.Error(t, err)
	})
}
