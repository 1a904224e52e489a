// Package embedding turns text into fixed-length, unit-normalized vectors.
//
// The model client is expensive to build, so callers share one Lazy embedder
// per process. The first caller builds the client; concurrent callers wait
// for it and reuse the same instance.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var embedDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "golinks_embedding_duration_seconds",
		Help:    "Latency of embedding generation in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"result"},
)

// Embedder generates a vector embedding for a text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Factory builds the underlying embedder.
type Factory func(ctx context.Context) (Embedder, error)

// Lazy builds its embedder on first use and reuses it afterwards.
// A failed build is not cached; the next call tries again.
type Lazy struct {
	mu       sync.Mutex
	factory  Factory
	embedder Embedder
}

// NewLazy returns a Lazy embedder backed by factory.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedder != nil {
		return l.embedder, nil
	}

	e, err := l.factory(ctx)
	if err != nil {
		return nil, err
	}

	l.embedder = e
	return e, nil
}

// Embed embeds text and normalizes the result to unit length.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embedding.Lazy.Embed"

	e, err := l.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to initialize embedder: %w", op, err)
	}

	start := time.Now()

	v, err := e.Embed(ctx, text)
	if err != nil {
		embedDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s: failed to embed text: %w", op, err)
	}

	embedDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return Normalize(v), nil
}

// Normalize scales v to unit length. A zero vector is returned as zeros.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	n := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}
