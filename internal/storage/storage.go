package storage

import (
	"context"

	"community-crawler/internal/types"
)

// Sink persists a batch of normalized posts.
type Sink interface {
	// Append writes posts to the sink and returns how many were actually
	// stored after de-duplication.
	Append(ctx context.Context, posts []types.Post) (int, error)
	Name() string
	Close(ctx context.Context) error
}

// Multi fans one Append out across several sinks. The first error stops
// the fan-out; sinks before it have already been written.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Append(ctx context.Context, posts []types.Post) (int, error) {
	stored := 0
	for _, sink := range m.sinks {
		n, err := sink.Append(ctx, posts)
		if err != nil {
			return stored, err
		}
		if n > stored {
			stored = n
		}
	}
	return stored, nil
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Close(ctx context.Context) error {
	var first error
	for _, sink := range m.sinks {
		if err := sink.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
