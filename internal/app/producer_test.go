package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/bend_glove/internal/glove"
)

type flakySource struct {
	calls int
}

func (f *flakySource) Next() (glove.Sample, error) {
	f.calls++
	if f.calls%2 == 0 {
		return glove.Sample{}, errors.New("glitch")
	}
	return glove.Sample{Roll: float64(f.calls)}, nil
}

func TestPublishSamplesSkipsSourceErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &flakySource{}
	var got []float64

	publishSamples(ctx, src, time.Millisecond, time.Hour, func(s glove.Sample) {
		got = append(got, s.Roll)
		if len(got) == 3 {
			cancel()
		}
	})

	// a tick racing the cancel may publish once more
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []float64{1, 3, 5}, got[:3])
}

func TestPublishSamplesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		publishSamples(ctx, glove.NewMockSource(false), time.Millisecond, time.Second, func(glove.Sample) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishSamples did not return after cancel")
	}
}
