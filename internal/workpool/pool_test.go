package workpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		raw       string
		want      Mode
		expectErr bool
	}{
		{raw: "", want: ModeAuto},
		{raw: "auto", want: ModeAuto},
		{raw: "ON", want: ModeOn},
		{raw: "true", want: ModeOn},
		{raw: "off", want: ModeOff},
		{raw: "disabled", want: ModeOff},
		{raw: "sometimes", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseMode(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "off")
	mode, err := ModeFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeOff, mode)

	t.Setenv(EnvVar, "bogus")
	mode, err = ModeFromEnv()
	assert.Error(t, err)
	assert.Equal(t, ModeAuto, mode)
}

func TestModeEnabled(t *testing.T) {
	assert.True(t, ModeOn.Enabled())
	assert.False(t, ModeOff.Enabled())
	assert.True(t, ModeAuto.Enabled())
}

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2)
	assert.Equal(t, 2, p.Limit())
	var ran atomic.Int32

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Go(context.Background(), func(context.Context) { ran.Add(1) }))
	}
	p.Wait()
	assert.Equal(t, int32(10), ran.Load())
}

func TestPoolRespectsLimit(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	require.NoError(t, p.Go(context.Background(), func(context.Context) { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Go(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	p.Wait()
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := NewPool(1)
	require.NoError(t, p.Go(context.Background(), func(context.Context) { panic("boom") }))
	p.Wait()
	require.NoError(t, p.Go(context.Background(), func(context.Context) {}))
	p.Wait()
}

func TestDisabledAndInline(t *testing.T) {
	assert.ErrorIs(t, Disabled{}.Go(context.Background(), func(context.Context) {}), ErrUnavailable)
	assert.False(t, Disabled{}.Available())

	ran := false
	require.NoError(t, Inline{}.Go(context.Background(), func(context.Context) { ran = true }))
	assert.True(t, ran)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Inline{}.Go(ctx, func(context.Context) {}), context.Canceled)
}

func TestDefaultIsCreatedOnceAndSubstitutable(t *testing.T) {
	first := Default()
	assert.Equal(t, first, Init(ModeOff, 1), "later Init calls must not replace the executor")

	restore := SetDefault(Inline{})
	assert.Equal(t, Inline{}, Default())
	restore()
	assert.Equal(t, first, Default())
}

func TestSpawn(t *testing.T) {
	for _, exec := range []Executor{Disabled{}, NewPool(2)} {
		restore := SetDefault(exec)
		done := make(chan struct{})
		require.NoError(t, Spawn(context.Background(), func(context.Context) { close(done) }))
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("task never ran on %T", exec)
		}
		restore()
	}
}
