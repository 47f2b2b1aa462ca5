package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

type fakeClipboard struct {
	err    error
	copied []string
}

func (f *fakeClipboard) Copy(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) common.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func newTestWorkflow(clock *fakeClock) *Workflow {
	tt := &models.Title{TitleID: "1", Title: "One", Description: "Short"}
	return New(tt, BuildArtifacts("https://netcine.app", "NETCINE", tt), clock.AfterFunc)
}

func TestWorkflow_CopyLinkResetsAfterDelay(t *testing.T) {
	clock := &fakeClock{}
	w := newTestWorkflow(clock)
	cb := &fakeClipboard{}

	require.NoError(t, w.CopyLink(context.Background(), cb))

	assert.True(t, w.Copied())
	assert.Equal(t, []string{"https://netcine.app/watch/1"}, cb.copied)
	require.Len(t, clock.timers, 1)
	assert.Equal(t, 2000*time.Millisecond, clock.timers[0].d)

	artifacts := w.Artifacts()
	clock.timers[0].fn()

	assert.False(t, w.Copied())
	assert.Equal(t, artifacts, w.Artifacts())
	assert.Equal(t, "1", w.Title().TitleID)
}

func TestWorkflow_CopyLinkFailure(t *testing.T) {
	clock := &fakeClock{}
	w := newTestWorkflow(clock)

	err := w.CopyLink(context.Background(), &fakeClipboard{err: errors.New("denied")})

	require.Error(t, err)
	assert.True(t, common.IsClipboard(err))
	assert.False(t, w.Copied())
	assert.Empty(t, clock.timers)
}

func TestWorkflow_SecondCopyRestartsTimer(t *testing.T) {
	clock := &fakeClock{}
	w := newTestWorkflow(clock)
	cb := &fakeClipboard{}

	require.NoError(t, w.CopyLink(context.Background(), cb))
	require.NoError(t, w.CopyLink(context.Background(), cb))
	require.Len(t, clock.timers, 2)
	assert.True(t, clock.timers[0].stopped)

	clock.timers[0].fn()
	assert.True(t, w.Copied())

	clock.timers[1].fn()
	assert.False(t, w.Copied())
}

func TestWorkflow_CloseCancelsReset(t *testing.T) {
	clock := &fakeClock{}
	w := newTestWorkflow(clock)
	require.NoError(t, w.CopyLink(context.Background(), &fakeClipboard{}))

	w.Close()
	clock.timers[0].fn()

	assert.True(t, clock.timers[0].stopped)
	assert.True(t, w.Copied())
	assert.Error(t, w.CopyLink(context.Background(), &fakeClipboard{}))
}

func TestRegistry_OpenReplacesSelection(t *testing.T) {
	clock := &fakeClock{}
	r := NewRegistryWithClock("https://netcine.app", "NETCINE", clock.AfterFunc)
	one := &models.Title{TitleID: "1", Title: "One"}
	two := &models.Title{TitleID: "2", Title: "Two"}

	a := r.Open("viewer", one)
	assert.Same(t, a, r.Open("viewer", one))

	b := r.Open("viewer", two)
	assert.NotSame(t, a, b)
	assert.Same(t, b, r.Get("viewer"))
	assert.Error(t, a.CopyLink(context.Background(), &fakeClipboard{}))

	r.Close("viewer")
	assert.Nil(t, r.Get("viewer"))
}
