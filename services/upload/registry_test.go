package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OneWorkflowPerOwner(t *testing.T) {
	e := newTestEnv(t)
	r := NewRegistryWithConfig(e.config(), e.dir)
	o := Owner{UserID: "u1"}

	w := r.Open(o)

	assert.Same(t, w, r.Open(o))
	assert.Same(t, w, r.Get("u1"))
	assert.NotSame(t, w, r.Open(Owner{UserID: "u2"}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Close(t *testing.T) {
	e := newTestEnv(t)
	r := NewRegistryWithConfig(e.config(), e.dir)
	w := r.Open(Owner{UserID: "u1"})

	r.Close("u1")

	assert.True(t, w.Closed())
	assert.Nil(t, r.Get("u1"))
	assert.NotSame(t, w, r.Open(Owner{UserID: "u1"}))
}

func TestRegistry_DropsWorkflowAfterCompletion(t *testing.T) {
	e := newTestEnv(t)
	r := NewRegistryWithConfig(e.config(), e.dir)
	w := r.Open(Owner{UserID: "u1"})
	fill(t, e, w)

	require.NoError(t, w.Submit())
	waitPhase(t, w, PhaseComplete)
	assert.Same(t, w, r.Get("u1"))

	e.clock.last().fire()

	assert.Nil(t, r.Get("u1"))
	assert.True(t, w.Closed())
	assert.Equal(t, PhaseIdle, w.Progress().Phase)
}

func TestRegistry_CloseAll(t *testing.T) {
	e := newTestEnv(t)
	r := NewRegistryWithConfig(e.config(), e.dir)
	a := r.Open(Owner{UserID: "u1"})
	b := r.Open(Owner{UserID: "u2"})

	r.CloseAll()

	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Equal(t, 0, r.Len())
}
