package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_CleanupAllDetaches(t *testing.T) {
	r := NewRegistry()
	m1 := NewManager(DefaultConfig())
	m2 := NewManager(DefaultConfig())
	m1.Attach(NewElement(), Handlers{})
	m2.Attach(NewElement(), Handlers{})

	r.Register("one", m1)
	r.Register("two", m2)
	assert.Equal(t, 2, r.Len())

	r.CleanupAll()
	assert.Equal(t, 0, r.Len())
	assert.False(t, m1.Attached())
	assert.False(t, m2.Attached())

	// empty registry is a no-op
	r.CleanupAll()
}

func TestRegistry_UnregisterAndEach(t *testing.T) {
	r := NewRegistry()
	r.Register("a", NewManager(DefaultConfig()))
	r.Register("b", NewManager(DefaultConfig()))
	r.Unregister("a")
	r.Unregister("missing")

	var ids []string
	r.Each(func(id string, _ *Manager) { ids = append(ids, id) })
	assert.Equal(t, []string{"b"}, ids)
}
