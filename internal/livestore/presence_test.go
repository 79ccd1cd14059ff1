package livestore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_Register(t *testing.T) {
	t.Parallel()

	p := NewPresence()
	first := newFakeConn("c1")
	second := newFakeConn("c2")

	_, replaced := p.Register("a@x.com", "Alice", RoleAgent, first)
	require.False(t, replaced)

	// same connection registering again is not a replacement
	_, replaced = p.Register("a@x.com", "Alice", RoleAgent, first)
	require.False(t, replaced)

	evicted, replaced := p.Register("a@x.com", "Alice", RoleAgent, second)
	require.True(t, replaced)
	require.Equal(t, "c1", evicted.Conn.ID())

	got, ok := p.LookupRole("a@x.com", RoleAgent)
	require.True(t, ok)
	require.Equal(t, "c2", got.Conn.ID())
	require.Equal(t, []string{"a@x.com"}, p.ListOnlineAgents())
	require.Empty(t, p.ListOnlineUsers())
}

func TestPresence_Unregister(t *testing.T) {
	t.Parallel()

	t.Run("removes exactly the entries bound to the connection", func(t *testing.T) {
		p := NewPresence()
		c1, c2 := newFakeConn("c1"), newFakeConn("c2")
		p.Register("u@x.com", "U", RoleUser, c1)
		p.Register("a@x.com", "A", RoleAgent, c1)
		p.Register("v@x.com", "V", RoleUser, c2)

		removed := p.Unregister(c1)
		require.Len(t, removed, 2)
		require.Equal(t, []string{"v@x.com"}, p.ListOnlineUsers())
		require.Empty(t, p.ListOnlineAgents())
	})

	t.Run("stale connection does not evict a newer registration", func(t *testing.T) {
		p := NewPresence()
		old, fresh := newFakeConn("old"), newFakeConn("fresh")
		p.Register("u@x.com", "U", RoleUser, old)
		p.Register("u@x.com", "U", RoleUser, fresh)

		require.Empty(t, p.Unregister(old))
		got, ok := p.Lookup("u@x.com")
		require.True(t, ok)
		require.Equal(t, "fresh", got.Conn.ID())
	})

	t.Run("unknown connection is a no-op", func(t *testing.T) {
		p := NewPresence()
		require.Empty(t, p.Unregister(newFakeConn("nobody")))
	})
}

func TestPresence_ListIsSorted(t *testing.T) {
	t.Parallel()

	p := NewPresence()
	for _, id := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		p.Register(id, "", RoleAgent, newFakeConn(id))
	}
	require.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, p.ListOnlineAgents())
}

func TestPresence_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	p := NewPresence()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := newFakeConn(fmt.Sprintf("c%d", i))
			identity := fmt.Sprintf("u%d@x.com", i)
			p.Register(identity, "", RoleUser, conn)
			_, _ = p.Lookup(identity)
			_ = p.ListOnlineUsers()
			if i%2 == 0 {
				p.Unregister(conn)
			}
		}(i)
	}
	wg.Wait()
	require.Len(t, p.ListOnlineUsers(), 25)
}
