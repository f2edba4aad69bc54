package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		send:   make(chan []byte, 256),
	}
}

func TestRegistryAddJoinsUserChannel(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("alice")
	r.Add(c)

	assert.Equal(t, 1, r.Count())
	members := r.MembersOf(UserChannel("alice"))
	require.Len(t, members, 1)
	assert.Equal(t, c.id, members[0].ID())
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("alice")
	r.Add(c)

	r.Join(c.id, GroupChannel(1))
	assert.Len(t, r.MembersOf(GroupChannel(1)), 1)
	assert.ElementsMatch(t, []string{UserChannel("alice"), GroupChannel(1)}, r.ChannelsOf(c.id))

	r.Leave(c.id, GroupChannel(1))
	assert.Empty(t, r.MembersOf(GroupChannel(1)))

	// the personal channel cannot be left
	r.Leave(c.id, UserChannel("alice"))
	assert.Len(t, r.MembersOf(UserChannel("alice")), 1)
}

func TestRegistryJoinUnknownConnection(t *testing.T) {
	r := NewRegistry()
	r.Join("no-such-conn", GroupChannel(1))
	assert.Empty(t, r.MembersOf(GroupChannel(1)))
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("alice")
	r.Add(c)
	r.Join(c.id, GroupChannel(1))

	removed := r.Remove(c.id)
	require.NotNil(t, removed)
	assert.Equal(t, c.id, removed.ID())
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.MembersOf(UserChannel("alice")))
	assert.Empty(t, r.MembersOf(GroupChannel(1)))
	assert.Empty(t, r.ChannelsOf(c.id))

	// second remove of the same connection is nil
	assert.Nil(t, r.Remove(c.id))
}

func TestRegistryMultiDevice(t *testing.T) {
	r := NewRegistry()
	phone := newTestClient("alice")
	laptop := newTestClient("alice")
	r.Add(phone)
	r.Add(laptop)

	members := r.MembersOf(UserChannel("alice"))
	assert.Len(t, members, 2)

	r.Remove(phone.id)
	members = r.MembersOf(UserChannel("alice"))
	require.Len(t, members, 1)
	assert.Equal(t, laptop.id, members[0].ID())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newTestClient(fmt.Sprintf("user-%d", n))
			r.Add(c)
			r.Join(c.id, GroupChannel(1))
			r.MembersOf(GroupChannel(1))
			r.ChannelsOf(c.id)
			r.Leave(c.id, GroupChannel(1))
			r.Remove(c.id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.MembersOf(GroupChannel(1)))
}
