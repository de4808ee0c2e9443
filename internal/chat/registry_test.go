package chat_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/moksh2305/secure-chat-application/internal/chat/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry_Register_One_Name(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry(32)
	alice := mocks.NewMockPeer(ctrl)

	// When alice registers with surrounding whitespace
	name, err := registry.Register("  alice \r", alice)

	// Then the name is trimmed and visible everywhere
	req.NoError(err)
	req.Equal("alice", name)
	req.Equal([]string{"alice"}, registry.Names())
	got, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(alice, got)
	owner, ok := registry.NameOf(alice)
	req.True(ok)
	req.Equal("alice", owner)
}

func TestRegistry_Register_Duplicate_Fails_Without_Replacing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry(32)
	first := mocks.NewMockPeer(ctrl)
	second := mocks.NewMockPeer(ctrl)

	// Given alice is registered
	_, err := registry.Register("alice", first)
	req.NoError(err)

	// When another connection asks for the same name
	_, err = registry.Register("alice", second)

	// Then it fails and the registry is unchanged
	req.ErrorIs(err, chat.ErrNameTaken)
	req.Equal(1, registry.Len())
	got, _ := registry.Lookup("alice")
	req.Same(first, got)
	_, ok := registry.NameOf(second)
	req.False(ok)
}

func TestRegistry_Register_Invalid_Names(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry(8)

	for _, raw := range []string{"", "   ", "\t", "john doe", "/msg", "abcdefghi", "\xff", "bob\xfe"} {
		t.Run(raw, func(t *testing.T) {
			_, err := registry.Register(raw, mocks.NewMockPeer(ctrl))
			require.ErrorIs(t, err, chat.ErrNameInvalid)
		})
	}
	require.Zero(t, registry.Len())
}

func TestRegistry_Register_Same_Peer_Twice(t *testing.T) {
	req := require.New(t)
	registry := chat.NewRegistry(32)
	peer := mocks.NewMockPeer(gomock.NewController(t))

	_, err := registry.Register("alice", peer)
	req.NoError(err)

	_, err = registry.Register("bob", peer)
	req.ErrorIs(err, chat.ErrNameInvalid)
	req.Equal([]string{"alice"}, registry.Names())
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := chat.NewRegistry(32)
	peer := mocks.NewMockPeer(gomock.NewController(t))
	_, err := registry.Register("alice", peer)
	req.NoError(err)

	name, ok := registry.Unregister(peer)
	req.True(ok)
	req.Equal("alice", name)

	_, ok = registry.Unregister(peer)
	req.False(ok)
	req.Empty(registry.Names())

	// And the name is free again
	_, err = registry.Register("alice", mocks.NewMockPeer(gomock.NewController(t)))
	req.NoError(err)
}

func TestRegistry_Peers_Excludes_Name(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry(32)
	alice := mocks.NewMockPeer(ctrl)
	bob := mocks.NewMockPeer(ctrl)
	_, _ = registry.Register("alice", alice)
	_, _ = registry.Register("bob", bob)

	req.ElementsMatch([]chat.Peer{alice, bob}, registry.Peers(""))
	req.Equal([]chat.Peer{bob}, registry.Peers("alice"))
}

func TestRegistry_Concurrent_Registration_Has_One_Winner(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry(32)

	const contenders = 50
	var wins, taken atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		peer := mocks.NewMockPeer(ctrl)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := registry.Register("alice", peer)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, chat.ErrNameTaken):
				taken.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	req.EqualValues(1, wins.Load())
	req.EqualValues(contenders-1, taken.Load())
	req.Equal([]string{"alice"}, registry.Names())
}
