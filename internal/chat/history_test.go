package chat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestHistory_Append_Assigns_Sequential_IDs(t *testing.T) {
	req := require.New(t)
	history := chat.NewHistory(10)

	first := history.Append("alice", "hello")
	second := history.Append("bob", "hi there")

	req.EqualValues(1, first.ID)
	req.EqualValues(2, second.ID)
	req.Equal("bob", second.Sender)
	req.Equal("hi there", second.Body)
	req.EqualValues(2, history.LastID())
}

func TestHistory_Evicts_Oldest_Beyond_Capacity(t *testing.T) {
	req := require.New(t)
	const capacity = 5
	history := chat.NewHistory(capacity)

	// When capacity + 3 messages are sent
	for i := 1; i <= capacity+3; i++ {
		history.Append("alice", fmt.Sprintf("message %d", i))
	}

	// Then only the most recent ones remain, oldest first
	all := history.All()
	req.Len(all, capacity)
	req.Equal([]uint64{4, 5, 6, 7, 8}, lo.Map(all, func(m chat.Message, _ int) uint64 { return m.ID }))
	req.Equal("message 4", all[0].Body)
	req.EqualValues(4, history.OldestID())

	// And ids keep growing after eviction
	req.EqualValues(9, history.Append("bob", "next").ID)
	req.False(history.Contains(4))
	req.True(history.Contains(5))
	req.True(history.Contains(9))
	req.False(history.Contains(10))
}

func TestHistory_All_Returns_A_Copy(t *testing.T) {
	req := require.New(t)
	history := chat.NewHistory(3)
	history.Append("alice", "original")

	all := history.All()
	all[0].Body = "tampered"

	req.Equal("original", history.All()[0].Body)
}

func TestHistory_Empty(t *testing.T) {
	req := require.New(t)
	history := chat.NewHistory(0)

	req.Equal(chat.DefaultHistorySize, history.Capacity())
	req.Empty(history.All())
	req.Zero(history.OldestID())
	req.False(history.Contains(1))
}

func TestHistory_Concurrent_Appends_Have_No_Gaps(t *testing.T) {
	req := require.New(t)
	const writers, perWriter = 8, 200
	history := chat.NewHistory(writers * perWriter)

	var wg sync.WaitGroup
	ids := make(chan uint64, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				ids <- history.Append(fmt.Sprintf("user%d", w), "x").ID
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		req.False(seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	req.Len(seen, writers*perWriter)
	for id := uint64(1); id <= writers*perWriter; id++ {
		req.True(seen[id], "id %d missing", id)
	}

	// And the stored order is the assignment order
	all := history.All()
	for i := 1; i < len(all); i++ {
		req.Equal(all[i-1].ID+1, all[i].ID)
	}
}
