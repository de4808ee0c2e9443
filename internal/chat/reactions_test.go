package chat_test

import (
	"testing"

	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/stretchr/testify/require"
)

func TestLedger_Apply_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ledger := chat.NewLedger()

	req.True(ledger.Apply(7, "👍", "alice"))
	req.False(ledger.Apply(7, "👍", "alice"))

	req.Equal([]string{"alice"}, ledger.Users(7, "👍"))
	req.Len(ledger.AllForReplay(), 1)
}

func TestLedger_Replay_Order_Is_Stable(t *testing.T) {
	req := require.New(t)
	ledger := chat.NewLedger()

	// Given reactions applied out of message order
	ledger.Apply(9, "🎉", "carol")
	ledger.Apply(3, "👍", "bob")
	ledger.Apply(3, "❤️", "alice")
	ledger.Apply(3, "👍", "alice")

	// Then replay is by message id, then symbol and user insertion order
	req.Equal([]chat.Reaction{
		{MessageID: 3, Symbol: "👍", User: "bob"},
		{MessageID: 3, Symbol: "👍", User: "alice"},
		{MessageID: 3, Symbol: "❤️", User: "alice"},
		{MessageID: 9, Symbol: "🎉", User: "carol"},
	}, ledger.AllForReplay())
}

func TestLedger_PruneBefore(t *testing.T) {
	req := require.New(t)
	ledger := chat.NewLedger()
	ledger.Apply(1, "👍", "alice")
	ledger.Apply(2, "👍", "alice")
	ledger.Apply(5, "👍", "alice")

	req.Equal(2, ledger.PruneBefore(5))

	req.Equal(1, ledger.Len())
	req.Nil(ledger.Users(1, "👍"))
	req.Equal([]string{"alice"}, ledger.Users(5, "👍"))
}

func TestLedger_Empty_Replay(t *testing.T) {
	require.Empty(t, chat.NewLedger().AllForReplay())
}
