package protocol

import (
	"strconv"
	"strings"

	"github.com/moksh2305/secure-chat-application/internal/chat"
)

func MessageID(id uint64) string {
	return tokenMsgID + " " + strconv.FormatUint(id, 10)
}

func Message(m chat.Message) string {
	return tokenMsg + " " + strconv.FormatUint(m.ID, 10) + " " + m.Sender + " " + m.Body
}

func Notify(text string) string {
	return tokenNotify + " " + text
}

func Users(names []string) string {
	if len(names) == 0 {
		return tokenUsers
	}
	return tokenUsers + " " + strings.Join(names, " ")
}

func Error(text string) string {
	return tokenError + " " + text
}

func Private(sender, text string) string {
	return tokenPM + " " + sender + " " + text
}

func File(filename, payload string) string {
	return tokenFile + " " + filename + " " + payload
}

func React(r chat.Reaction) string {
	return tokenReact + " " + strconv.FormatUint(r.MessageID, 10) + " " + r.Symbol + " " + r.User
}

func Typing(name string) string {
	return tokenTyping + " " + name
}

func Joined(name string) string {
	return Notify(name + " joined the chat.")
}

func Left(name string) string {
	return Notify(name + " left the chat.")
}
