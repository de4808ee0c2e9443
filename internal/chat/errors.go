package chat

import "errors"

var (
	ErrNameInvalid          = errors.New("display name is invalid")
	ErrNameTaken            = errors.New("display name is already taken")
	ErrMalformedCommand     = errors.New("malformed command")
	ErrPayloadTooLarge      = errors.New("file payload too large")
	ErrUnknownMessage       = errors.New("message is not in history")
	ErrRecipientUnreachable = errors.New("recipient unreachable")
)
