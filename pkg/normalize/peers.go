package normalize

import (
	"time"

	"github.com/gotd/td/tg"
)

// zeroChannelID anchors the client-side -100 encoding for channel chat ids.
const zeroChannelID = -1000000000000

// RawPeerID returns the bare numeric id carried by a raw peer reference.
func RawPeerID(peer tg.PeerClass) int64 {
	switch typed := peer.(type) {
	case *tg.PeerUser:
		return typed.UserID
	case *tg.PeerChat:
		return typed.ChatID
	case *tg.PeerChannel:
		return typed.ChannelID
	default:
		return 0
	}
}

// PeerChatID returns the signed client-side chat id for a raw peer reference.
func PeerChatID(peer tg.PeerClass) int64 {
	switch typed := peer.(type) {
	case *tg.PeerUser:
		return typed.UserID
	case *tg.PeerChat:
		return -typed.ChatID
	case *tg.PeerChannel:
		return ChannelChatID(typed.ChannelID)
	default:
		return 0
	}
}

// ChannelChatID converts a bare channel id into the -100 chat-id encoding.
func ChannelChatID(channelID int64) int64 {
	return zeroChannelID - channelID
}

// ChannelIDFromChatID recovers the bare channel id from a -100 chat id.
//
// The encoding is an involution, so this is the same arithmetic as
// ChannelChatID applied in reverse.
func ChannelIDFromChatID(chatID int64) int64 {
	return zeroChannelID - chatID
}

// IsChannelChatID reports whether a signed chat id uses the channel encoding.
func IsChannelChatID(chatID int64) bool {
	return chatID < zeroChannelID
}

// TimeFromUnix converts a protocol epoch integer to a UTC timestamp.
//
// Non-positive values map to the zero time.
func TimeFromUnix(value int) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(value), 0).UTC()
}
