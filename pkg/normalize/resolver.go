package normalize

import (
	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

// parseUser maps a raw user to the normalized view. A nil input yields nil.
func parseUser(raw *tg.User) *minigram.User {
	if raw == nil {
		return nil
	}

	username, _ := raw.GetUsername()
	firstName, _ := raw.GetFirstName()
	lastName, _ := raw.GetLastName()
	langCode, _ := raw.GetLangCode()

	return &minigram.User{
		ID:           raw.ID,
		IsBot:        raw.Bot,
		IsPremium:    raw.Premium,
		IsVerified:   raw.Verified,
		IsDeleted:    raw.Deleted,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		LanguageCode: langCode,
	}
}

// userChat builds the private-chat view of a user, the shape a one-on-one
// conversation presents as a peer.
func userChat(user *minigram.User) *minigram.Chat {
	if user == nil {
		return nil
	}

	chatType := minigram.ChatTypePrivate
	if user.IsBot {
		chatType = minigram.ChatTypeBot
	}

	return &minigram.Chat{
		ID:         user.ID,
		Type:       chatType,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Username:   user.Username,
		IsVerified: user.IsVerified,
	}
}

// chatFromRaw maps a raw chat or channel to the normalized view with the
// client-side signed id encoding.
func chatFromRaw(raw tg.ChatClass) *minigram.Chat {
	switch typed := raw.(type) {
	case *tg.Chat:
		return &minigram.Chat{
			ID:    -typed.ID,
			Type:  minigram.ChatTypeGroup,
			Title: typed.Title,
		}
	case *tg.ChatForbidden:
		return &minigram.Chat{
			ID:    -typed.ID,
			Type:  minigram.ChatTypeGroup,
			Title: typed.Title,
		}
	case *tg.Channel:
		chatType := minigram.ChatTypeChannel
		if typed.Megagroup {
			chatType = minigram.ChatTypeSupergroup
		}
		username, _ := typed.GetUsername()
		return &minigram.Chat{
			ID:         ChannelChatID(typed.ID),
			Type:       chatType,
			Title:      typed.Title,
			Username:   username,
			IsForum:    typed.Forum,
			IsVerified: typed.Verified,
		}
	case *tg.ChannelForbidden:
		chatType := minigram.ChatTypeChannel
		if typed.Megagroup {
			chatType = minigram.ChatTypeSupergroup
		}
		return &minigram.Chat{
			ID:    ChannelChatID(typed.ID),
			Type:  chatType,
			Title: typed.Title,
		}
	default:
		return nil
	}
}

// resolvePeerChat resolves any raw peer reference into a chat view using the
// lookup tables, degrading to a bare typed id when the peer is not indexed.
func resolvePeerChat(peer tg.PeerClass, tables Tables) *minigram.Chat {
	switch typed := peer.(type) {
	case *tg.PeerUser:
		if raw, ok := tables.User(typed.UserID); ok {
			return userChat(parseUser(raw))
		}
		return &minigram.Chat{ID: typed.UserID, Type: minigram.ChatTypePrivate}
	case *tg.PeerChat:
		if raw, ok := tables.Chat(typed.ChatID); ok {
			if chat := chatFromRaw(raw); chat != nil {
				return chat
			}
		}
		return &minigram.Chat{ID: -typed.ChatID, Type: minigram.ChatTypeGroup}
	case *tg.PeerChannel:
		if raw, ok := tables.Chat(typed.ChannelID); ok {
			if chat := chatFromRaw(raw); chat != nil {
				return chat
			}
		}
		return &minigram.Chat{ID: ChannelChatID(typed.ChannelID), Type: minigram.ChatTypeChannel}
	default:
		return nil
	}
}

// resolveUserByID returns the normalized user for id, degrading to a bare id
// view when the lookup tables do not carry the account.
func resolveUserByID(id int64, tables Tables) *minigram.User {
	if id == 0 {
		return nil
	}
	if raw, ok := tables.User(id); ok {
		return parseUser(raw)
	}
	return &minigram.User{ID: id}
}

// resolveUsersByID maps a raw id list to normalized users, preserving order.
func resolveUsersByID(ids []int64, tables Tables) []*minigram.User {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*minigram.User, 0, len(ids))
	for _, id := range ids {
		if user := resolveUserByID(id, tables); user != nil {
			out = append(out, user)
		}
	}
	return out
}
