package normalize

import "github.com/gotd/td/tg"

// Tables holds the per-batch user and chat lookup tables that accompany raw
// messages on the wire. The caller owns the maps; the normalizer only adds
// users it fetched on the caller's behalf.
type Tables struct {
	Users map[int64]*tg.User
	Chats map[int64]tg.ChatClass
}

// NewTables creates empty lookup tables.
func NewTables() Tables {
	return Tables{
		Users: make(map[int64]*tg.User),
		Chats: make(map[int64]tg.ChatClass),
	}
}

// User returns the raw user for id, if present.
func (t Tables) User(id int64) (*tg.User, bool) {
	user, ok := t.Users[id]
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// Chat returns the raw chat or channel for id, if present.
func (t Tables) Chat(id int64) (tg.ChatClass, bool) {
	chat, ok := t.Chats[id]
	if !ok || chat == nil {
		return nil, false
	}
	return chat, true
}

// MergeUsers adds fetched users into the user table, skipping empties.
func (t Tables) MergeUsers(users []tg.UserClass) {
	if t.Users == nil {
		return
	}
	for id, user := range IndexUsers(users) {
		t.Users[id] = user
	}
}

// IndexUsers builds a user lookup table from a raw user slice.
func IndexUsers(users []tg.UserClass) map[int64]*tg.User {
	if len(users) == 0 {
		return nil
	}

	out := make(map[int64]*tg.User, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		notEmpty, ok := user.AsNotEmpty()
		if !ok || notEmpty == nil {
			continue
		}
		out[notEmpty.ID] = notEmpty
	}

	return out
}

// IndexChats builds a chat lookup table from a raw chat slice.
//
// Forbidden chats and channels are kept: their titles still resolve, even
// though the account can no longer access the conversation.
func IndexChats(chats []tg.ChatClass) map[int64]tg.ChatClass {
	if len(chats) == 0 {
		return nil
	}

	out := make(map[int64]tg.ChatClass, len(chats))
	for _, chat := range chats {
		switch typed := chat.(type) {
		case *tg.Chat:
			out[typed.ID] = typed
		case *tg.ChatForbidden:
			out[typed.ID] = typed
		case *tg.Channel:
			out[typed.ID] = typed
		case *tg.ChannelForbidden:
			out[typed.ID] = typed
		}
	}

	return out
}
