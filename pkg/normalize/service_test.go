package normalize

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

func groupEnv(tables Tables) serviceEnv {
	return serviceEnv{
		chat:   &minigram.Chat{ID: -100, Type: minigram.ChatTypeGroup},
		tables: tables,
	}
}

func TestInterpretActionMembership(t *testing.T) {
	t.Parallel()

	tables := NewTables()
	tables.Users[42] = newTGUser(42, "alice", "Alice", "", false)

	t.Run("added users resolve through tables", func(t *testing.T) {
		t.Parallel()

		got := interpretAction(&tg.MessageActionChatAddUser{Users: []int64{42, 77}}, groupEnv(tables))

		if got.serviceType != minigram.ServiceTypeNewChatMembers {
			t.Fatalf("serviceType = %q", got.serviceType)
		}
		if len(got.newChatMembers) != 2 {
			t.Fatalf("members = %d, want 2", len(got.newChatMembers))
		}
		if got.newChatMembers[0].FirstName != "Alice" {
			t.Fatalf("first member = %+v", got.newChatMembers[0])
		}
		// An id missing from the tables still yields a bare member.
		if got.newChatMembers[1].ID != 77 || got.newChatMembers[1].FirstName != "" {
			t.Fatalf("second member = %+v", got.newChatMembers[1])
		}
	})

	t.Run("join by link attributes the sender", func(t *testing.T) {
		t.Parallel()

		env := groupEnv(tables)
		env.fromUser = &minigram.User{ID: 42, FirstName: "Alice"}
		got := interpretAction(&tg.MessageActionChatJoinedByLink{InviterID: 7}, env)

		if got.serviceType != minigram.ServiceTypeNewChatMembers {
			t.Fatalf("serviceType = %q", got.serviceType)
		}
		if len(got.newChatMembers) != 1 || got.newChatMembers[0].ID != 42 {
			t.Fatalf("members = %+v", got.newChatMembers)
		}
	})

	t.Run("delete user", func(t *testing.T) {
		t.Parallel()

		got := interpretAction(&tg.MessageActionChatDeleteUser{UserID: 42}, groupEnv(tables))

		if got.serviceType != minigram.ServiceTypeLeftChatMember {
			t.Fatalf("serviceType = %q", got.serviceType)
		}
		if got.leftChatMember == nil || got.leftChatMember.ID != 42 {
			t.Fatalf("leftChatMember = %+v", got.leftChatMember)
		}
	})
}

func TestInterpretActionChannelCreateByChatType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chatType minigram.ChatType
		want     minigram.ServiceType
	}{
		{"supergroup", minigram.ChatTypeSupergroup, minigram.ServiceTypeSupergroupChatCreated},
		{"broadcast channel", minigram.ChatTypeChannel, minigram.ServiceTypeChannelChatCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := serviceEnv{
				chat:   &minigram.Chat{ID: -1000000000001, Type: tt.chatType},
				tables: NewTables(),
			}
			got := interpretAction(&tg.MessageActionChannelCreate{Title: "created"}, env)

			if got.serviceType != tt.want {
				t.Fatalf("serviceType = %q, want %q", got.serviceType, tt.want)
			}
		})
	}
}

func TestInterpretActionMigrations(t *testing.T) {
	t.Parallel()

	got := interpretAction(&tg.MessageActionChatMigrateTo{ChannelID: 1234567}, groupEnv(NewTables()))
	if got.serviceType != minigram.ServiceTypeMigrateToChatID {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	if got.migrateToChatID != ChannelChatID(1234567) {
		t.Fatalf("migrateToChatID = %d, want %d", got.migrateToChatID, ChannelChatID(1234567))
	}

	got = interpretAction(&tg.MessageActionChannelMigrateFrom{Title: "old", ChatID: 100}, groupEnv(NewTables()))
	if got.serviceType != minigram.ServiceTypeMigrateFromChatID {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	if got.migrateFromChatID != -100 {
		t.Fatalf("migrateFromChatID = %d, want -100", got.migrateFromChatID)
	}
}

func TestInterpretActionGroupCallByDuration(t *testing.T) {
	t.Parallel()

	started := &tg.MessageActionGroupCall{}
	got := interpretAction(started, groupEnv(NewTables()))
	if got.serviceType != minigram.ServiceTypeVideoChatStarted {
		t.Fatalf("serviceType = %q, want started", got.serviceType)
	}
	if got.videoChatStarted == nil {
		t.Fatal("expected started payload")
	}

	ended := &tg.MessageActionGroupCall{}
	ended.SetDuration(90)
	got = interpretAction(ended, groupEnv(NewTables()))
	if got.serviceType != minigram.ServiceTypeVideoChatEnded {
		t.Fatalf("serviceType = %q, want ended", got.serviceType)
	}
	if got.videoChatEnded == nil || got.videoChatEnded.Duration != 90*time.Second {
		t.Fatalf("ended payload = %+v", got.videoChatEnded)
	}
}

func TestInterpretActionRequestedPeersSplit(t *testing.T) {
	t.Parallel()

	tables := NewTables()
	tables.Users[42] = newTGUser(42, "alice", "Alice", "", false)
	tables.Chats[100] = &tg.Chat{ID: 100, Title: "group"}

	env := groupEnv(tables)
	got := interpretAction(&tg.MessageActionRequestedPeer{
		ButtonID: 5,
		Peers: []tg.PeerClass{
			&tg.PeerUser{UserID: 42},
			&tg.PeerChat{ChatID: 100},
			&tg.PeerChannel{ChannelID: 1234567},
		},
	}, env)

	if got.usersShared == nil || got.chatShared == nil {
		t.Fatal("a mixed share must populate both payloads")
	}
	if got.serviceType != minigram.ServiceTypeChatShared {
		t.Fatalf("serviceType = %q, want %q", got.serviceType, minigram.ServiceTypeChatShared)
	}
	if got.usersShared.RequestID != 5 || got.chatShared.RequestID != 5 {
		t.Fatal("request id must propagate to both payloads")
	}
	if len(got.usersShared.Users) != 1 || got.usersShared.Users[0].ID != 42 {
		t.Fatalf("users = %+v", got.usersShared.Users)
	}
	if len(got.chatShared.Chats) != 2 {
		t.Fatalf("chats = %d, want 2", len(got.chatShared.Chats))
	}
	if got.chatShared.Chats[0].ID != -100 {
		t.Fatalf("group chat id = %d, want -100", got.chatShared.Chats[0].ID)
	}
	if got.chatShared.Chats[1].ID != ChannelChatID(1234567) {
		t.Fatalf("channel chat id = %d", got.chatShared.Chats[1].ID)
	}
}

func TestInterpretActionRequestedPeersSentMe(t *testing.T) {
	t.Parallel()

	user := &tg.RequestedPeerUser{UserID: 42}
	user.SetFirstName("Alice")
	channel := &tg.RequestedPeerChannel{ChannelID: 1234567}
	channel.SetTitle("news")

	got := interpretAction(&tg.MessageActionRequestedPeerSentMe{
		ButtonID: 9,
		Peers:    []tg.RequestedPeerClass{user, channel},
	}, groupEnv(NewTables()))

	if got.usersShared == nil || got.chatShared == nil {
		t.Fatal("expected both payloads")
	}
	if got.usersShared.Users[0].FirstName != "Alice" {
		t.Fatalf("user = %+v", got.usersShared.Users[0])
	}
	if got.chatShared.Chats[0].Title != "news" {
		t.Fatalf("chat = %+v", got.chatShared.Chats[0])
	}
}

func TestInterpretActionTopicEditPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("title wins over flags", func(t *testing.T) {
		t.Parallel()

		action := &tg.MessageActionTopicEdit{}
		action.SetTitle("renamed")
		action.SetClosed(true)
		action.SetHidden(true)

		got := interpretAction(action, groupEnv(NewTables()))

		if got.serviceType != minigram.ServiceTypeForumTopicEdited {
			t.Fatalf("serviceType = %q", got.serviceType)
		}
		if got.topicEdited == nil || got.topicEdited.Title != "renamed" {
			t.Fatalf("topicEdited = %+v", got.topicEdited)
		}
	})

	t.Run("hidden applies only without a reply header", func(t *testing.T) {
		t.Parallel()

		action := &tg.MessageActionTopicEdit{}
		action.SetHidden(true)

		got := interpretAction(action, groupEnv(NewTables()))
		if got.serviceType != minigram.ServiceTypeGeneralForumTopicHidden {
			t.Fatalf("serviceType = %q, want hidden", got.serviceType)
		}

		action = &tg.MessageActionTopicEdit{}
		action.SetHidden(false)
		got = interpretAction(action, groupEnv(NewTables()))
		if got.serviceType != minigram.ServiceTypeGeneralForumTopicUnhidden {
			t.Fatalf("serviceType = %q, want unhidden", got.serviceType)
		}
	})

	t.Run("hidden with reply header falls through to closed state", func(t *testing.T) {
		t.Parallel()

		action := &tg.MessageActionTopicEdit{}
		action.SetHidden(true)
		action.SetClosed(true)

		env := groupEnv(NewTables())
		env.hasReplyHeader = true
		got := interpretAction(action, env)

		if got.serviceType != minigram.ServiceTypeForumTopicClosed {
			t.Fatalf("serviceType = %q, want closed", got.serviceType)
		}
	})

	t.Run("closed false reopens", func(t *testing.T) {
		t.Parallel()

		action := &tg.MessageActionTopicEdit{}
		action.SetClosed(false)

		env := groupEnv(NewTables())
		env.hasReplyHeader = true
		got := interpretAction(action, env)

		if got.serviceType != minigram.ServiceTypeForumTopicReopened {
			t.Fatalf("serviceType = %q, want reopened", got.serviceType)
		}
	})
}

func TestInterpretActionGiveawayResultsUsesReplyReference(t *testing.T) {
	t.Parallel()

	env := groupEnv(NewTables())
	env.replyToMsgID = 321
	env.hasReplyHeader = true

	got := interpretAction(&tg.MessageActionGiveawayResults{
		WinnersCount:   5,
		UnclaimedCount: 2,
	}, env)

	if got.serviceType != minigram.ServiceTypeGiveawayCompleted {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	if got.giveawayCompleted.GiveawayMessageID != 321 {
		t.Fatalf("GiveawayMessageID = %d, want 321", got.giveawayCompleted.GiveawayMessageID)
	}

	// A results message without the reply header keeps a null origin.
	got = interpretAction(&tg.MessageActionGiveawayResults{WinnersCount: 5}, groupEnv(NewTables()))
	if got.giveawayCompleted.GiveawayMessageID != 0 {
		t.Fatalf("GiveawayMessageID = %d, want 0", got.giveawayCompleted.GiveawayMessageID)
	}
}

func TestInterpretActionMessagesTTL(t *testing.T) {
	t.Parallel()

	tables := NewTables()
	tables.Users[42] = newTGUser(42, "alice", "Alice", "", false)

	action := &tg.MessageActionSetMessagesTTL{Period: 86400}
	action.SetAutoSettingFrom(42)

	got := interpretAction(action, groupEnv(tables))

	if got.serviceType != minigram.ServiceTypeChatTTLChanged {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	if got.chatTTLPeriod != 86400 {
		t.Fatalf("chatTTLPeriod = %d", got.chatTTLPeriod)
	}
	if got.chatTTLSetter == nil || got.chatTTLSetter.ID != 42 {
		t.Fatalf("chatTTLSetter = %+v", got.chatTTLSetter)
	}
}

func TestInterpretActionGiftedPremium(t *testing.T) {
	t.Parallel()

	action := &tg.MessageActionGiftPremium{
		Currency: "USD",
		Amount:   499,
		Days:     90,
	}
	action.SetCryptoCurrency("TON")
	action.SetCryptoAmount(20)

	env := groupEnv(NewTables())
	env.fromUser = &minigram.User{ID: 42}

	got := interpretAction(action, env)
	if got.serviceType != minigram.ServiceTypeGiftedPremium {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	premium := got.giftedPremium
	if premium == nil {
		t.Fatal("expected gifted premium payload")
	}
	if premium.GifterID != 42 || premium.Days != 90 {
		t.Fatalf("payload = %+v", premium)
	}
	if premium.Currency != "USD" || premium.Amount != 499 {
		t.Fatalf("payload = %+v", premium)
	}
	if premium.CryptoCurrency != "TON" || premium.CryptoAmount != 20 {
		t.Fatalf("payload = %+v", premium)
	}
}

func TestInterpretActionGiftCode(t *testing.T) {
	t.Parallel()

	tables := NewTables()
	tables.Chats[1234567] = &tg.Channel{ID: 1234567, Title: "boosted"}

	action := &tg.MessageActionGiftCode{
		ViaGiveaway: true,
		Days:        30,
		Slug:        "abcdef",
	}
	action.SetBoostPeer(&tg.PeerChannel{ChannelID: 1234567})
	action.SetCurrency("EUR")
	action.SetAmount(300)

	got := interpretAction(action, groupEnv(tables))
	if got.serviceType != minigram.ServiceTypeGiftCode {
		t.Fatalf("serviceType = %q", got.serviceType)
	}
	code := got.giftCode
	if code == nil {
		t.Fatal("expected gift code payload")
	}
	if !code.ViaGiveaway || code.Days != 30 || code.Slug != "abcdef" {
		t.Fatalf("payload = %+v", code)
	}
	if code.BoostedChat == nil || code.BoostedChat.ID != ChannelChatID(1234567) {
		t.Fatalf("boosted chat = %+v", code.BoostedChat)
	}
	if code.Currency != "EUR" || code.Amount != 300 {
		t.Fatalf("payload = %+v", code)
	}
}

func TestInterpretActionFollowUps(t *testing.T) {
	t.Parallel()

	got := interpretAction(&tg.MessageActionPinMessage{}, groupEnv(NewTables()))
	if got.followUp != followUpPinnedMessage {
		t.Fatalf("followUp = %d, want pinned", got.followUp)
	}
	if got.serviceType != "" {
		t.Fatalf("pin must not tag before the follow-up fetch, got %q", got.serviceType)
	}

	got = interpretAction(&tg.MessageActionGameScore{GameID: 1, Score: 9000}, groupEnv(NewTables()))
	if got.followUp != followUpGameScore {
		t.Fatalf("followUp = %d, want game score", got.followUp)
	}
	if got.gameScore != 9000 {
		t.Fatalf("gameScore = %d", got.gameScore)
	}
	if got.serviceType != "" {
		t.Fatalf("game score must not tag before the follow-up fetch, got %q", got.serviceType)
	}
}

func TestInterpretActionUnknownStaysGeneric(t *testing.T) {
	t.Parallel()

	got := interpretAction(&tg.MessageActionHistoryClear{}, groupEnv(NewTables()))

	if got.known {
		t.Fatal("unrecognized actions must report known=false")
	}
	if got.serviceType != "" {
		t.Fatalf("serviceType = %q, want empty", got.serviceType)
	}
}
