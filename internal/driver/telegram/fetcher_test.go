package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"minigram/pkg/minigram"
	"minigram/pkg/normalize"
)

type fakeRPC struct {
	users    []tg.UserClass
	usersErr error

	messages    tg.MessagesMessagesClass
	messagesErr error

	userCalls    int
	genericCalls [][]tg.InputMessageClass
	channelCalls []*tg.ChannelsGetMessagesRequest
}

func (f *fakeRPC) UsersGetUsers(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
	f.userCalls++
	return f.users, f.usersErr
}

func (f *fakeRPC) MessagesGetMessages(_ context.Context, ids []tg.InputMessageClass) (tg.MessagesMessagesClass, error) {
	f.genericCalls = append(f.genericCalls, ids)
	return f.messages, f.messagesErr
}

func (f *fakeRPC) ChannelsGetMessages(_ context.Context, request *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error) {
	f.channelCalls = append(f.channelCalls, request)
	return f.messages, f.messagesErr
}

func newTestUser(id int64, firstName string) *tg.User {
	user := &tg.User{ID: id}
	if firstName != "" {
		user.SetFirstName(firstName)
	}
	return user
}

func newEngineForTest(t *testing.T, rpc *fakeRPC) (*normalize.Normalizer, *FetchService) {
	t.Helper()

	normalizer, err := newEngineWithRPC(rpc)
	if err != nil {
		t.Fatalf("newEngineWithRPC: %v", err)
	}

	// The engine constructor wires one service as both collaborators; dig it
	// back out through a second construction for direct calls.
	service := &FetchService{
		cfg:        engineConfig{fetchTimeout: defaultFetchTimeout},
		rpc:        rpc,
		normalizer: normalizer,
	}
	return normalizer, service
}

func TestNewEngineRejectsNilInvoker(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil); err == nil {
		t.Fatal("expected error for nil invoker")
	}
}

func TestFetchUsers(t *testing.T) {
	t.Parallel()

	t.Run("returns fetched users", func(t *testing.T) {
		t.Parallel()

		rpc := &fakeRPC{users: []tg.UserClass{newTestUser(42, "Alice")}}
		_, service := newEngineForTest(t, rpc)

		users, err := service.FetchUsers(context.Background(), []int64{42})
		if err != nil {
			t.Fatalf("FetchUsers: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("users = %d, want 1", len(users))
		}
		if rpc.userCalls != 1 {
			t.Fatalf("rpc calls = %d, want 1", rpc.userCalls)
		}
	})

	t.Run("empty id list skips the rpc", func(t *testing.T) {
		t.Parallel()

		rpc := &fakeRPC{}
		_, service := newEngineForTest(t, rpc)

		users, err := service.FetchUsers(context.Background(), nil)
		if err != nil || users != nil {
			t.Fatalf("FetchUsers = %v, %v", users, err)
		}
		if rpc.userCalls != 0 {
			t.Fatal("empty input must not hit the wire")
		}
	})

	t.Run("empty response maps to peer not found", func(t *testing.T) {
		t.Parallel()

		rpc := &fakeRPC{}
		_, service := newEngineForTest(t, rpc)

		_, err := service.FetchUsers(context.Background(), []int64{42})
		if !errors.Is(err, minigram.ErrPeerNotFound) {
			t.Fatalf("err = %v, want ErrPeerNotFound", err)
		}
	})

	t.Run("peer id invalid maps to peer not found", func(t *testing.T) {
		t.Parallel()

		rpc := &fakeRPC{usersErr: tgerr.New(400, "PEER_ID_INVALID")}
		_, service := newEngineForTest(t, rpc)

		_, err := service.FetchUsers(context.Background(), []int64{42})
		if !errors.Is(err, minigram.ErrPeerNotFound) {
			t.Fatalf("err = %v, want ErrPeerNotFound", err)
		}
	})

	t.Run("other rpc errors pass through", func(t *testing.T) {
		t.Parallel()

		rpc := &fakeRPC{usersErr: tgerr.New(420, "FLOOD_WAIT_30")}
		_, service := newEngineForTest(t, rpc)

		_, err := service.FetchUsers(context.Background(), []int64{42})
		if err == nil || errors.Is(err, minigram.ErrPeerNotFound) {
			t.Fatalf("err = %v, want passthrough", err)
		}
	})
}

func messagesResponse(msg tg.MessageClass) *tg.MessagesMessages {
	return &tg.MessagesMessages{
		Messages: []tg.MessageClass{msg},
		Chats: []tg.ChatClass{
			&tg.Chat{ID: 100, Title: "group-chat"},
		},
		Users: []tg.UserClass{newTestUser(42, "Alice")},
	}
}

func TestFetchMessageRoutesByChatIDEncoding(t *testing.T) {
	t.Parallel()

	t.Run("group chat uses the generic endpoint", func(t *testing.T) {
		t.Parallel()

		raw := &tg.Message{
			ID:      700,
			PeerID:  &tg.PeerChat{ChatID: 100},
			Date:    1_700_000_000,
			Message: "original",
		}
		raw.SetFromID(&tg.PeerUser{UserID: 42})
		rpc := &fakeRPC{messages: messagesResponse(raw)}
		_, service := newEngineForTest(t, rpc)

		msg, err := service.FetchMessage(context.Background(), -100, 700, 0)
		if err != nil {
			t.Fatalf("FetchMessage: %v", err)
		}
		if msg.ID != 700 || msg.Text != "original" {
			t.Fatalf("message = %+v", msg)
		}
		if msg.FromUser == nil || msg.FromUser.FirstName != "Alice" {
			t.Fatalf("fromUser = %+v, want resolution from response tables", msg.FromUser)
		}
		if len(rpc.genericCalls) != 1 || len(rpc.channelCalls) != 0 {
			t.Fatalf("calls = %d generic / %d channel", len(rpc.genericCalls), len(rpc.channelCalls))
		}
	})

	t.Run("channel chat id routes to the channel endpoint", func(t *testing.T) {
		t.Parallel()

		raw := &tg.Message{
			ID:      700,
			PeerID:  &tg.PeerChannel{ChannelID: 1234567},
			Date:    1_700_000_000,
			Message: "post",
		}
		rpc := &fakeRPC{messages: &tg.MessagesChannelMessages{
			Messages: []tg.MessageClass{raw},
		}}
		_, service := newEngineForTest(t, rpc)

		chatID := normalize.ChannelChatID(1234567)
		if _, err := service.FetchMessage(context.Background(), chatID, 700, 0); err != nil {
			t.Fatalf("FetchMessage: %v", err)
		}
		if len(rpc.channelCalls) != 1 || len(rpc.genericCalls) != 0 {
			t.Fatalf("calls = %d generic / %d channel", len(rpc.genericCalls), len(rpc.channelCalls))
		}

		request := rpc.channelCalls[0]
		channel, ok := request.Channel.(*tg.InputChannel)
		if !ok {
			t.Fatalf("channel ref = %T", request.Channel)
		}
		if channel.ChannelID != 1234567 {
			t.Fatalf("ChannelID = %d, want 1234567", channel.ChannelID)
		}
	})
}

func TestFetchMessageMissingTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rpc  *fakeRPC
	}{
		{
			name: "empty batch",
			rpc:  &fakeRPC{messages: &tg.MessagesMessages{}},
		},
		{
			name: "deleted message placeholder",
			rpc:  &fakeRPC{messages: messagesResponse(&tg.MessageEmpty{ID: 700})},
		},
		{
			name: "message ids empty rpc error",
			rpc:  &fakeRPC{messagesErr: tgerr.New(400, "MESSAGE_IDS_EMPTY")},
		},
		{
			name: "msg id invalid rpc error",
			rpc:  &fakeRPC{messagesErr: tgerr.New(400, "MSG_ID_INVALID")},
		},
		{
			name: "not modified response",
			rpc:  &fakeRPC{messages: &tg.MessagesMessagesNotModified{Count: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, service := newEngineForTest(t, tt.rpc)

			_, err := service.FetchMessage(context.Background(), -100, 700, 0)
			if !errors.Is(err, minigram.ErrMessageNotFound) {
				t.Fatalf("err = %v, want ErrMessageNotFound", err)
			}
		})
	}
}

func TestEngineResolvesReplyChainsThroughItself(t *testing.T) {
	t.Parallel()

	replied := &tg.Message{
		ID:      700,
		PeerID:  &tg.PeerChat{ChatID: 100},
		Date:    1_700_000_000,
		Message: "original",
	}
	replied.SetFromID(&tg.PeerUser{UserID: 42})
	rpc := &fakeRPC{messages: messagesResponse(replied)}
	normalizer, err := newEngineWithRPC(rpc)
	if err != nil {
		t.Fatalf("newEngineWithRPC: %v", err)
	}

	raw := &tg.Message{
		ID:      701,
		PeerID:  &tg.PeerChat{ChatID: 100},
		Date:    1_700_000_001,
		Message: "reply",
	}
	raw.SetFromID(&tg.PeerUser{UserID: 42})
	header := &tg.MessageReplyHeader{}
	header.SetReplyToMsgID(700)
	raw.SetReplyTo(header)

	tables := normalize.Tables{
		Users: normalize.IndexUsers([]tg.UserClass{newTestUser(42, "Alice")}),
		Chats: normalize.IndexChats([]tg.ChatClass{&tg.Chat{ID: 100, Title: "group-chat"}}),
	}

	msg, err := normalizer.Normalize(context.Background(), raw, tables)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if msg == nil || msg.ReplyToMessage == nil || msg.ReplyToMessage.Text != "original" {
		t.Fatalf("ReplyToMessage = %+v", msg.ReplyToMessage)
	}
	if len(rpc.genericCalls) != 1 {
		t.Fatalf("rpc calls = %d, want 1", len(rpc.genericCalls))
	}

	// A second pass resolves the same reply from the cache.
	raw.ID = 702
	msg, err = normalizer.Normalize(context.Background(), raw, tables)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if msg.ReplyToMessage == nil {
		t.Fatal("expected cached reply")
	}
	if len(rpc.genericCalls) != 1 {
		t.Fatalf("rpc calls = %d, want 1 after cache hit", len(rpc.genericCalls))
	}
}
