package normalize

import (
	"time"

	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

// followUpKind marks service actions whose payload depends on a second
// message fetch performed by the normalizer after interpretation.
type followUpKind int

const (
	followUpNone followUpKind = iota
	followUpPinnedMessage
	followUpGameScore
)

// serviceResult is the interpreted form of one raw service action: a tag, at
// most one payload (two for the requested-peer split), and an optional
// follow-up fetch request.
type serviceResult struct {
	serviceType minigram.ServiceType
	known       bool
	followUp    followUpKind

	newChatMembers        []*minigram.User
	leftChatMember        *minigram.User
	newChatTitle          string
	newChatPhoto          *minigram.Photo
	deleteChatPhoto       bool
	groupChatCreated      bool
	supergroupChatCreated bool
	channelChatCreated    bool
	migrateToChatID       int64
	migrateFromChatID     int64
	gameScore             int
	videoChatScheduled    *minigram.VideoChatScheduled
	videoChatStarted      *minigram.VideoChatStarted
	videoChatEnded        *minigram.VideoChatEnded
	videoChatInvited      *minigram.VideoChatInvited
	webAppData            *minigram.WebAppData
	giveawayCreated       bool
	giveawayCompleted     *minigram.GiveawayCompleted
	giftCode              *minigram.GiftCode
	giftedPremium         *minigram.GiftedPremium
	usersShared           *minigram.UsersShared
	chatShared            *minigram.ChatShared
	chatTTLPeriod         int
	chatTTLSetter         *minigram.User
	boostAdded            *minigram.ChatBoostAdded
	topicCreated          *minigram.ForumTopicCreated
	topicEdited           *minigram.ForumTopicEdited
	topicClosed           *minigram.ForumTopicClosed
	topicReopened         *minigram.ForumTopicReopened
	generalHidden         *minigram.GeneralForumTopicHidden
	generalUnhidden       *minigram.GeneralForumTopicUnhidden
	customAction          string
}

// serviceEnv carries the message-level context some actions need to resolve
// their payload.
type serviceEnv struct {
	chat           *minigram.Chat
	fromUser       *minigram.User
	tables         Tables
	replyToMsgID   int
	hasReplyHeader bool
}

// interpretAction maps one raw service action to its normalized payload and
// tag. Unknown actions yield known=false: the message stays a generic
// service event rather than failing the batch.
func interpretAction(action tg.MessageActionClass, env serviceEnv) serviceResult {
	r := serviceResult{known: true}

	switch typed := action.(type) {
	case *tg.MessageActionChatAddUser:
		r.newChatMembers = resolveUsersByID(typed.Users, env.tables)
		r.serviceType = minigram.ServiceTypeNewChatMembers
	case *tg.MessageActionChatJoinedByLink:
		if env.fromUser != nil {
			r.newChatMembers = []*minigram.User{env.fromUser}
		}
		r.serviceType = minigram.ServiceTypeNewChatMembers
	case *tg.MessageActionChatJoinedByRequest:
		if env.fromUser != nil {
			r.newChatMembers = []*minigram.User{env.fromUser}
		}
		r.serviceType = minigram.ServiceTypeNewChatMembers
	case *tg.MessageActionChatDeleteUser:
		r.leftChatMember = resolveUserByID(typed.UserID, env.tables)
		r.serviceType = minigram.ServiceTypeLeftChatMember
	case *tg.MessageActionChatEditTitle:
		r.newChatTitle = typed.Title
		r.serviceType = minigram.ServiceTypeNewChatTitle
	case *tg.MessageActionChatEditPhoto:
		if raw, ok := typed.Photo.(*tg.Photo); ok {
			r.newChatPhoto = parsePhoto(raw)
		}
		r.serviceType = minigram.ServiceTypeNewChatPhoto
	case *tg.MessageActionChatDeletePhoto:
		r.deleteChatPhoto = true
		r.serviceType = minigram.ServiceTypeDeleteChatPhoto
	case *tg.MessageActionChatCreate:
		r.groupChatCreated = true
		r.serviceType = minigram.ServiceTypeGroupChatCreated
	case *tg.MessageActionChannelCreate:
		if env.chat != nil && env.chat.Type == minigram.ChatTypeSupergroup {
			r.supergroupChatCreated = true
			r.serviceType = minigram.ServiceTypeSupergroupChatCreated
		} else {
			r.channelChatCreated = true
			r.serviceType = minigram.ServiceTypeChannelChatCreated
		}
	case *tg.MessageActionChatMigrateTo:
		r.migrateToChatID = ChannelChatID(typed.ChannelID)
		r.serviceType = minigram.ServiceTypeMigrateToChatID
	case *tg.MessageActionChannelMigrateFrom:
		r.migrateFromChatID = -typed.ChatID
		r.serviceType = minigram.ServiceTypeMigrateFromChatID
	case *tg.MessageActionPinMessage:
		r.followUp = followUpPinnedMessage
	case *tg.MessageActionGameScore:
		r.gameScore = typed.Score
		r.followUp = followUpGameScore
	case *tg.MessageActionGroupCallScheduled:
		r.videoChatScheduled = &minigram.VideoChatScheduled{
			StartsAt: TimeFromUnix(typed.ScheduleDate),
		}
		r.serviceType = minigram.ServiceTypeVideoChatScheduled
	case *tg.MessageActionGroupCall:
		if duration, ok := typed.GetDuration(); ok {
			r.videoChatEnded = &minigram.VideoChatEnded{
				Duration: time.Duration(duration) * time.Second,
			}
			r.serviceType = minigram.ServiceTypeVideoChatEnded
		} else {
			r.videoChatStarted = &minigram.VideoChatStarted{}
			r.serviceType = minigram.ServiceTypeVideoChatStarted
		}
	case *tg.MessageActionInviteToGroupCall:
		r.videoChatInvited = &minigram.VideoChatInvited{
			Users: resolveUsersByID(typed.Users, env.tables),
		}
		r.serviceType = minigram.ServiceTypeVideoChatInvited
	case *tg.MessageActionWebViewDataSentMe:
		r.webAppData = &minigram.WebAppData{
			Data:       typed.Data,
			ButtonText: typed.Text,
		}
		r.serviceType = minigram.ServiceTypeWebAppData
	case *tg.MessageActionGiveawayLaunch:
		r.giveawayCreated = true
		r.serviceType = minigram.ServiceTypeGiveawayCreated
	case *tg.MessageActionGiveawayResults:
		// The results message replies to the original giveaway; a missing
		// header leaves the origin reference unset.
		r.giveawayCompleted = &minigram.GiveawayCompleted{
			WinnersCount:      typed.WinnersCount,
			UnclaimedCount:    typed.UnclaimedCount,
			GiveawayMessageID: env.replyToMsgID,
		}
		r.serviceType = minigram.ServiceTypeGiveawayCompleted
	case *tg.MessageActionGiftCode:
		r.giftCode = parseGiftCode(typed, env.tables)
		r.serviceType = minigram.ServiceTypeGiftCode
	case *tg.MessageActionGiftPremium:
		premium := &minigram.GiftedPremium{
			Currency: typed.Currency,
			Amount:   typed.Amount,
			Days:     typed.Days,
		}
		if env.fromUser != nil {
			premium.GifterID = env.fromUser.ID
		}
		if currency, ok := typed.GetCryptoCurrency(); ok {
			premium.CryptoCurrency = currency
		}
		if amount, ok := typed.GetCryptoAmount(); ok {
			premium.CryptoAmount = amount
		}
		r.giftedPremium = premium
		r.serviceType = minigram.ServiceTypeGiftedPremium
	case *tg.MessageActionRequestedPeer:
		interpretRequestedPeers(typed.ButtonID, typed.Peers, env.tables, &r)
	case *tg.MessageActionRequestedPeerSentMe:
		interpretRequestedPeersSentMe(typed.ButtonID, typed.Peers, &r)
	case *tg.MessageActionSetMessagesTTL:
		if typed.Period == 0 {
			r.known = false
			break
		}
		r.chatTTLPeriod = typed.Period
		if setterID, ok := typed.GetAutoSettingFrom(); ok {
			r.chatTTLSetter = resolveUserByID(setterID, env.tables)
		}
		r.serviceType = minigram.ServiceTypeChatTTLChanged
	case *tg.MessageActionBoostApply:
		r.boostAdded = &minigram.ChatBoostAdded{BoostCount: typed.Boosts}
		r.serviceType = minigram.ServiceTypeChatBoostAdded
	case *tg.MessageActionCustomAction:
		r.customAction = typed.Message
		r.serviceType = minigram.ServiceTypeCustomAction
	case *tg.MessageActionTopicCreate:
		created := &minigram.ForumTopicCreated{
			Title:     typed.Title,
			IconColor: typed.IconColor,
		}
		if emojiID, ok := typed.GetIconEmojiID(); ok {
			created.IconEmojiID = emojiID
		}
		r.topicCreated = created
		r.serviceType = minigram.ServiceTypeForumTopicCreated
	case *tg.MessageActionTopicEdit:
		interpretTopicEdit(typed, env.hasReplyHeader, &r)
	default:
		r.known = false
	}

	return r
}

// interpretTopicEdit branches one edit action into the distinct topic
// events. A title change wins over everything; the hidden flag only applies
// to the general topic, which never carries a reply header; otherwise the
// closed flag decides between closed and reopened.
func interpretTopicEdit(action *tg.MessageActionTopicEdit, hasReplyHeader bool, r *serviceResult) {
	if title, ok := action.GetTitle(); ok && title != "" {
		edited := &minigram.ForumTopicEdited{Title: title}
		if emojiID, ok := action.GetIconEmojiID(); ok {
			edited.IconEmojiID = emojiID
		}
		r.topicEdited = edited
		r.serviceType = minigram.ServiceTypeForumTopicEdited
		return
	}

	if hidden, ok := action.GetHidden(); ok && !hasReplyHeader {
		if hidden {
			r.generalHidden = &minigram.GeneralForumTopicHidden{}
			r.serviceType = minigram.ServiceTypeGeneralForumTopicHidden
		} else {
			r.generalUnhidden = &minigram.GeneralForumTopicUnhidden{}
			r.serviceType = minigram.ServiceTypeGeneralForumTopicUnhidden
		}
		return
	}

	if closed, ok := action.GetClosed(); ok && closed {
		r.topicClosed = &minigram.ForumTopicClosed{}
		r.serviceType = minigram.ServiceTypeForumTopicClosed
		return
	}

	r.topicReopened = &minigram.ForumTopicReopened{}
	r.serviceType = minigram.ServiceTypeForumTopicReopened
}

// interpretRequestedPeers splits a shared-peer list into user and chat
// groups. Both payloads may be populated by one action; the chat group wins
// the tag when present.
func interpretRequestedPeers(buttonID int, peers []tg.PeerClass, tables Tables, r *serviceResult) {
	var users, chats []*minigram.Chat
	for _, peer := range peers {
		view := resolvePeerChat(peer, tables)
		if view == nil {
			continue
		}
		if _, ok := peer.(*tg.PeerUser); ok {
			users = append(users, view)
		} else {
			chats = append(chats, view)
		}
	}

	if len(users) > 0 {
		r.usersShared = &minigram.UsersShared{RequestID: buttonID, Users: users}
		r.serviceType = minigram.ServiceTypeUsersShared
	}
	if len(chats) > 0 {
		r.chatShared = &minigram.ChatShared{RequestID: buttonID, Chats: chats}
		r.serviceType = minigram.ServiceTypeChatShared
	}
	if len(users) == 0 && len(chats) == 0 {
		r.known = false
	}
}

// interpretRequestedPeersSentMe handles the bot-side variant, where each
// shared peer carries its own display fields instead of a table reference.
func interpretRequestedPeersSentMe(buttonID int, peers []tg.RequestedPeerClass, r *serviceResult) {
	var users, chats []*minigram.Chat
	for _, peer := range peers {
		switch typed := peer.(type) {
		case *tg.RequestedPeerUser:
			firstName, _ := typed.GetFirstName()
			lastName, _ := typed.GetLastName()
			username, _ := typed.GetUsername()
			users = append(users, &minigram.Chat{
				ID:        typed.UserID,
				Type:      minigram.ChatTypePrivate,
				FirstName: firstName,
				LastName:  lastName,
				Username:  username,
			})
		case *tg.RequestedPeerChat:
			title, _ := typed.GetTitle()
			chats = append(chats, &minigram.Chat{
				ID:    -typed.ChatID,
				Type:  minigram.ChatTypeGroup,
				Title: title,
			})
		case *tg.RequestedPeerChannel:
			title, _ := typed.GetTitle()
			username, _ := typed.GetUsername()
			chats = append(chats, &minigram.Chat{
				ID:       ChannelChatID(typed.ChannelID),
				Type:     minigram.ChatTypeChannel,
				Title:    title,
				Username: username,
			})
		}
	}

	if len(users) > 0 {
		r.usersShared = &minigram.UsersShared{RequestID: buttonID, Users: users}
		r.serviceType = minigram.ServiceTypeUsersShared
	}
	if len(chats) > 0 {
		r.chatShared = &minigram.ChatShared{RequestID: buttonID, Chats: chats}
		r.serviceType = minigram.ServiceTypeChatShared
	}
	if len(users) == 0 && len(chats) == 0 {
		r.known = false
	}
}

func parseGiftCode(action *tg.MessageActionGiftCode, tables Tables) *minigram.GiftCode {
	code := &minigram.GiftCode{
		ViaGiveaway: action.ViaGiveaway,
		IsUnclaimed: action.Unclaimed,
		Days:        action.Days,
		Slug:        action.Slug,
	}
	if peer, ok := action.GetBoostPeer(); ok {
		code.BoostedChat = resolvePeerChat(peer, tables)
	}
	if currency, ok := action.GetCurrency(); ok {
		code.Currency = currency
	}
	if amount, ok := action.GetAmount(); ok {
		code.Amount = amount
	}
	if currency, ok := action.GetCryptoCurrency(); ok {
		code.CryptoCurrency = currency
	}
	if amount, ok := action.GetCryptoAmount(); ok {
		code.CryptoAmount = amount
	}
	return code
}
