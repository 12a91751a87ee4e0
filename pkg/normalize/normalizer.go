package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gotd/td/tg"

	"minigram/pkg/minigram"
)

const defaultReplyDepth = 1

// UserFetcher performs the remote batch lookup backing entity resolution.
// Implementations return minigram.ErrPeerNotFound when the remote side does
// not know any of the requested ids.
type UserFetcher interface {
	FetchUsers(ctx context.Context, ids []int64) ([]tg.UserClass, error)
}

// MessageFetcher loads one message by chat and id and returns it normalized,
// resolving its own reply chain up to replyDepth further hops.
// Implementations return minigram.ErrMessageNotFound for missing messages.
type MessageFetcher interface {
	FetchMessage(ctx context.Context, chatID int64, messageID int, replyDepth int) (*minigram.Message, error)
}

// Normalizer turns raw wire messages into the unified Message view. Remote
// collaborators are optional: without them, lookups degrade to the supplied
// tables and reply chains stop at the cache.
type Normalizer struct {
	users      UserFetcher
	messages   MessageFetcher
	cache      ReplyCache
	logger     *slog.Logger
	replyDepth int
}

// Option mutates normalizer configuration.
type Option func(*Normalizer)

// WithUserFetcher injects the remote user lookup collaborator.
func WithUserFetcher(users UserFetcher) Option {
	return func(n *Normalizer) {
		n.users = users
	}
}

// WithMessageFetcher injects the remote message lookup collaborator.
func WithMessageFetcher(messages MessageFetcher) Option {
	return func(n *Normalizer) {
		n.messages = messages
	}
}

// WithReplyCache replaces the default bounded in-memory reply cache.
func WithReplyCache(cache ReplyCache) Option {
	return func(n *Normalizer) {
		if cache != nil {
			n.cache = cache
		}
	}
}

// WithLogger injects a logger directly.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMaxReplyDepth sets how many reply hops a top-level call resolves.
func WithMaxReplyDepth(depth int) Option {
	return func(n *Normalizer) {
		if depth >= 0 {
			n.replyDepth = depth
		}
	}
}

// New creates a normalizer. Without options it runs fully local: an owned
// message cache, no remote fetchers, one reply hop.
func New(options ...Option) *Normalizer {
	n := &Normalizer{
		cache:      NewMessageCache(),
		logger:     slog.Default(),
		replyDepth: defaultReplyDepth,
	}
	for _, option := range options {
		option(n)
	}

	return n
}

type callConfig struct {
	scheduled            bool
	replyDepth           int
	businessConnectionID string
	injectedReply        tg.MessageClass
}

// CallOption mutates one Normalize call.
type CallOption func(*callConfig)

// Scheduled marks the message as coming from the scheduled-message queue.
func Scheduled() CallOption {
	return func(cfg *callConfig) {
		cfg.scheduled = true
	}
}

// WithReplyDepth overrides how many reply hops this call resolves.
func WithReplyDepth(depth int) CallOption {
	return func(cfg *callConfig) {
		if depth >= 0 {
			cfg.replyDepth = depth
		}
	}
}

// WithBusinessConnectionID stamps the resulting message with a business
// connection id.
func WithBusinessConnectionID(id string) CallOption {
	return func(cfg *callConfig) {
		cfg.businessConnectionID = id
	}
}

// WithInjectedReply supplies the raw replied-to message directly, bypassing
// the cache and fetch path. Business-connection updates deliver the reply
// inline this way.
func WithInjectedReply(raw tg.MessageClass) CallOption {
	return func(cfg *callConfig) {
		cfg.injectedReply = raw
	}
}

// Normalize converts one raw message into the unified view.
//
// The tables must carry the users and chats delivered alongside the raw
// message; the normalizer adds users it fetched itself. Every recognized
// constructor yields a message: unknown media and service variants degrade
// to untagged fields instead of failing.
func (n *Normalizer) Normalize(ctx context.Context, raw tg.MessageClass, tables Tables, options ...CallOption) (*minigram.Message, error) {
	if raw == nil {
		return nil, fmt.Errorf("normalize message: %w: nil constructor", minigram.ErrInvalidMessage)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalize message: %w", err)
	}

	cfg := callConfig{replyDepth: n.replyDepth}
	for _, option := range options {
		option(&cfg)
	}

	var (
		msg *minigram.Message
		err error
	)
	switch typed := raw.(type) {
	case *tg.MessageEmpty:
		// Deleted or inaccessible. Keep the id so callers can correlate,
		// skip the cache so the hole is re-checked next time.
		return &minigram.Message{
			ID:                   typed.ID,
			Empty:                true,
			BusinessConnectionID: cfg.businessConnectionID,
		}, nil
	case *tg.MessageService:
		msg, err = n.normalizeService(ctx, typed, tables, cfg)
	case *tg.Message:
		msg, err = n.normalizeRegular(ctx, typed, tables, cfg)
	default:
		return nil, fmt.Errorf("normalize message: %w: unsupported constructor %T", minigram.ErrInvalidMessage, raw)
	}
	if err != nil {
		return nil, err
	}

	if header, ok := replyHeaderOf(raw); ok {
		if err := n.resolveReply(ctx, msg, header, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.injectedReply != nil {
		reply, err := n.Normalize(ctx, cfg.injectedReply, tables,
			WithReplyDepth(0), WithBusinessConnectionID(cfg.businessConnectionID))
		if err != nil {
			return nil, fmt.Errorf("normalize injected reply: %w", err)
		}
		msg.ReplyToMessage = reply
	}

	msg.BusinessConnectionID = cfg.businessConnectionID

	// Polls keep mutating server-side after delivery; caching one would
	// serve stale vote counts to later reply lookups.
	if msg.Chat != nil && msg.Poll == nil {
		n.cache.Put(msg.Chat.ID, msg.ID, msg)
	}

	return msg, nil
}

func (n *Normalizer) normalizeService(ctx context.Context, raw *tg.MessageService, tables Tables, cfg callConfig) (*minigram.Message, error) {
	fromPeer, _ := raw.GetFromID()
	if err := n.ensureUsers(ctx, fromPeer, raw.PeerID, tables); err != nil {
		return nil, err
	}

	fromUser, senderChat := n.resolveSender(fromPeer, raw.PeerID, tables, false)
	chat := resolvePeerChat(raw.PeerID, tables)

	replyToMsgID := 0
	header, hasReply := raw.GetReplyTo()
	if hasReply {
		if typed, ok := header.(*tg.MessageReplyHeader); ok {
			replyToMsgID, _ = typed.GetReplyToMsgID()
		}
	}

	res := interpretAction(raw.Action, serviceEnv{
		chat:           chat,
		fromUser:       fromUser,
		tables:         tables,
		replyToMsgID:   replyToMsgID,
		hasReplyHeader: hasReply,
	})
	if !res.known {
		n.logger.Debug("unrecognized service action",
			"action", fmt.Sprintf("%T", raw.Action),
			"chat_id", chatIDOf(chat),
			"message_id", raw.ID)
	}

	msg := &minigram.Message{
		ID:         raw.ID,
		Chat:       chat,
		FromUser:   fromUser,
		SenderChat: senderChat,
		Date:       TimeFromUnix(raw.Date),
		Outgoing:   raw.Out,
		Mentioned:  raw.Mentioned,
		Scheduled:  cfg.scheduled,
	}
	applyServiceResult(msg, res)

	switch res.followUp {
	case followUpPinnedMessage:
		if err := n.resolvePinned(ctx, msg, replyToMsgID); err != nil {
			return nil, err
		}
	case followUpGameScore:
		if err := n.resolveGameScore(ctx, msg, replyToMsgID, res.gameScore, cfg); err != nil {
			return nil, err
		}
	}

	return msg, nil
}

func (n *Normalizer) normalizeRegular(ctx context.Context, raw *tg.Message, tables Tables, cfg callConfig) (*minigram.Message, error) {
	fromPeer, _ := raw.GetFromID()
	if err := n.ensureUsers(ctx, fromPeer, raw.PeerID, tables); err != nil {
		return nil, err
	}

	fromUser, senderChat := n.resolveSender(fromPeer, raw.PeerID, tables, true)
	chat := resolvePeerChat(raw.PeerID, tables)
	entities := mapEntities(raw.Entities)
	media := classifyMedia(raw.Media, raw)

	msg := &minigram.Message{
		ID:                  raw.ID,
		Chat:                chat,
		FromUser:            fromUser,
		SenderChat:          senderChat,
		Date:                TimeFromUnix(raw.Date),
		Outgoing:            raw.Out,
		Mentioned:           raw.Mentioned,
		Scheduled:           cfg.scheduled,
		FromScheduled:       raw.FromScheduled,
		HasProtectedContent: raw.Noforwards,
		IsFromOffline:       raw.Offline,
	}

	if media.hasVariant() {
		msg.Caption = raw.Message
		msg.CaptionEntities = entities
	} else {
		msg.Text = raw.Message
		msg.Entities = entities
		msg.WebPage = media.webPage
	}
	applyMediaResult(msg, media)

	msg.LinkPreviewOptions = media.linkPreview
	if msg.LinkPreviewOptions == nil && media.webPageURL != "" {
		msg.LinkPreviewOptions = &minigram.LinkPreviewOptions{
			URL:           media.webPageURL,
			ShowAboveText: raw.InvertMedia,
		}
	}

	if date, ok := raw.GetEditDate(); ok {
		msg.EditDate = TimeFromUnix(date)
	}
	if author, ok := raw.GetPostAuthor(); ok {
		msg.AuthorSignature = author
	}
	if groupedID, ok := raw.GetGroupedID(); ok {
		msg.MediaGroupID = groupedID
	}
	if views, ok := raw.GetViews(); ok {
		msg.Views = views
	}
	if forwards, ok := raw.GetForwards(); ok {
		msg.Forwards = forwards
	}
	if botID, ok := raw.GetViaBotID(); ok {
		msg.ViaBot = resolveUserByID(botID, tables)
	}
	if botID, ok := raw.GetViaBusinessBotID(); ok {
		msg.SenderBusinessBot = resolveUserByID(botID, tables)
	}
	if boosts, ok := raw.GetFromBoostsApplied(); ok {
		msg.SenderBoostCount = boosts
	}
	if reactions, ok := raw.GetReactions(); ok {
		msg.Reactions = mapReactions(reactions)
	}
	if header, ok := raw.GetFwdFrom(); ok {
		msg.ForwardOrigin = parseForwardOrigin(header, tables)
	}

	return msg, nil
}

// resolveSender decides sender attribution: a user when the sender id
// resolves to one, otherwise a chat view. Channel posts without an explicit
// sender attribute to the channel itself, but only for regular messages.
func (n *Normalizer) resolveSender(fromPeer, peer tg.PeerClass, tables Tables, fallbackToPeer bool) (*minigram.User, *minigram.Chat) {
	senderID := RawPeerID(fromPeer)
	if senderID == 0 {
		senderID = RawPeerID(peer)
	}
	if rawUser, ok := tables.User(senderID); ok {
		return parseUser(rawUser), nil
	}

	source := fromPeer
	if source == nil && fallbackToPeer {
		source = peer
	}
	if source == nil {
		return nil, nil
	}
	if _, isUser := source.(*tg.PeerUser); isUser {
		return nil, nil
	}

	return nil, resolvePeerChat(source, tables)
}

// ensureUsers performs the one remote lookup entity resolution is allowed:
// when both the sender and the peer are plain users and either is absent
// from the tables, fetch both and merge. Unknown ids are logged and
// swallowed, the views degrade to bare ids downstream.
func (n *Normalizer) ensureUsers(ctx context.Context, fromPeer, peer tg.PeerClass, tables Tables) error {
	fromUser, fromIsUser := fromPeer.(*tg.PeerUser)
	peerUser, peerIsUser := peer.(*tg.PeerUser)
	if !fromIsUser || !peerIsUser || n.users == nil {
		return nil
	}

	_, haveFrom := tables.User(fromUser.UserID)
	_, havePeer := tables.User(peerUser.UserID)
	if haveFrom && havePeer {
		return nil
	}

	ids := []int64{fromUser.UserID}
	if peerUser.UserID != fromUser.UserID {
		ids = append(ids, peerUser.UserID)
	}

	fetched, err := n.users.FetchUsers(ctx, ids)
	switch {
	case errors.Is(err, minigram.ErrPeerNotFound):
		n.logger.Debug("user lookup returned no peers", "ids", ids)
		return nil
	case err != nil:
		return fmt.Errorf("fetch users: %w", err)
	}

	tables.MergeUsers(fetched)
	return nil
}

// resolveReply fills the reply cluster from the raw header and resolves the
// replied-to message through the cache, falling back to a remote fetch. A
// missing target leaves the field null.
func (n *Normalizer) resolveReply(ctx context.Context, msg *minigram.Message, header tg.MessageReplyHeaderClass, cfg callConfig) error {
	switch typed := header.(type) {
	case *tg.MessageReplyHeader:
		if id, ok := typed.GetReplyToMsgID(); ok {
			msg.ReplyToMessageID = id
		}
		if topID, ok := typed.GetReplyToTopID(); ok {
			msg.MessageThreadID = topID
		}
		if typed.ForumTopic {
			msg.IsTopicMessage = true
			if msg.MessageThreadID == 0 {
				msg.MessageThreadID = msg.ReplyToMessageID
			}
		}
		if quoteText, ok := typed.GetQuoteText(); ok {
			quote := &minigram.TextQuote{
				Text:     quoteText,
				Entities: mapEntities(typed.QuoteEntities),
				IsManual: typed.Quote,
			}
			if offset, ok := typed.GetQuoteOffset(); ok {
				quote.Position = offset
			}
			msg.Quote = quote
		}
	case *tg.MessageReplyStoryHeader:
		msg.ReplyToStory = &minigram.Story{
			ChatID: PeerChatID(typed.Peer),
			ID:     typed.StoryID,
		}
	}

	if cfg.replyDepth <= 0 || msg.ReplyToMessageID == 0 || msg.ReplyToMessage != nil || msg.Chat == nil {
		return nil
	}

	if cached, ok := n.cache.Get(msg.Chat.ID, msg.ReplyToMessageID); ok {
		msg.ReplyToMessage = cached
		return nil
	}
	if n.messages == nil {
		return nil
	}

	reply, err := n.messages.FetchMessage(ctx, msg.Chat.ID, msg.ReplyToMessageID, cfg.replyDepth-1)
	switch {
	case err == nil:
		msg.ReplyToMessage = reply
	case errors.Is(err, minigram.ErrMessageNotFound), errors.Is(err, minigram.ErrPeerNotFound):
		n.logger.Debug("reply target unavailable",
			"chat_id", msg.Chat.ID,
			"reply_to_message_id", msg.ReplyToMessageID)
	default:
		return fmt.Errorf("resolve reply: %w", err)
	}

	return nil
}

// resolvePinned performs the pin follow-up fetch. Only a successful fetch
// tags the message: a gone target reverts it to a generic service event.
func (n *Normalizer) resolvePinned(ctx context.Context, msg *minigram.Message, replyToMsgID int) error {
	if replyToMsgID == 0 || msg.Chat == nil || n.messages == nil {
		return nil
	}

	pinned, err := n.messages.FetchMessage(ctx, msg.Chat.ID, replyToMsgID, 0)
	switch {
	case err == nil:
		msg.PinnedMessage = pinned
		msg.ServiceType = minigram.ServiceTypePinnedMessage
	case errors.Is(err, minigram.ErrMessageNotFound), errors.Is(err, minigram.ErrPeerNotFound):
		n.logger.Debug("pinned message unavailable",
			"chat_id", msg.Chat.ID,
			"message_id", replyToMsgID)
	default:
		return fmt.Errorf("resolve pinned message: %w", err)
	}

	return nil
}

// resolveGameScore performs the game-score follow-up fetch, mirroring
// resolvePinned: tag and payload appear together or not at all.
func (n *Normalizer) resolveGameScore(ctx context.Context, msg *minigram.Message, replyToMsgID, score int, cfg callConfig) error {
	if replyToMsgID == 0 || msg.Chat == nil || n.messages == nil || cfg.replyDepth <= 0 {
		return nil
	}

	reply, err := n.messages.FetchMessage(ctx, msg.Chat.ID, replyToMsgID, 0)
	switch {
	case err == nil:
		msg.ReplyToMessage = reply
		msg.GameHighScore = &minigram.GameHighScore{User: msg.FromUser, Score: score}
		msg.ServiceType = minigram.ServiceTypeGameHighScore
	case errors.Is(err, minigram.ErrMessageNotFound), errors.Is(err, minigram.ErrPeerNotFound):
		n.logger.Debug("game message unavailable",
			"chat_id", msg.Chat.ID,
			"message_id", replyToMsgID)
	default:
		return fmt.Errorf("resolve game score: %w", err)
	}

	return nil
}

func replyHeaderOf(raw tg.MessageClass) (tg.MessageReplyHeaderClass, bool) {
	switch typed := raw.(type) {
	case *tg.Message:
		return typed.GetReplyTo()
	case *tg.MessageService:
		return typed.GetReplyTo()
	default:
		return nil, false
	}
}

func applyServiceResult(msg *minigram.Message, res serviceResult) {
	msg.ServiceType = res.serviceType
	msg.NewChatMembers = res.newChatMembers
	msg.LeftChatMember = res.leftChatMember
	msg.NewChatTitle = res.newChatTitle
	msg.NewChatPhoto = res.newChatPhoto
	msg.DeleteChatPhoto = res.deleteChatPhoto
	msg.GroupChatCreated = res.groupChatCreated
	msg.SupergroupChatCreated = res.supergroupChatCreated
	msg.ChannelChatCreated = res.channelChatCreated
	msg.MigrateToChatID = res.migrateToChatID
	msg.MigrateFromChatID = res.migrateFromChatID
	msg.VideoChatScheduled = res.videoChatScheduled
	msg.VideoChatStarted = res.videoChatStarted
	msg.VideoChatEnded = res.videoChatEnded
	msg.VideoChatInvited = res.videoChatInvited
	msg.WebAppData = res.webAppData
	msg.GiveawayCreated = res.giveawayCreated
	msg.GiveawayCompleted = res.giveawayCompleted
	msg.GiftCode = res.giftCode
	msg.GiftedPremium = res.giftedPremium
	msg.UsersShared = res.usersShared
	msg.ChatShared = res.chatShared
	msg.ChatTTLPeriod = res.chatTTLPeriod
	msg.ChatTTLSetter = res.chatTTLSetter
	msg.BoostAdded = res.boostAdded
	msg.ForumTopicCreated = res.topicCreated
	msg.ForumTopicEdited = res.topicEdited
	msg.ForumTopicClosed = res.topicClosed
	msg.ForumTopicReopened = res.topicReopened
	msg.GeneralForumTopicHidden = res.generalHidden
	msg.GeneralForumTopicUnhidden = res.generalUnhidden
	msg.CustomAction = res.customAction
}

func applyMediaResult(msg *minigram.Message, media mediaResult) {
	msg.MediaType = media.mediaType
	msg.HasMediaSpoiler = media.spoiler
	msg.Photo = media.photo
	msg.Animation = media.animation
	msg.Sticker = media.sticker
	msg.Video = media.video
	msg.VideoNote = media.videoNote
	msg.Voice = media.voice
	msg.Audio = media.audio
	msg.Document = media.document
	msg.Location = media.location
	msg.Contact = media.contact
	msg.Venue = media.venue
	msg.Game = media.game
	msg.Poll = media.poll
	msg.Dice = media.dice
	msg.Story = media.story
	msg.Giveaway = media.giveaway
	msg.GiveawayWinners = media.giveawayWinners
	msg.Invoice = media.invoice
}

func mapReactions(raw tg.MessageReactions) []minigram.Reaction {
	if len(raw.Results) == 0 {
		return nil
	}

	out := make([]minigram.Reaction, 0, len(raw.Results))
	for _, result := range raw.Results {
		reaction := minigram.Reaction{Count: result.Count}
		if _, ok := result.GetChosenOrder(); ok {
			reaction.ChosenByMe = true
		}
		switch typed := result.Reaction.(type) {
		case *tg.ReactionEmoji:
			reaction.Emoji = typed.Emoticon
		case *tg.ReactionCustomEmoji:
			reaction.CustomEmojiID = typed.DocumentID
		case *tg.ReactionPaid:
			reaction.IsPaid = true
		default:
			continue
		}
		out = append(out, reaction)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// parseForwardOrigin maps the forward header to an origin. A channel source
// with a post id is a channel-post forward; without one it was sent on
// behalf of the chat.
func parseForwardOrigin(header tg.MessageFwdHeader, tables Tables) *minigram.ForwardOrigin {
	origin := &minigram.ForwardOrigin{Date: TimeFromUnix(header.Date)}
	if author, ok := header.GetPostAuthor(); ok {
		origin.AuthorSignature = author
	}
	if post, ok := header.GetChannelPost(); ok {
		origin.MessageID = post
	}

	from, hasFrom := header.GetFromID()
	if !hasFrom {
		name, ok := header.GetFromName()
		if !ok {
			return nil
		}
		origin.Type = minigram.ForwardOriginTypeHiddenUser
		origin.SenderUserName = name
		return origin
	}

	switch peer := from.(type) {
	case *tg.PeerUser:
		origin.Type = minigram.ForwardOriginTypeUser
		origin.SenderUser = resolveUserByID(peer.UserID, tables)
	case *tg.PeerChat:
		origin.Type = minigram.ForwardOriginTypeChat
		origin.SenderChat = resolvePeerChat(peer, tables)
	case *tg.PeerChannel:
		if origin.MessageID != 0 {
			origin.Type = minigram.ForwardOriginTypeChannel
			origin.Chat = resolvePeerChat(peer, tables)
		} else {
			origin.Type = minigram.ForwardOriginTypeChat
			origin.SenderChat = resolvePeerChat(peer, tables)
		}
	default:
		return nil
	}

	return origin
}

func chatIDOf(chat *minigram.Chat) int64 {
	if chat == nil {
		return 0
	}
	return chat.ID
}
