package minigram

import (
	"fmt"
	"time"
)

// MessageEntity marks a span of message text with formatting or link metadata.
//
// Offsets and lengths are expressed in UTF-16 code units, as delivered by the
// wire protocol.
type MessageEntity struct {
	Type          string
	Offset        int
	Length        int
	URL           string
	UserID        int64
	Language      string
	CustomEmojiID int64
}

// Reaction is one aggregated reaction attached to a message.
type Reaction struct {
	Emoji         string
	CustomEmojiID int64
	IsPaid        bool
	Count         int
	ChosenByMe    bool
}

// TextQuote is the excerpt of a replied-to message quoted in the reply header.
type TextQuote struct {
	Text     string
	Entities []MessageEntity
	Position int
	IsManual bool
}

// LinkPreviewOptions describes how a link preview is rendered for a message.
type LinkPreviewOptions struct {
	IsDisabled       bool
	URL              string
	PreferSmallMedia bool
	PreferLargeMedia bool
	ShowAboveText    bool
	IsManual         bool
	IsSafe           bool
}

// ForwardOrigin describes the original sender of a forwarded message.
//
// Exactly one of SenderUser, SenderChat, Chat, or SenderUserName identifies
// the origin, selected by Type.
type ForwardOrigin struct {
	Type            ForwardOriginType
	Date            time.Time
	SenderUser      *User
	SenderUserName  string
	SenderChat      *Chat
	Chat            *Chat
	MessageID       int
	AuthorSignature string
}

// Message is the unified, normalized view of one raw wire message.
//
// Fields are grouped into clusters: identity, content (at most one media
// variant or text), service events (exactly one per ServiceType), reply
// metadata, forward origin, and reactions. Validate checks the cluster
// invariants after construction.
type Message struct {
	// Identity.
	ID                   int
	Empty                bool
	Chat                 *Chat
	FromUser             *User
	SenderChat           *Chat
	Date                 time.Time
	EditDate             time.Time
	Outgoing             bool
	Mentioned            bool
	Scheduled            bool
	FromScheduled        bool
	AuthorSignature      string
	HasProtectedContent  bool
	MediaGroupID         int64
	Views                int
	Forwards             int
	ViaBot               *User
	SenderBoostCount     int
	SenderBusinessBot    *User
	BusinessConnectionID string
	IsFromOffline        bool
	IsTopicMessage       bool

	// Content cluster. At most one of Text or a tagged media variant is
	// populated; WebPage sits outside the cluster and may accompany Text.
	Text               string
	Entities           []MessageEntity
	Caption            string
	CaptionEntities    []MessageEntity
	MediaType          MediaType
	HasMediaSpoiler    bool
	Photo              *Photo
	Animation          *Animation
	Sticker            *Sticker
	Video              *Video
	VideoNote          *VideoNote
	Voice              *Voice
	Audio              *Audio
	Document           *Document
	WebPage            *WebPage
	Poll               *Poll
	Dice               *Dice
	Location           *Location
	Contact            *Contact
	Venue              *Venue
	Game               *Game
	Story              *Story
	Giveaway           *Giveaway
	GiveawayWinners    *GiveawayWinners
	Invoice            *Invoice
	LinkPreviewOptions *LinkPreviewOptions

	// Service cluster. ServiceType names the single populated field; the
	// requested-peer action may populate UsersShared and ChatShared together.
	ServiceType               ServiceType
	NewChatMembers            []*User
	LeftChatMember            *User
	NewChatTitle              string
	NewChatPhoto              *Photo
	DeleteChatPhoto           bool
	GroupChatCreated          bool
	SupergroupChatCreated     bool
	ChannelChatCreated        bool
	MigrateToChatID           int64
	MigrateFromChatID         int64
	PinnedMessage             *Message
	GameHighScore             *GameHighScore
	VideoChatScheduled        *VideoChatScheduled
	VideoChatStarted          *VideoChatStarted
	VideoChatEnded            *VideoChatEnded
	VideoChatInvited          *VideoChatInvited
	WebAppData                *WebAppData
	GiftCode                  *GiftCode
	GiftedPremium             *GiftedPremium
	GiveawayCreated           bool
	GiveawayCompleted         *GiveawayCompleted
	UsersShared               *UsersShared
	ChatShared                *ChatShared
	ChatTTLPeriod             int
	ChatTTLSetter             *User
	BoostAdded                *ChatBoostAdded
	ForumTopicCreated         *ForumTopicCreated
	ForumTopicEdited          *ForumTopicEdited
	ForumTopicClosed          *ForumTopicClosed
	ForumTopicReopened        *ForumTopicReopened
	GeneralForumTopicHidden   *GeneralForumTopicHidden
	GeneralForumTopicUnhidden *GeneralForumTopicUnhidden
	CustomAction              string

	// Reply cluster.
	ReplyToMessageID int
	MessageThreadID  int
	Quote            *TextQuote
	ReplyToMessage   *Message
	ReplyToStory     *Story

	// Forward cluster.
	ForwardOrigin *ForwardOrigin

	Reactions []Reaction
}

// IsService reports whether this message carries a service event.
func (m *Message) IsService() bool {
	return m != nil && m.ServiceType != ""
}

// PopulatedMediaTypes lists the tags of all populated media variant fields.
//
// WebPage is excluded: web page previews are carried via LinkPreviewOptions
// and do not participate in the media cluster.
func (m *Message) PopulatedMediaTypes() []MediaType {
	if m == nil {
		return nil
	}

	var populated []MediaType
	for tag, present := range map[MediaType]bool{
		MediaTypePhoto:           m.Photo != nil,
		MediaTypeAnimation:       m.Animation != nil,
		MediaTypeSticker:         m.Sticker != nil,
		MediaTypeVideo:           m.Video != nil,
		MediaTypeVideoNote:       m.VideoNote != nil,
		MediaTypeVoice:           m.Voice != nil,
		MediaTypeAudio:           m.Audio != nil,
		MediaTypeDocument:        m.Document != nil,
		MediaTypePoll:            m.Poll != nil,
		MediaTypeDice:            m.Dice != nil,
		MediaTypeLocation:        m.Location != nil,
		MediaTypeContact:         m.Contact != nil,
		MediaTypeVenue:           m.Venue != nil,
		MediaTypeGame:            m.Game != nil,
		MediaTypeStory:           m.Story != nil,
		MediaTypeGiveaway:        m.Giveaway != nil,
		MediaTypeGiveawayWinners: m.GiveawayWinners != nil,
		MediaTypeInvoice:         m.Invoice != nil,
	} {
		if present {
			populated = append(populated, tag)
		}
	}

	return populated
}

// PopulatedServiceTypes lists the tags of all populated service-event fields.
func (m *Message) PopulatedServiceTypes() []ServiceType {
	if m == nil {
		return nil
	}

	var populated []ServiceType
	for _, candidate := range []struct {
		tag     ServiceType
		present bool
	}{
		{ServiceTypeNewChatMembers, len(m.NewChatMembers) > 0},
		{ServiceTypeLeftChatMember, m.LeftChatMember != nil},
		{ServiceTypeNewChatTitle, m.NewChatTitle != ""},
		{ServiceTypeNewChatPhoto, m.NewChatPhoto != nil},
		{ServiceTypeDeleteChatPhoto, m.DeleteChatPhoto},
		{ServiceTypeGroupChatCreated, m.GroupChatCreated},
		{ServiceTypeSupergroupChatCreated, m.SupergroupChatCreated},
		{ServiceTypeChannelChatCreated, m.ChannelChatCreated},
		{ServiceTypeMigrateToChatID, m.MigrateToChatID != 0},
		{ServiceTypeMigrateFromChatID, m.MigrateFromChatID != 0},
		{ServiceTypePinnedMessage, m.PinnedMessage != nil},
		{ServiceTypeGameHighScore, m.GameHighScore != nil},
		{ServiceTypeVideoChatScheduled, m.VideoChatScheduled != nil},
		{ServiceTypeVideoChatStarted, m.VideoChatStarted != nil},
		{ServiceTypeVideoChatEnded, m.VideoChatEnded != nil},
		{ServiceTypeVideoChatInvited, m.VideoChatInvited != nil},
		{ServiceTypeWebAppData, m.WebAppData != nil},
		{ServiceTypeGiftCode, m.GiftCode != nil},
		{ServiceTypeGiftedPremium, m.GiftedPremium != nil},
		{ServiceTypeGiveawayCreated, m.GiveawayCreated},
		{ServiceTypeGiveawayCompleted, m.GiveawayCompleted != nil},
		{ServiceTypeUsersShared, m.UsersShared != nil},
		{ServiceTypeChatShared, m.ChatShared != nil},
		{ServiceTypeChatTTLChanged, m.ChatTTLPeriod != 0},
		{ServiceTypeChatBoostAdded, m.BoostAdded != nil},
		{ServiceTypeForumTopicCreated, m.ForumTopicCreated != nil},
		{ServiceTypeForumTopicEdited, m.ForumTopicEdited != nil},
		{ServiceTypeForumTopicClosed, m.ForumTopicClosed != nil},
		{ServiceTypeForumTopicReopened, m.ForumTopicReopened != nil},
		{ServiceTypeGeneralForumTopicHidden, m.GeneralForumTopicHidden != nil},
		{ServiceTypeGeneralForumTopicUnhidden, m.GeneralForumTopicUnhidden != nil},
		{ServiceTypeCustomAction, m.CustomAction != ""},
	} {
		if candidate.present {
			populated = append(populated, candidate.tag)
		}
	}

	return populated
}

// Validate checks the field-cluster invariants described on Message.
func (m *Message) Validate() error {
	if m == nil {
		return fmt.Errorf("validate message: nil message")
	}

	if m.FromUser != nil && m.SenderChat != nil {
		return fmt.Errorf("%w: both from_user and sender_chat set", ErrInvalidMessage)
	}

	mediaTags := m.PopulatedMediaTypes()
	if len(mediaTags) > 1 {
		return fmt.Errorf("%w: %d media variants populated", ErrInvalidMessage, len(mediaTags))
	}
	if len(mediaTags) == 1 {
		if m.MediaType != mediaTags[0] {
			return fmt.Errorf("%w: media_type %q does not name populated variant %q",
				ErrInvalidMessage, m.MediaType, mediaTags[0])
		}
		if m.Text != "" {
			return fmt.Errorf("%w: text set alongside media variant %q", ErrInvalidMessage, mediaTags[0])
		}
	}
	if len(mediaTags) == 0 && m.MediaType != "" {
		return fmt.Errorf("%w: media_type %q with no populated variant", ErrInvalidMessage, m.MediaType)
	}

	serviceTags := m.PopulatedServiceTypes()
	if m.ServiceType != "" {
		if err := m.validateServiceCluster(serviceTags); err != nil {
			return err
		}
	} else if len(serviceTags) > 0 {
		return fmt.Errorf("%w: service field %q populated without service_type", ErrInvalidMessage, serviceTags[0])
	}

	return nil
}

func (m *Message) validateServiceCluster(serviceTags []ServiceType) error {
	if m.Text != "" || len(m.PopulatedMediaTypes()) > 0 {
		return fmt.Errorf("%w: content populated on service message", ErrInvalidMessage)
	}

	named := false
	for _, tag := range serviceTags {
		if tag == m.ServiceType {
			named = true
			break
		}
	}
	if !named {
		return fmt.Errorf("%w: service_type %q field not populated", ErrInvalidMessage, m.ServiceType)
	}

	switch len(serviceTags) {
	case 1:
		return nil
	case 2:
		// The requested-peer action is the one case producing two payloads.
		if hasTag(serviceTags, ServiceTypeUsersShared) && hasTag(serviceTags, ServiceTypeChatShared) {
			return nil
		}
	}

	return fmt.Errorf("%w: service fields %v populated together", ErrInvalidMessage, serviceTags)
}

func hasTag(tags []ServiceType, want ServiceType) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}

	return false
}

// ForwardFrom returns the original sender for user-origin forwards.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardFrom() *User {
	if m == nil || m.ForwardOrigin == nil {
		return nil
	}
	return m.ForwardOrigin.SenderUser
}

// ForwardSenderName returns the hidden-origin sender name.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardSenderName() string {
	if m == nil || m.ForwardOrigin == nil {
		return ""
	}
	return m.ForwardOrigin.SenderUserName
}

// ForwardFromChat returns the origin chat for channel or chat forwards.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardFromChat() *Chat {
	if m == nil || m.ForwardOrigin == nil {
		return nil
	}
	if m.ForwardOrigin.Chat != nil {
		return m.ForwardOrigin.Chat
	}
	return m.ForwardOrigin.SenderChat
}

// ForwardFromMessageID returns the origin channel post id.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardFromMessageID() int {
	if m == nil || m.ForwardOrigin == nil {
		return 0
	}
	return m.ForwardOrigin.MessageID
}

// ForwardSignature returns the origin post author signature.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardSignature() string {
	if m == nil || m.ForwardOrigin == nil {
		return ""
	}
	return m.ForwardOrigin.AuthorSignature
}

// ForwardDate returns when the original message was sent.
//
// Deprecated: use ForwardOrigin instead.
func (m *Message) ForwardDate() time.Time {
	if m == nil || m.ForwardOrigin == nil {
		return time.Time{}
	}
	return m.ForwardOrigin.Date
}
