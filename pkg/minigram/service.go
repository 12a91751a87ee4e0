package minigram

import "time"

// VideoChatScheduled announces a group call scheduled for a future date.
type VideoChatScheduled struct {
	StartsAt time.Time
}

// VideoChatStarted announces a group call that just started.
type VideoChatStarted struct{}

// VideoChatEnded announces a finished group call and its duration.
type VideoChatEnded struct {
	Duration time.Duration
}

// VideoChatInvited lists users invited into an ongoing group call.
type VideoChatInvited struct {
	Users []*User
}

// WebAppData carries data sent back from a web app button.
type WebAppData struct {
	Data       string
	ButtonText string
}

// GiftCode carries a Telegram Premium gift code service event.
type GiftCode struct {
	ViaGiveaway    bool
	IsUnclaimed    bool
	BoostedChat    *Chat
	Days           int
	Slug           string
	Currency       string
	Amount         int64
	CryptoCurrency string
	CryptoAmount   int64
}

// GiftedPremium announces a Telegram Premium subscription gifted to a user.
type GiftedPremium struct {
	GifterID       int64
	Currency       string
	Amount         int64
	CryptoCurrency string
	CryptoAmount   int64
	Days           int
}

// UsersShared lists users shared with a bot via a requested-peer button.
type UsersShared struct {
	RequestID int
	Users     []*Chat
}

// ChatShared lists chats shared with a bot via a requested-peer button.
type ChatShared struct {
	RequestID int
	Chats     []*Chat
}

// ChatBoostAdded announces boosts applied to a chat.
type ChatBoostAdded struct {
	BoostCount int
}

// ForumTopicCreated announces a newly created forum topic.
type ForumTopicCreated struct {
	Title       string
	IconColor   int
	IconEmojiID int64
}

// ForumTopicEdited announces a forum topic rename or icon change.
type ForumTopicEdited struct {
	Title       string
	IconEmojiID int64
}

// ForumTopicClosed announces a closed forum topic.
type ForumTopicClosed struct{}

// ForumTopicReopened announces a reopened forum topic.
type ForumTopicReopened struct{}

// GeneralForumTopicHidden announces the hidden general topic.
type GeneralForumTopicHidden struct{}

// GeneralForumTopicUnhidden announces the unhidden general topic.
type GeneralForumTopicUnhidden struct{}

// GiveawayCompleted announces published giveaway results.
//
// GiveawayMessageID is zero when the results message carried no reply
// reference back to the originating giveaway.
type GiveawayCompleted struct {
	WinnersCount      int
	UnclaimedCount    int
	GiveawayMessageID int
}

// GameHighScore records a new high score set in a game message.
type GameHighScore struct {
	User  *User
	Score int
}
