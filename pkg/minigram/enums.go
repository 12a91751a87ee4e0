package minigram

// ChatType identifies the kind of chat a message belongs to.
type ChatType string

const (
	// ChatTypePrivate identifies one-on-one chats with regular users.
	ChatTypePrivate ChatType = "private"
	// ChatTypeBot identifies one-on-one chats with bots.
	ChatTypeBot ChatType = "bot"
	// ChatTypeGroup identifies basic groups.
	ChatTypeGroup ChatType = "group"
	// ChatTypeSupergroup identifies megagroup channels.
	ChatTypeSupergroup ChatType = "supergroup"
	// ChatTypeChannel identifies broadcast channels.
	ChatTypeChannel ChatType = "channel"
)

// MediaType names the media variant field populated on a Message.
type MediaType string

const (
	MediaTypePhoto           MediaType = "photo"
	MediaTypeVideo           MediaType = "video"
	MediaTypeVideoNote       MediaType = "video_note"
	MediaTypeVoice           MediaType = "voice"
	MediaTypeAudio           MediaType = "audio"
	MediaTypeAnimation       MediaType = "animation"
	MediaTypeSticker         MediaType = "sticker"
	MediaTypeDocument        MediaType = "document"
	MediaTypeWebPage         MediaType = "web_page"
	MediaTypePoll            MediaType = "poll"
	MediaTypeDice            MediaType = "dice"
	MediaTypeLocation        MediaType = "location"
	MediaTypeContact         MediaType = "contact"
	MediaTypeVenue           MediaType = "venue"
	MediaTypeGame            MediaType = "game"
	MediaTypeStory           MediaType = "story"
	MediaTypeGiveaway        MediaType = "giveaway"
	MediaTypeGiveawayWinners MediaType = "giveaway_winners"
	MediaTypeInvoice         MediaType = "invoice"
)

// ServiceType names the service-event field populated on a service Message.
type ServiceType string

const (
	ServiceTypeNewChatMembers            ServiceType = "new_chat_members"
	ServiceTypeLeftChatMember            ServiceType = "left_chat_member"
	ServiceTypeNewChatTitle              ServiceType = "new_chat_title"
	ServiceTypeNewChatPhoto              ServiceType = "new_chat_photo"
	ServiceTypeDeleteChatPhoto           ServiceType = "delete_chat_photo"
	ServiceTypeGroupChatCreated          ServiceType = "group_chat_created"
	ServiceTypeSupergroupChatCreated     ServiceType = "supergroup_chat_created"
	ServiceTypeChannelChatCreated        ServiceType = "channel_chat_created"
	ServiceTypeMigrateToChatID           ServiceType = "migrate_to_chat_id"
	ServiceTypeMigrateFromChatID         ServiceType = "migrate_from_chat_id"
	ServiceTypePinnedMessage             ServiceType = "pinned_message"
	ServiceTypeGameHighScore             ServiceType = "game_high_score"
	ServiceTypeVideoChatScheduled        ServiceType = "video_chat_scheduled"
	ServiceTypeVideoChatStarted          ServiceType = "video_chat_started"
	ServiceTypeVideoChatEnded            ServiceType = "video_chat_ended"
	ServiceTypeVideoChatInvited          ServiceType = "video_chat_participants_invited"
	ServiceTypeWebAppData                ServiceType = "web_app_data"
	ServiceTypeGiftCode                  ServiceType = "gift_code"
	ServiceTypeGiftedPremium             ServiceType = "gifted_premium"
	ServiceTypeGiveawayCreated           ServiceType = "giveaway_created"
	ServiceTypeGiveawayCompleted         ServiceType = "giveaway_completed"
	ServiceTypeUsersShared               ServiceType = "users_shared"
	ServiceTypeChatShared                ServiceType = "chat_shared"
	ServiceTypeChatTTLChanged            ServiceType = "chat_ttl_changed"
	ServiceTypeChatBoostAdded            ServiceType = "chat_boost_added"
	ServiceTypeForumTopicCreated         ServiceType = "forum_topic_created"
	ServiceTypeForumTopicEdited          ServiceType = "forum_topic_edited"
	ServiceTypeForumTopicClosed          ServiceType = "forum_topic_closed"
	ServiceTypeForumTopicReopened        ServiceType = "forum_topic_reopened"
	ServiceTypeGeneralForumTopicHidden   ServiceType = "general_forum_topic_hidden"
	ServiceTypeGeneralForumTopicUnhidden ServiceType = "general_forum_topic_unhidden"
	ServiceTypeCustomAction              ServiceType = "custom_action"
)

// ForwardOriginType identifies who originally sent a forwarded message.
type ForwardOriginType string

const (
	// ForwardOriginTypeUser marks forwards from a visible user account.
	ForwardOriginTypeUser ForwardOriginType = "user"
	// ForwardOriginTypeHiddenUser marks forwards from a user hiding their account.
	ForwardOriginTypeHiddenUser ForwardOriginType = "hidden_user"
	// ForwardOriginTypeChat marks forwards sent on behalf of a chat.
	ForwardOriginTypeChat ForwardOriginType = "chat"
	// ForwardOriginTypeChannel marks forwards of channel posts.
	ForwardOriginTypeChannel ForwardOriginType = "channel"
)
